package version

// Version is the build version, overridden at release time via ldflags.
var Version = "0.1.0"
