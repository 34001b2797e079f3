package util

import "strings"

// Preview returns a short preview of text by limiting lines and bytes.
func Preview(text string, maxLines, maxBytes int) string {
	if text == "" {
		return ""
	}
	var (
		out   []string
		total int
	)
	for _, line := range strings.Split(text, "\n") {
		if maxLines > 0 && len(out) >= maxLines {
			break
		}
		sep := 0
		if len(out) > 0 {
			sep = 1
		}
		if maxBytes > 0 && total+sep+len(line) > maxBytes {
			break
		}
		total += sep + len(line)
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
