package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultProvider    = "anthropic"
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultEmbedModel  = "text-embedding-3-small"
	DefaultEmbedDims   = 1536
	DefaultMaxResults  = 5
	DefaultMaxHistory  = 2
	DefaultTimeout     = 60 * time.Second
	DefaultDatabaseURL = "postgres://localhost:5432/ragchat"
)

// Config holds runtime configuration values.
type Config struct {
	Provider          string
	Model             string
	OpenRouterBaseURL string
	AnthropicBaseURL  string
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingDims     int
	DatabaseURL       string
	MaxResults        int
	MaxHistory        int
	Timeout           time.Duration
	Quiet             bool
	JSON              bool
	Verbose           bool
}

type rawConfig struct {
	Provider          string `mapstructure:"provider"`
	Model             string `mapstructure:"model"`
	OpenRouterBaseURL string `mapstructure:"openrouter_base_url"`
	AnthropicBaseURL  string `mapstructure:"anthropic_base_url"`
	EmbeddingModel    string `mapstructure:"embedding_model"`
	EmbeddingBaseURL  string `mapstructure:"embedding_base_url"`
	EmbeddingDims     int    `mapstructure:"embedding_dims"`
	DatabaseURL       string `mapstructure:"database_url"`
	MaxResults        int    `mapstructure:"max_results"`
	MaxHistory        int    `mapstructure:"max_history"`
	Timeout           string `mapstructure:"timeout"`
	Quiet             bool   `mapstructure:"quiet"`
	JSON              bool   `mapstructure:"json"`
	Verbose           bool   `mapstructure:"verbose"`
}

// Load resolves configuration from defaults, config files, env, and flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("openrouter_base_url", DefaultBaseURL)
	v.SetDefault("anthropic_base_url", "")
	v.SetDefault("embedding_model", DefaultEmbedModel)
	v.SetDefault("embedding_base_url", "")
	v.SetDefault("embedding_dims", DefaultEmbedDims)
	v.SetDefault("database_url", DefaultDatabaseURL)
	v.SetDefault("max_results", DefaultMaxResults)
	v.SetDefault("max_history", DefaultMaxHistory)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("quiet", false)
	v.SetDefault("json", false)
	v.SetDefault("verbose", false)

	if cmd != nil {
		_ = v.BindPFlag("provider", cmd.Flags().Lookup("provider"))
		_ = v.BindPFlag("model", cmd.Flags().Lookup("model"))
		_ = v.BindPFlag("database_url", cmd.Flags().Lookup("database-url"))
		_ = v.BindPFlag("max_results", cmd.Flags().Lookup("max-results"))
		_ = v.BindPFlag("max_history", cmd.Flags().Lookup("max-history"))
		_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
		_ = v.BindPFlag("quiet", cmd.Flags().Lookup("quiet"))
		_ = v.BindPFlag("json", cmd.Flags().Lookup("json"))
		_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	}

	if url := os.Getenv("DATABASE_URL"); url != "" && os.Getenv("RAG_DATABASE_URL") == "" {
		v.Set("database_url", url)
	}

	if err := loadConfigFile(v); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &raw})
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, err
	}

	timeout := DefaultTimeout
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		timeout = parsed
	}

	cfg := Config{
		Provider:          raw.Provider,
		Model:             raw.Model,
		OpenRouterBaseURL: raw.OpenRouterBaseURL,
		AnthropicBaseURL:  raw.AnthropicBaseURL,
		EmbeddingModel:    raw.EmbeddingModel,
		EmbeddingBaseURL:  raw.EmbeddingBaseURL,
		EmbeddingDims:     raw.EmbeddingDims,
		DatabaseURL:       raw.DatabaseURL,
		MaxResults:        raw.MaxResults,
		MaxHistory:        raw.MaxHistory,
		Timeout:           timeout,
		Quiet:             raw.Quiet,
		JSON:              raw.JSON,
		Verbose:           raw.Verbose,
	}

	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbedModel
	}
	if cfg.EmbeddingDims <= 0 {
		cfg.EmbeddingDims = DefaultEmbedDims
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.OpenRouterBaseURL == "" {
		cfg.OpenRouterBaseURL = DefaultBaseURL
	}

	return cfg, nil
}

func loadConfigFile(v *viper.Viper) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "ragchat")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			return v.ReadInConfig()
		}
	}
	return nil
}
