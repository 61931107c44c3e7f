package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "KUDOBOARD"
	defaultHTTPAddress    = "0.0.0.0:3001"
	defaultLogLevel       = "info"
	defaultTokenTTLHours  = 168
	defaultUploadsDir     = "uploads"
	defaultClientOrigin   = "http://localhost:5173"
	defaultGiphyAPIURL    = "https://api.giphy.com/v1/gifs"
	defaultBroadcastQueue = 16
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	DatabasePath   string
	SigningSecret  string
	TokenTTL       time.Duration
	LogLevel       string
	GiphyAPIKey    string
	GiphyAPIURL    string
	UploadsDir     string
	ClientOrigin   string
	BroadcastQueue int
}

// UseMemoryStore reports whether the in-process gateway should back persistence.
// An empty database path means no durable store was configured.
func (c AppConfig) UseMemoryStore() bool {
	return strings.TrimSpace(c.DatabasePath) == ""
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", "")
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("token.ttl_hours", defaultTokenTTLHours)
	configViper.SetDefault("giphy.api_key", "")
	configViper.SetDefault("giphy.api_url", defaultGiphyAPIURL)
	configViper.SetDefault("uploads.dir", defaultUploadsDir)
	configViper.SetDefault("client.origin", defaultClientOrigin)
	configViper.SetDefault("realtime.queue_size", defaultBroadcastQueue)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		DatabasePath:   configViper.GetString("database.path"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		TokenTTL:       time.Duration(configViper.GetInt("token.ttl_hours")) * time.Hour,
		LogLevel:       configViper.GetString("log.level"),
		GiphyAPIKey:    configViper.GetString("giphy.api_key"),
		GiphyAPIURL:    configViper.GetString("giphy.api_url"),
		UploadsDir:     configViper.GetString("uploads.dir"),
		ClientOrigin:   configViper.GetString("client.origin"),
		BroadcastQueue: configViper.GetInt("realtime.queue_size"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token.ttl_hours must be positive")
	}
	if c.BroadcastQueue <= 0 {
		return fmt.Errorf("realtime.queue_size must be positive")
	}
	return nil
}
