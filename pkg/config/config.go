package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		setDefaults()

		// Environment variable overrides: DIGEST_SERVER_PORT etc.
		viper.SetEnvPrefix("DIGEST")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			// Missing config file is fine, defaults and env vars apply
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("database.path") == "" {
		fmt.Println("Warning: No database path configured")
	}

	if err := validateAPIKeys(); err != nil {
		return err
	}

	// Auto-correct nonsense values
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}
	if viper.GetInt("digest.video_threshold") <= 0 {
		viper.Set("digest.video_threshold", 10)
	}
	if viper.GetInt("digest.max_videos") <= 0 {
		viper.Set("digest.max_videos", 50)
	}
	if viper.GetInt("summarizer.max_transcript_chars") <= 0 {
		viper.Set("summarizer.max_transcript_chars", 500000)
	}

	return nil
}

// validateAPIKeys rejects placeholder credentials in production
func validateAPIKeys() error {
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	placeholders := []string{
		"YOUR_KEY_HERE",
		"YOUR_API_KEY",
		"changeme",
		"CHANGEME",
		"",
	}

	checks := map[string]string{
		"summarizer.api_key":           viper.GetString("summarizer.api_key"),
		"mail.api_key":                 viper.GetString("mail.api_key"),
		"transcripts.fallback_api_key": viper.GetString("transcripts.fallback_api_key"),
	}

	for key, value := range checks {
		for _, placeholder := range placeholders {
			if value == placeholder {
				if isProduction {
					return fmt.Errorf("invalid %s: cannot use placeholder values in production", key)
				}
				fmt.Printf("Warning: %s is using a placeholder value\n", key)
				break
			}
		}
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	if c.Digest.VideoThreshold <= 0 {
		c.Digest.VideoThreshold = 10
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/digest.db")
	viper.SetDefault("database.verbose", false)

	// Processing defaults
	viper.SetDefault("processing.workers", 2)
	viper.SetDefault("processing.poll_interval", 5*time.Second)
	viper.SetDefault("processing.job_timeout", 30*time.Minute)
	viper.SetDefault("processing.max_retries", 3)
	viper.SetDefault("processing.retry_delay", 5*time.Minute)
	viper.SetDefault("processing.min_video_duration", 60*time.Second)
	viper.SetDefault("processing.job_retention_days", 30)

	// YouTube discovery defaults
	viper.SetDefault("youtube.check_window_days", 2)
	viper.SetDefault("youtube.timeout", 30*time.Second)
	viper.SetDefault("youtube.token_path", "./credentials/youtube_token.json")

	// Transcript defaults
	viper.SetDefault("transcripts.target_language", "de")
	viper.SetDefault("transcripts.secondary_language", "en")
	viper.SetDefault("transcripts.fallback_base_url", "https://api.supadata.ai/v1")
	viper.SetDefault("transcripts.timeout", 60*time.Second)

	// Summarizer defaults
	viper.SetDefault("summarizer.model", "gpt-4o-mini")
	viper.SetDefault("summarizer.max_transcript_chars", 500000)
	viper.SetDefault("summarizer.max_attempts", 3)
	viper.SetDefault("summarizer.request_timeout", 2*time.Minute)
	viper.SetDefault("summarizer.rate_limit", 1.0)

	// Digest defaults
	viper.SetDefault("digest.interval_days", 14)
	viper.SetDefault("digest.video_threshold", 10)
	viper.SetDefault("digest.max_videos", 50)
	viper.SetDefault("digest.dashboard_url", "http://localhost:8080")

	// Mail defaults
	viper.SetDefault("mail.base_url", "https://api.resend.com")
	viper.SetDefault("mail.from_address", "Video Digest <digest@resend.dev>")
	viper.SetDefault("mail.timeout", 30*time.Second)
}
