package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Processing  ProcessingConfig  `mapstructure:"processing"`
	YouTube     YouTubeConfig     `mapstructure:"youtube"`
	Transcripts TranscriptsConfig `mapstructure:"transcripts"`
	Summarizer  SummarizerConfig  `mapstructure:"summarizer"`
	Digest      DigestConfig      `mapstructure:"digest"`
	Mail        MailConfig        `mapstructure:"mail"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// ProcessingConfig contains pipeline worker settings
type ProcessingConfig struct {
	Workers          int           `mapstructure:"workers"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	JobTimeout       time.Duration `mapstructure:"job_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	MinVideoDuration time.Duration `mapstructure:"min_video_duration"`
	JobRetentionDays int           `mapstructure:"job_retention_days"`
}

// YouTubeConfig contains discovery settings for the Data API
type YouTubeConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	TokenPath       string        `mapstructure:"token_path"`
	CheckWindowDays int           `mapstructure:"check_window_days"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// TranscriptsConfig contains transcript acquisition settings
type TranscriptsConfig struct {
	TargetLanguage    string        `mapstructure:"target_language"`
	SecondaryLanguage string        `mapstructure:"secondary_language"`
	PrimaryBaseURL    string        `mapstructure:"primary_base_url"`
	PrimaryAPIKey     string        `mapstructure:"primary_api_key"`
	FallbackBaseURL   string        `mapstructure:"fallback_base_url"`
	FallbackAPIKey    string        `mapstructure:"fallback_api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// SummarizerConfig contains structured generation settings
type SummarizerConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	Model              string        `mapstructure:"model"`
	MaxTranscriptChars int           `mapstructure:"max_transcript_chars"`
	MaxAttempts        int           `mapstructure:"max_attempts"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RateLimit          float64       `mapstructure:"rate_limit"` // Requests per second
}

// DigestConfig contains digest trigger and composition settings
type DigestConfig struct {
	IntervalDays   int    `mapstructure:"interval_days"`
	VideoThreshold int    `mapstructure:"video_threshold"`
	MaxVideos      int    `mapstructure:"max_videos"`
	DashboardURL   string `mapstructure:"dashboard_url"`
}

// MailConfig contains outbound mail settings
type MailConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	FromAddress string        `mapstructure:"from_address"`
	ToAddress   string        `mapstructure:"to_address"`
	Timeout     time.Duration `mapstructure:"timeout"`
}
