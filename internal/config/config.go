package config

import "time"

// Config holds server and client configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	// SendRateLimit is the number of chat sends allowed per connection per minute. Zero disables it.
	SendRateLimit int `mapstructure:"send_rate_limit" yaml:"send_rate_limit"`

	Client ClientConfig `mapstructure:"client" yaml:"client"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	ServerURL      string        `mapstructure:"server_url" yaml:"server_url"`
	UserID         string        `mapstructure:"user_id" yaml:"user_id"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	HistoryLimit   int           `mapstructure:"history_limit" yaml:"history_limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	StatusDelay    time.Duration `mapstructure:"status_delay" yaml:"status_delay"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "taskchat.db",
		LogLevel:          "info",
		MaxMessageBytes:   64 << 10,
		SendRateLimit:     120,
		Client: ClientConfig{
			ServerURL:      "http://localhost:8080",
			LogFile:        "taskchat.log",
			HistoryLimit:   50,
			RequestTimeout: 10 * time.Second,
			StatusDelay:    1200 * time.Millisecond,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.SendRateLimit != 0 {
		c.SendRateLimit = other.SendRateLimit
	}
	c.Client.updateFrom(other.Client)
}

func (c *ClientConfig) updateFrom(other ClientConfig) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.UserID != "" {
		c.UserID = other.UserID
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.StatusDelay != 0 {
		c.StatusDelay = other.StatusDelay
	}
}
