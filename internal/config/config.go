// Package config provides configuration management for codecrt using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/codecrt/pkg/bytesize"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort         = 9443
	defaultServerTimeout      = 30 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultQueueSoftThreshold = 16
	defaultQueueHardThreshold = 64
	defaultCallbackQueueDepth = 256
	defaultFlushTimeout       = 30 * time.Second
	defaultMaxMessageSize     = "16MB"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	HWAccel HWAccelConfig `mapstructure:"hwaccel"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the demo gRPC host-binding server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxMessageSize is a human-readable byte size (e.g. "16MB") bounding
	// the gRPC server's max send/receive message size, since an encoded
	// chunk or raw video frame can comfortably exceed gRPC's 4MB default.
	MaxMessageSize string `mapstructure:"max_message_size"`
}

// WorkerConfig holds codec worker and control-message queue configuration.
type WorkerConfig struct {
	// QueueSoftThreshold is the decodeQueueSize/encodeQueueSize value at or
	// above which the codec reports itself saturated; below it, unsaturated.
	QueueSoftThreshold int `mapstructure:"queue_soft_threshold"`
	// QueueHardThreshold is the queue size at which Encode/Decode calls
	// begin failing with QuotaExceededError instead of enqueuing.
	QueueHardThreshold int `mapstructure:"queue_hard_threshold"`
	// CallbackQueueDepth is the bounded channel depth for the safe-callback
	// gateway that delivers worker output back to the host thread.
	CallbackQueueDepth int `mapstructure:"callback_queue_depth"`
	// FlushTimeout is loaded and defaulted with the rest of the worker
	// settings; no codec reads it, and flush() promises have no timeout.
	FlushTimeout time.Duration `mapstructure:"flush_timeout"`
}

// HWAccelConfig holds hardware-acceleration preference configuration.
type HWAccelConfig struct {
	// Preference is "no-preference", "prefer-hardware", or "prefer-software",
	// mirroring the hardwareAcceleration field of VideoEncoderConfig/VideoDecoderConfig.
	Preference string `mapstructure:"preference"`
	// Order is the platform-specific probe order used when Preference
	// requests hardware acceleration, e.g. "videotoolbox,nvenc,qsv,amf,vaapi".
	Order []string `mapstructure:"order"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with CODECRT_ and use underscores for nesting.
// Example: CODECRT_SERVER_PORT=9443.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/codecrt")
		v.AddConfigPath("$HOME/.codecrt")
	}

	v.SetEnvPrefix("CODECRT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.max_message_size", defaultMaxMessageSize)

	// Worker defaults, per the reference soft/hard queue thresholds.
	v.SetDefault("worker.queue_soft_threshold", defaultQueueSoftThreshold)
	v.SetDefault("worker.queue_hard_threshold", defaultQueueHardThreshold)
	v.SetDefault("worker.callback_queue_depth", defaultCallbackQueueDepth)
	v.SetDefault("worker.flush_timeout", defaultFlushTimeout)

	// HWAccel defaults
	v.SetDefault("hwaccel.preference", "no-preference")
	v.SetDefault("hwaccel.order", []string{"videotoolbox", "nvenc", "qsv", "amf", "vaapi"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	if _, err := bytesize.Parse(c.Server.MaxMessageSize); err != nil {
		return fmt.Errorf("server.max_message_size: %w", err)
	}

	if c.Worker.QueueSoftThreshold < 1 {
		return fmt.Errorf("worker.queue_soft_threshold must be at least 1")
	}
	if c.Worker.QueueHardThreshold < c.Worker.QueueSoftThreshold {
		return fmt.Errorf("worker.queue_hard_threshold must be >= worker.queue_soft_threshold")
	}
	if c.Worker.CallbackQueueDepth < 1 {
		return fmt.Errorf("worker.callback_queue_depth must be at least 1")
	}

	validPreferences := map[string]bool{"no-preference": true, "prefer-hardware": true, "prefer-software": true}
	if !validPreferences[c.HWAccel.Preference] {
		return fmt.Errorf("hwaccel.preference must be one of: no-preference, prefer-hardware, prefer-software")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxMessageSizeBytes parses MaxMessageSize, falling back to the
// package default if it was somehow left in an unparseable state past
// Validate.
func (c *ServerConfig) MaxMessageSizeBytes() int {
	size, err := bytesize.Parse(c.MaxMessageSize)
	if err != nil {
		return int(bytesize.MustParse(defaultMaxMessageSize))
	}
	return int(size)
}
