package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/codecrt/pkg/bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9443, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "16MB", cfg.Server.MaxMessageSize)
	assert.Equal(t, int(16*bytesize.MB), cfg.Server.MaxMessageSizeBytes())

	assert.Equal(t, 16, cfg.Worker.QueueSoftThreshold)
	assert.Equal(t, 64, cfg.Worker.QueueHardThreshold)
	assert.Equal(t, 256, cfg.Worker.CallbackQueueDepth)

	assert.Equal(t, "no-preference", cfg.HWAccel.Preference)
	assert.Equal(t, []string{"videotoolbox", "nvenc", "qsv", "amf", "vaapi"}, cfg.HWAccel.Order)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s

worker:
  queue_soft_threshold: 8
  queue_hard_threshold: 32

hwaccel:
  preference: "prefer-hardware"

logging:
  level: "debug"
  format: "text"
`
	err := os.WriteFile(configPath, []byte(configContent), 0o600)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 8, cfg.Worker.QueueSoftThreshold)
	assert.Equal(t, 32, cfg.Worker.QueueHardThreshold)
	assert.Equal(t, "prefer-hardware", cfg.HWAccel.Preference)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CODECRT_SERVER_PORT", "3000")
	t.Setenv("CODECRT_WORKER_QUEUE_SOFT_THRESHOLD", "4")
	t.Setenv("CODECRT_HWACCEL_PREFERENCE", "prefer-software")
	t.Setenv("CODECRT_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Worker.QueueSoftThreshold)
	assert.Equal(t, "prefer-software", cfg.HWAccel.Preference)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 8080
worker:
  queue_soft_threshold: 10
  queue_hard_threshold: 40
`
	err := os.WriteFile(configPath, []byte(configContent), 0o600)
	require.NoError(t, err)

	t.Setenv("CODECRT_SERVER_PORT", "9000")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Worker.QueueSoftThreshold)
}

func validBaseConfig() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080, MaxMessageSize: "16MB"},
		Worker:  WorkerConfig{QueueSoftThreshold: 16, QueueHardThreshold: 64, CallbackQueueDepth: 256},
		HWAccel: HWAccelConfig{Preference: "no-preference"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validBaseConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero port", 0},
		{"negative port", -1},
		{"port too high", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			cfg.Server.Port = tt.port
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestValidate_InvalidQueueThresholds(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Worker.QueueSoftThreshold = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "queue_soft_threshold")

	cfg = validBaseConfig()
	cfg.Worker.QueueHardThreshold = 4
	cfg.Worker.QueueSoftThreshold = 16
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "queue_hard_threshold")
}

func TestValidate_InvalidHWAccelPreference(t *testing.T) {
	cfg := validBaseConfig()
	cfg.HWAccel.Preference = "always"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hwaccel.preference")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Logging.Level = "invalid"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate_InvalidMaxMessageSize(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.MaxMessageSize = "not-a-size"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.max_message_size")
}

func TestServerConfig_MaxMessageSizeBytes(t *testing.T) {
	cfg := &ServerConfig{MaxMessageSize: "16MB"}
	assert.Equal(t, 16*1024*1024, cfg.MaxMessageSizeBytes())

	cfg = &ServerConfig{MaxMessageSize: "garbage"}
	assert.Equal(t, int(bytesize.MustParse(defaultMaxMessageSize)), cfg.MaxMessageSizeBytes())
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		expected string
	}{
		{"localhost", "127.0.0.1", 8080, "127.0.0.1:8080"},
		{"all interfaces", "0.0.0.0", 3000, "0.0.0.0:3000"},
		{"hostname", "example.com", 443, "example.com:443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ServerConfig{Host: tt.host, Port: tt.port}
			assert.Equal(t, tt.expected, cfg.Address())
		})
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidContent := `
server:
  port: "not a number"
  invalid yaml structure
`
	err := os.WriteFile(configPath, []byte(invalidContent), 0o600)
	require.NoError(t, err)

	_, err = Load(configPath)
	assert.Error(t, err)
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestConfig_AllHWAccelPreferences(t *testing.T) {
	preferences := []string{"no-preference", "prefer-hardware", "prefer-software"}

	for _, pref := range preferences {
		t.Run(pref, func(t *testing.T) {
			cfg := validBaseConfig()
			cfg.HWAccel.Preference = pref
			err := cfg.Validate()
			assert.NoError(t, err)
		})
	}
}
