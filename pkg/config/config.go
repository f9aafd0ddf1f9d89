package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".dropzone"
	DefaultConfigFile = "config.yaml"
)

// Defaults for keys that are not set in the config file.
const (
	DefaultCompletionDelay = time.Second
	DefaultPreviewWidth    = 160
	DefaultSimulationSteps = 20
	DefaultFailureRate     = 0.05
)

var errInvalidConfig = errors.New("invalid configuration")

// Config holds the CLI configuration
type Config struct {
	LogLevel         string
	TelemetryEnabled *bool // Pointer to distinguish between unset (nil) and explicitly set (true/false)

	// MaxFileSize and AllowedTypes fall back to the upload defaults when zero.
	MaxFileSize  int64
	AllowedTypes []string

	CompletionDelay time.Duration
	PreviewWidth    int
	SeedFile        string

	SimulationSteps int
	FailureRate     float64
}

// ValidUserFacingConfigKeys lists config keys that users should interact with
var ValidUserFacingConfigKeys = map[string]bool{
	"loglevel":        true,
	"telemetry":       true,
	"maxfilesize":     true,
	"allowedtypes":    true,
	"completiondelay": true,
	"previewwidth":    true,
	"seedfile":        true,
	"simulationsteps": true,
	"failurerate":     true,
}

// IsValidUserFacingKey checks if a config key is a recognized user-facing key
func IsValidUserFacingKey(key string) bool {
	return ValidUserFacingConfigKeys[key]
}

// NormalizeKey turns a kebab-case key such as "max-file-size" into the
// stored form "maxfilesize".
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "-", ""))
}

// GetConfigKeyDescription returns a description for a config key
func GetConfigKeyDescription(key string) string {
	descriptions := map[string]string{
		"loglevel":        "Logging level (debug/info/warn/error, default: info)",
		"telemetry":       "Enable error telemetry and crash reporting (true/false, default: true)",
		"maxfilesize":     "Largest accepted file in bytes (default: 104857600)",
		"allowedtypes":    "Comma separated MIME types or prefixes accepted for upload",
		"completiondelay": "How long a finished batch stays on screen (default: 1s)",
		"previewwidth":    "Width of image previews in pixels (default: 160)",
		"seedfile":        "TOML file of past uploads loaded at startup",
		"simulationsteps": "Progress reports per simulated upload (default: 20)",
		"failurerate":     "Chance that a simulated upload fails, 0 to 1 (default: 0.05)",
	}
	return descriptions[key]
}

// GetUserFacingKeys returns the list of keys users should interact with
func GetUserFacingKeys() []string {
	return []string{
		"log-level",
		"telemetry",
		"max-file-size",
		"allowed-types",
		"completion-delay",
		"preview-width",
		"seed-file",
		"simulation-steps",
		"failure-rate",
	}
}

func setDefaults() {
	viper.SetDefault("completiondelay", DefaultCompletionDelay.String())
	viper.SetDefault("previewwidth", DefaultPreviewWidth)
	viper.SetDefault("simulationsteps", DefaultSimulationSteps)
	viper.SetDefault("failurerate", DefaultFailureRate)
}

// Load reads the configuration from ~/.dropzone/config.yaml
func Load() (*Config, error) {
	configPath := getConfigPath()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	setDefaults()

	// Create config file if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := ensureConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := viper.WriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{
		LogLevel:        viper.GetString("loglevel"),
		MaxFileSize:     viper.GetInt64("maxfilesize"),
		AllowedTypes:    viper.GetStringSlice("allowedtypes"),
		CompletionDelay: viper.GetDuration("completiondelay"),
		PreviewWidth:    viper.GetInt("previewwidth"),
		SeedFile:        viper.GetString("seedfile"),
		SimulationSteps: viper.GetInt("simulationsteps"),
		FailureRate:     viper.GetFloat64("failurerate"),
	}

	// Handle telemetry setting - use pointer to distinguish unset from false
	if viper.IsSet("telemetry") {
		telemetryEnabled := viper.GetBool("telemetry")
		config.TelemetryEnabled = &telemetryEnabled
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	switch {
	case c.MaxFileSize < 0:
		return fmt.Errorf("%w: max-file-size must not be negative", errInvalidConfig)
	case c.CompletionDelay < 0:
		return fmt.Errorf("%w: completion-delay must not be negative", errInvalidConfig)
	case c.PreviewWidth <= 0:
		return fmt.Errorf("%w: preview-width must be positive", errInvalidConfig)
	case c.SimulationSteps <= 0:
		return fmt.Errorf("%w: simulation-steps must be positive", errInvalidConfig)
	case c.FailureRate < 0 || c.FailureRate > 1:
		return fmt.Errorf("%w: failure-rate must be between 0 and 1", errInvalidConfig)
	}
	return nil
}

// IsTelemetryEnabled returns whether telemetry is enabled.
// Returns true by default if not explicitly set (opt-out model).
func (c *Config) IsTelemetryEnabled() bool {
	if envVal := os.Getenv("DROPZONE_TELEMETRY_DISABLED"); envVal != "" {
		return envVal != "true" && envVal != "1"
	}

	if c.TelemetryEnabled != nil {
		return *c.TelemetryEnabled
	}

	return true
}

// Set stores value under the normalized key and writes the config file.
// "true"/"false" become booleans and allowed-types is split on commas.
func Set(key, value string) (any, error) {
	var typed any
	switch {
	case key == "allowedtypes":
		var types []string
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		typed = types
	case strings.EqualFold(value, "true"):
		typed = true
	case strings.EqualFold(value, "false"):
		typed = false
	default:
		typed = value
	}

	viper.Set(key, typed)
	if err := viper.WriteConfig(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return typed, nil
}

// getConfigPath returns the full path to the config file
func getConfigPath() string {
	if path := os.Getenv("DROPZONE_CONFIG_PATH"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DefaultConfigDir, DefaultConfigFile)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
}

// Context key for storing config
type contextKey string

const configContextKey contextKey = "config"

// GetConfigFromContext retrieves the config from the command context
func GetConfigFromContext(cmd *cobra.Command) (*Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("no context available")
	}

	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}

	return cfg, nil
}

// GetContextKey returns the context key used for storing config
// This is needed by root.go to store the config in context
func GetContextKey() interface{} {
	return configContextKey
}

// ensureConfigDir ensures the config directory exists
func ensureConfigDir() error {
	configPath := getConfigPath()
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755) //nolint:gosec // Config directory needs standard permissions
}

// GetLogLevel returns the configured log level as slog.Level
// Defaults to Info if not set or invalid
func (c *Config) GetLogLevel() slog.Level {
	if c.LogLevel == "" {
		return slog.LevelInfo
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
