package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"tally.com/internal/domain/entity"
)

// Config holds the application configuration
type Config struct {
	Group   Group   `mapstructure:"group"`
	Display Display `mapstructure:"display"`
	Log     Log     `mapstructure:"log"`
}

// Group configuration
type Group struct {
	// DefaultSize is used by `settle` when --group-size is not given.
	DefaultSize int `mapstructure:"defaultSize"`
}

// Display configuration
type Display struct {
	Currency    string `mapstructure:"currency"`
	ClearScreen bool   `mapstructure:"clearScreen"`
}

// Log configuration
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from YAML files in configDir.
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	v := viper.New()
	v.SetDefault("group.defaultSize", entity.MaxGroupSize)
	v.SetDefault("display.currency", "rupees")
	v.SetDefault("display.clearScreen", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		v.SetConfigFile(baseConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g., debug.yaml when CONFIG_ENV=debug)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		v.SetConfigFile(envConfigPath)
		if baseConfigExists {
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env config file: %w", err)
		}
	}

	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("group.defaultSize", "TALLY_GROUP_DEFAULT_SIZE")
	v.BindEnv("display.currency", "TALLY_DISPLAY_CURRENCY", "CURRENCY")
	v.BindEnv("display.clearScreen", "TALLY_DISPLAY_CLEAR_SCREEN")
	v.BindEnv("log.level", "TALLY_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("log.format", "TALLY_LOG_FORMAT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Display.Currency == "" {
		cfg.Display.Currency = "rupees"
	}
	if err := entity.ValidateGroupSize(cfg.Group.DefaultSize); err != nil {
		return nil, fmt.Errorf("group.defaultSize: %w", err)
	}

	return &cfg, nil
}
