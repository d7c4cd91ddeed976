// Package config provides configuration management for the host monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: HOSTMON_<SECTION>_<KEY> (e.g., HOSTMON_GATEWAY_HOST)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("HOSTMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Check if config file exists
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Set config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Gateway defaults
	v.SetDefault("gateway.port", 5667)
	v.SetDefault("gateway.timeout", 10*time.Second)

	// Monitor defaults
	v.SetDefault("monitor.interval", 5*time.Second)
	v.SetDefault("monitor.top_processes", 10)

	// Threshold defaults. CPU/memory/disk are utilization fractions,
	// load is the 15-minute average per logical core.
	v.SetDefault("thresholds.cpu.warning", 0.90)
	v.SetDefault("thresholds.cpu.critical", 0.95)
	v.SetDefault("thresholds.memory.warning", 0.85)
	v.SetDefault("thresholds.memory.critical", 0.95)
	v.SetDefault("thresholds.disk.warning", 0.90)
	v.SetDefault("thresholds.disk.critical", 0.95)
	v.SetDefault("thresholds.load.warning", 3.0)
	v.SetDefault("thresholds.load.critical", 8.0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
