// Package config provides configuration management for the host monitor.
package config

import "time"

// Config is the root configuration structure for the host monitor.
type Config struct {
	Gateway    GatewayConfig    `mapstructure:"gateway" validate:"required"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

// GatewayConfig contains configuration for the alert gateway endpoint.
type GatewayConfig struct {
	Host    string        `mapstructure:"host" validate:"required"`
	Port    int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MonitorConfig contains configuration for the polling loop.
type MonitorConfig struct {
	Interval     time.Duration `mapstructure:"interval"`                              // 轮询间隔
	TopProcesses int           `mapstructure:"top_processes" validate:"gte=0,lte=50"` // 告警描述附带的进程数
	ChecksFile   string        `mapstructure:"checks_file"`                           // 检查项定义文件（可选）
}

// ThresholdsConfig contains the threshold pairs for the four resource checks.
// CPU, memory and disk thresholds are utilization fractions in [0,1]; load
// thresholds are 15-minute load average per logical core.
type ThresholdsConfig struct {
	CPU         ThresholdPair `mapstructure:"cpu"`
	Memory      ThresholdPair `mapstructure:"memory"`
	Disk        ThresholdPair `mapstructure:"disk"`
	LoadPerCore ThresholdPair `mapstructure:"load"`
}

// ThresholdPair defines warning and critical thresholds for a resource.
// A value strictly greater than a bound escalates to that tier.
type ThresholdPair struct {
	Warning  float64 `mapstructure:"warning" validate:"gte=0"`
	Critical float64 `mapstructure:"critical" validate:"gte=0"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
