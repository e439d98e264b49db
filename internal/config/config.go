package config

import "trends-go/pkg/logger"

type Config struct {
	Trends  TrendsConfig  `mapstructure:"trends"`
	API     APIConfig     `mapstructure:"api"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Storage StorageConfig `mapstructure:"storage"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Server  ServerConfig  `mapstructure:"server"`
	Logger  logger.Config `mapstructure:"logger"`
}

// TrendsConfig describes what the pipeline queries: which terms, where,
// and how far back the rolling window reaches.
type TrendsConfig struct {
	SearchTerms  []string `mapstructure:"search_terms"`
	Location     string   `mapstructure:"location"`
	WindowMonths int      `mapstructure:"window_months"`
}

type APIConfig struct {
	Endpoint       string  `mapstructure:"endpoint"`
	Key            string  `mapstructure:"key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimitQPS   float64 `mapstructure:"rate_limit_qps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BaseDelayMs int `mapstructure:"base_delay_ms"`
	MaxDelayMs  int `mapstructure:"max_delay_ms"`
	JitterMs    int `mapstructure:"jitter_ms"`
}

type StorageConfig struct {
	OutputPath string `mapstructure:"output_path"`
}

type WorkerConfig struct {
	FetchWorkers int `mapstructure:"fetch_workers"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() error
	GetConfig() *Config
}
