package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type manager struct {
	mu     sync.RWMutex
	config *Config
	viper  *viper.Viper
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setupViper(configPath)

	if err := m.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config, err := m.unmarshal()
	if err != nil {
		return nil, err
	}

	m.config = config
	return config, nil
}

func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded")
	}

	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) unmarshal() (*Config, error) {
	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (m *manager) setupViper(configPath string) {
	m.viper.SetConfigFile(configPath)

	m.viper.SetEnvPrefix("TRENDS")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	// Secrets never live in the config file.
	m.viper.BindEnv("api.key", "TRENDS_API_KEY", "SERPAPI_KEY")
}

func applyDefaults(config *Config) {
	if config.Trends.WindowMonths == 0 {
		config.Trends.WindowMonths = 6
	}
	if config.API.Endpoint == "" {
		config.API.Endpoint = "https://serpapi.com/search.json"
	}
	if config.API.TimeoutSeconds == 0 {
		config.API.TimeoutSeconds = 30
	}
	if config.API.RateLimitQPS == 0 {
		config.API.RateLimitQPS = 1.0
	}
	if config.API.RateLimitBurst == 0 {
		config.API.RateLimitBurst = 1
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry.MaxAttempts = 5
	}
	if config.Retry.BaseDelayMs == 0 {
		config.Retry.BaseDelayMs = 2000
	}
	if config.Retry.MaxDelayMs == 0 {
		config.Retry.MaxDelayMs = 60000
	}
	if config.Retry.JitterMs == 0 {
		config.Retry.JitterMs = 2000
	}
	if config.Storage.OutputPath == "" {
		config.Storage.OutputPath = "output/trends.csv"
	}
	if config.Worker.FetchWorkers == 0 {
		config.Worker.FetchWorkers = 1
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
}

// validateConfig fails fast on configuration that would only surface as an
// API error several retries deep. A missing API key in particular must be
// caught before any network call is made.
func validateConfig(config *Config) error {
	if config.API.Key == "" {
		return fmt.Errorf("api.key is not set (TRENDS_API_KEY)")
	}

	if len(config.Trends.SearchTerms) == 0 {
		return fmt.Errorf("trends.search_terms cannot be empty")
	}
	for _, term := range config.Trends.SearchTerms {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("trends.search_terms contains an empty term")
		}
	}

	if config.Trends.Location == "" {
		return fmt.Errorf("trends.location cannot be empty")
	}

	if config.Trends.WindowMonths < 0 {
		return fmt.Errorf("trends.window_months cannot be negative")
	}

	if config.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive")
	}

	if config.Worker.FetchWorkers <= 0 {
		return fmt.Errorf("worker.fetch_workers must be positive")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	return nil
}
