// Package config defines the server configuration structures and loads
// them from a YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Configuration holds all configuration for the quotation server.
type Configuration struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Policy   PolicyConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// DatabaseConfig holds SQLite options.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// RedisConfig holds the optional rate-cache backend. An empty Addr
// means "use the in-process cache".
type RedisConfig struct {
	Addr string        `yaml:"addr,omitempty"`
	TTL  time.Duration `yaml:"ttl,omitempty"`
}

// PolicyConfig holds the financing policy constants. These are business
// policy, tuned per project, so they live here and not in code.
type PolicyConfig struct {
	BenefitCapRatio     float64 `yaml:"benefitCapRatio,omitempty"`
	MinUnitInstallment  int64   `yaml:"minUnitInstallment,omitempty"`
	MinAddOnInstallment int64   `yaml:"minAddOnInstallment,omitempty"`
}

// LoggingConfig holds logging options.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // json, console
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Configuration {
	return &Configuration{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "quotations.db"},
		Redis:    RedisConfig{TTL: time.Hour},
		Policy: PolicyConfig{
			BenefitCapRatio:     0.15,
			MinUnitInstallment:  1_000_000,
			MinAddOnInstallment: 500_000,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// LoadConfiguration loads the YAML configuration at configPath, applying
// defaults for anything unset. Environment variables override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	defaults := Defaults()
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("redis.ttl", defaults.Redis.TTL)
	v.SetDefault("policy.benefitCapRatio", defaults.Policy.BenefitCapRatio)
	v.SetDefault("policy.minUnitInstallment", defaults.Policy.MinUnitInstallment)
	v.SetDefault("policy.minAddOnInstallment", defaults.Policy.MinAddOnInstallment)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := validate(&configuration); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func validate(c *Configuration) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Policy.BenefitCapRatio < 0 || c.Policy.BenefitCapRatio > 1 {
		return fmt.Errorf("benefit cap ratio %v out of range [0, 1]", c.Policy.BenefitCapRatio)
	}
	if c.Policy.MinUnitInstallment < 0 || c.Policy.MinAddOnInstallment < 0 {
		return fmt.Errorf("minimum installment values must be non-negative")
	}
	return nil
}
