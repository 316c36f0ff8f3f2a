package config

import "github.com/caarlos0/env/v11"

// TestConfig drives database-backed tests; they skip when TEST_POSTGRES_DSN is unset.
type TestConfig struct {
	PostgresDSN  string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
	SchemaPrefix string `env:"TEST_SCHEMA_PREFIX" envDefault:"pool_test"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
