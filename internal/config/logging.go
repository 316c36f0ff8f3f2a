package config

import "github.com/caarlos0/env/v11"

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`

	File string `env:"LOG_FILE"`
	// MaxMB caps LOG_FILE; when full it is rotated to LOG_FILE.1.
	MaxMB int `env:"LOG_MAX_MB" envDefault:"10"`
	// Stdout can be turned off when several nodes share a terminal and each logs to its own file.
	Stdout bool `env:"LOG_STDOUT" envDefault:"true"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
