package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type BotConfig struct {
	HostID       string        `env:"HOST_ID,required,notEmpty"`
	Name         string        `env:"BOT_NAME" envDefault:"bot"`
	Interval     time.Duration `env:"BOT_INTERVAL" envDefault:"1500ms"`
	SetupTimeout time.Duration `env:"SETUP_TIMEOUT" envDefault:"10s"`
	RNGSeed      int64         `env:"RNG_SEED" envDefault:"0"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
