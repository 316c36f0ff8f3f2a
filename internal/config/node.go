package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type NodeConfig struct {
	PlayerName   string `env:"PLAYER_NAME" envDefault:"Player"`
	PlayerAvatar string `env:"PLAYER_AVATAR" envDefault:"🎱"`
	RoomName     string `env:"ROOM_NAME" envDefault:"Pool Night"`

	P2PAddr          string        `env:"P2P_ADDR" envDefault:":7420"`
	P2PAdvertiseAddr string        `env:"P2P_ADVERTISE_ADDR"`
	JoinHost         string        `env:"JOIN_HOST"`
	SetupTimeout     time.Duration `env:"SETUP_TIMEOUT" envDefault:"10s"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`

	PostgresDSN     string        `env:"POSTGRES_DSN"`
	PersistTimeout  time.Duration `env:"PERSIST_TIMEOUT" envDefault:"3s"`
	DeviceStatePath string        `env:"DEVICE_STATE_PATH" envDefault:"poker-pool-device.json"`

	// RNGSeed fixes the shuffle for replays; 0 seeds from the clock.
	RNGSeed int64 `env:"RNG_SEED" envDefault:"0"`
}

// IsGuest reports whether the node joins an existing host instead of hosting.
func (c NodeConfig) IsGuest() bool {
	return c.JoinHost != ""
}

func LoadNode() (NodeConfig, error) {
	var cfg NodeConfig
	err := env.Parse(&cfg)
	return cfg, err
}
