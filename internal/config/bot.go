package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL      string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	RoomCode   string `env:"ROOM_CODE"`
	PlayerName string `env:"PLAYER_NAME" envDefault:"bot"`
	GameKind   string `env:"GAME_KIND" envDefault:"NIGHT_DAY"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
