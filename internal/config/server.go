package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	NATSURL     string `env:"NATS_URL"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`
	StaticDir   string `env:"STATIC_DIR"`

	ReconnectGrace time.Duration `env:"RECONNECT_GRACE" envDefault:"60s"`
	MaxPlayers     int           `env:"ROOM_MAX_PLAYERS" envDefault:"8"`

	FirstDayDuration time.Duration `env:"NIGHTDAY_FIRST_DAY_DURATION" envDefault:"60s"`
	DayDuration      time.Duration `env:"NIGHTDAY_DAY_DURATION" envDefault:"120s"`
	SkipFirstDayVote bool          `env:"NIGHTDAY_SKIP_FIRST_DAY_VOTE" envDefault:"true"`

	WSRateLimit float64 `env:"WS_RATE_LIMIT" envDefault:"20"`
	WSRateBurst int     `env:"WS_RATE_BURST" envDefault:"40"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

// Validate rejects settings the room rules cannot honour.
func (c ServerConfig) Validate() error {
	switch {
	case c.MaxPlayers < 2 || c.MaxPlayers > 8:
		return fmt.Errorf("%w: ROOM_MAX_PLAYERS must be within 2..8, got %d", ErrInvalidConfig, c.MaxPlayers)
	case c.ReconnectGrace <= 0:
		return fmt.Errorf("%w: RECONNECT_GRACE must be positive", ErrInvalidConfig)
	case c.FirstDayDuration <= 0 || c.DayDuration <= 0:
		return fmt.Errorf("%w: day durations must be positive", ErrInvalidConfig)
	case c.WSRateLimit <= 0 || c.WSRateBurst <= 0:
		return fmt.Errorf("%w: WS_RATE_LIMIT and WS_RATE_BURST must be positive", ErrInvalidConfig)
	}
	return nil
}
