package config

import "github.com/caarlos0/env/v11"

// TestConfig points integration tests at live backends. Tests that need a
// backend skip when its variable is unset.
type TestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN"`
	NATSURL     string `env:"TEST_NATS_URL"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
