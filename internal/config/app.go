package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid_config")

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, fmt.Errorf("log config: %w", err)
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, fmt.Errorf("server config: %w", err)
	}
	if err := serverCfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
	}, nil
}
