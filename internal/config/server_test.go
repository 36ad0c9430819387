package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ReconnectGrace != 60*time.Second {
		t.Fatalf("ReconnectGrace = %v, want 60s", cfg.ReconnectGrace)
	}
	if cfg.MaxPlayers != 8 {
		t.Fatalf("MaxPlayers = %d, want 8", cfg.MaxPlayers)
	}
	if cfg.FirstDayDuration != 60*time.Second || cfg.DayDuration != 120*time.Second {
		t.Fatalf("unexpected day durations: %v / %v", cfg.FirstDayDuration, cfg.DayDuration)
	}
	if !cfg.SkipFirstDayVote {
		t.Fatal("SkipFirstDayVote = false, want true")
	}
	if cfg.PostgresDSN != "" || cfg.NATSURL != "" {
		t.Fatalf("optional backends should be empty by default: %+v", cfg)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("RECONNECT_GRACE", "15s")
	t.Setenv("ROOM_MAX_PLAYERS", "6")
	t.Setenv("NIGHTDAY_SKIP_FIRST_DAY_VOTE", "false")
	t.Setenv("WS_RATE_LIMIT", "2.5")
	t.Setenv("OTEL_ENABLED", "false")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.ReconnectGrace != 15*time.Second {
		t.Fatalf("ReconnectGrace = %v, want 15s", cfg.ReconnectGrace)
	}
	if cfg.MaxPlayers != 6 {
		t.Fatalf("MaxPlayers = %d, want 6", cfg.MaxPlayers)
	}
	if cfg.SkipFirstDayVote {
		t.Fatal("SkipFirstDayVote = true, want false")
	}
	if cfg.WSRateLimit != 2.5 {
		t.Fatalf("WSRateLimit = %v, want 2.5", cfg.WSRateLimit)
	}
	if cfg.OTelEnabled {
		t.Fatal("OTelEnabled = true, want false")
	}
}

func TestLoadServerRejectsBadDuration(t *testing.T) {
	t.Setenv("RECONNECT_GRACE", "soon")

	if _, err := LoadServer(); err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestServerConfigValidate(t *testing.T) {
	valid, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"too many players", func(c *ServerConfig) { c.MaxPlayers = 9 }},
		{"too few players", func(c *ServerConfig) { c.MaxPlayers = 1 }},
		{"zero grace", func(c *ServerConfig) { c.ReconnectGrace = 0 }},
		{"zero day", func(c *ServerConfig) { c.DayDuration = 0 }},
		{"zero burst", func(c *ServerConfig) { c.WSRateBurst = 0 }},
	}
	for _, tt := range tests {
		cfg := valid
		tt.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: Validate() = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}
