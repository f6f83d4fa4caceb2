package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "RELAY_PORT", "TICK_MS", "SUB_STEPS", "GRAVITY", "DATABASE_URL", "REDIS_URL", "CONSOLE_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.RelayPort != 10987 {
		t.Errorf("RelayPort = %d, want 10987", cfg.RelayPort)
	}
	if cfg.TickPeriod() != 50*time.Millisecond {
		t.Errorf("TickPeriod = %v, want 50ms", cfg.TickPeriod())
	}
	if cfg.SubSteps != 20 || cfg.Gravity != 25 {
		t.Errorf("SubSteps=%d Gravity=%v", cfg.SubSteps, cfg.Gravity)
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Error("database and redis should be disabled by default")
	}
	if !cfg.ConsoleEnabled {
		t.Error("console should be enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RELAY_PORT", "4444")
	t.Setenv("GRAVITY", "9.5")
	t.Setenv("CONSOLE_ENABLED", "false")
	t.Setenv("SUB_STEPS", "not-a-number")
	cfg := Load()

	if cfg.RelayPort != 4444 {
		t.Errorf("RelayPort = %d", cfg.RelayPort)
	}
	if cfg.Gravity != 9.5 {
		t.Errorf("Gravity = %v", cfg.Gravity)
	}
	if cfg.ConsoleEnabled {
		t.Error("ConsoleEnabled should be false")
	}
	if cfg.SubSteps != 20 {
		t.Errorf("SubSteps = %d, want default on bad input", cfg.SubSteps)
	}
}
