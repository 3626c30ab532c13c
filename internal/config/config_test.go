package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.WriteTimeout != 10*time.Second || cfg.Server.IdleTimeout != 120*time.Second {
		t.Errorf("timeouts = %v/%v/%v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	}
	if cfg.Database.Path != "chorecal.db" {
		t.Errorf("Database.Path = %q, want chorecal.db", cfg.Database.Path)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Reminder.Enabled || cfg.Reminder.Interval != time.Minute {
		t.Errorf("Reminder = %+v", cfg.Reminder)
	}
	if cfg.RateLimit.RPS != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Calendar.MonthsBefore != 1 || cfg.Calendar.MonthsAfter != 4 {
		t.Errorf("Calendar = %+v", cfg.Calendar)
	}
	if cfg.Gamification.BadgesFile != "" {
		t.Errorf("BadgesFile = %q, want empty", cfg.Gamification.BadgesFile)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr() = %q, want :8080", cfg.Addr())
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v; want Local", loc, err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHORECAL_SERVER_PORT", "9090")
	t.Setenv("CHORECAL_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("CHORECAL_LOG_FORMAT", "json")
	t.Setenv("CHORECAL_REMINDER_INTERVAL", "5m")
	t.Setenv("CHORECAL_REMINDER_ENABLED", "false")
	t.Setenv("CHORECAL_APP_TIMEZONE", "America/Denver")

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Reminder.Interval != 5*time.Minute || cfg.Reminder.Enabled {
		t.Errorf("Reminder = %+v", cfg.Reminder)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "America/Denver" {
		t.Errorf("Location() = %s, want America/Denver", loc)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte("server:\n  port: 3000\n  allowed_origins:\n    - chores.example.com\n    - \"*.lan\"\ncalendar:\n  months_after: 6\nratelimit:\n  rps: 2.5\n")
	if err := os.WriteFile(filepath.Join(dir, "chorecal.yaml"), data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Calendar.MonthsAfter != 6 {
		t.Errorf("Calendar.MonthsAfter = %d, want 6", cfg.Calendar.MonthsAfter)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("RateLimit.RPS = %v, want 2.5", cfg.RateLimit.RPS)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[0] != "chores.example.com" || got[1] != "*.lan" {
		t.Errorf("Server.AllowedOrigins = %v", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "CHORECAL_SERVER_PORT", "70000"},
		{"unknown log format", "CHORECAL_LOG_FORMAT", "xml"},
		{"zero burst", "CHORECAL_RATELIMIT_BURST", "0"},
		{"bad timezone", "CHORECAL_APP_TIMEZONE", "Mars/Olympus"},
		{"no months ahead", "CHORECAL_CALENDAR_MONTHS_AFTER", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := LoadFrom(t.TempDir()); err == nil {
				t.Errorf("LoadFrom with %s=%q: expected error", tt.key, tt.val)
			}
		})
	}
}
