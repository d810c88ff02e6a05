package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.App.Port)
	}
	if cfg.JWT.Secret != "test-secret" {
		t.Errorf("expected JWT secret from env, got %q", cfg.JWT.Secret)
	}
	if cfg.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("expected 15m access expiry, got %v", cfg.JWT.AccessExpiry)
	}
	if !cfg.Consultation.AutoProvisionDoctor {
		t.Error("expected doctor auto-provisioning to be enabled by default")
	}
	if cfg.Consultation.DefaultDoctorEmail != "doctor@default.com" {
		t.Errorf("unexpected default doctor email: %s", cfg.Consultation.DefaultDoctorEmail)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("CONSULTATION_AUTO_PROVISION_DOCTOR", "false")
	t.Setenv("CONSULTATION_STATS_CACHE_TTL", "30s")
	t.Setenv("JWT_ACCESS_EXPIRY", "not-a-duration")
	t.Setenv("APP_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.App.Port)
	}
	if cfg.Consultation.AutoProvisionDoctor {
		t.Error("expected auto-provisioning to be disabled")
	}
	if cfg.Consultation.StatsCacheTTL != 30*time.Second {
		t.Errorf("expected 30s TTL, got %v", cfg.Consultation.StatsCacheTTL)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.App.CORSOrigins)
	}
	if cfg.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("invalid duration should fall back to 15m, got %v", cfg.JWT.AccessExpiry)
	}

	if cfg.DB.TimeZone != "UTC" {
		t.Errorf("expected DB session zone to follow APP_TIMEZONE, got %q", cfg.DB.TimeZone)
	}

	loc, err := cfg.App.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "clinic", SSLMode: "disable"}

	want := "host=db user=u password=p dbname=clinic port=5432 sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	c.TimeZone = "Local"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() with Local zone = %q, want %q", got, want)
	}

	c.TimeZone = "Africa/Casablanca"
	if got := c.DSN(); got != want+" TimeZone=Africa/Casablanca" {
		t.Errorf("DSN() = %q, expected the session zone to be pinned", got)
	}

	wantURL := "pgx5://u:p@db:5432/clinic?sslmode=disable"
	if got := c.URL(); got != wantURL {
		t.Errorf("URL() = %q, want %q", got, wantURL)
	}
}
