package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the minimum environment a successful Load needs.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PATH", "feedback.db")
}

func TestLoad_MissingDBPathIsFatal(t *testing.T) {
	// No DB_PATH in the environment: the store location is required.
	t.Setenv("DB_PATH", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DB_PATH is absent")
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.ReadTimeout)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if cfg.Brand.Name == "" {
		t.Errorf("Brand.Name should have a default")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.Celebration.Enabled {
		t.Errorf("celebration should be disabled by default")
	}
	if cfg.Cache.Addr != "" {
		t.Errorf("cache should be disabled by default")
	}
}

func TestLoad_NormalizesWarningLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Fatalf("expected LOG_LEVEL error, got %v", err)
	}
}

func TestLoad_CelebrationRequiresBrokers(t *testing.T) {
	setRequired(t)
	t.Setenv("CELEBRATION_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error: celebration enabled without brokers")
	}
}

func TestLoad_CelebrationBrokersParsed(t *testing.T) {
	setRequired(t)
	t.Setenv("CELEBRATION_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Celebration.Brokers) != 2 || cfg.Celebration.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Celebration.Brokers)
	}
}

func TestLoad_GinModeNormalized(t *testing.T) {
	setRequired(t)
	t.Setenv("GIN_MODE", "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release", cfg.GinMode)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/", "/api"},
		{"/api/v2", "/api/v2"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	t.Setenv("DB_PATH", "")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLoad()
}
