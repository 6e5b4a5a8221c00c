package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if !cfg.API.DevFake {
		t.Errorf("expected dev fake to be enabled without an upstream")
	}
	if cfg.Site.DefaultLocale != "en" {
		t.Errorf("expected default locale en, got %s", cfg.Site.DefaultLocale)
	}
	if !reflect.DeepEqual(cfg.Site.Locales, []string{"en", "he"}) {
		t.Errorf("unexpected locales: %v", cfg.Site.Locales)
	}
	if cfg.Idempotency.TTL != defaultIdempotencyTTL {
		t.Errorf("unexpected default idempotency ttl: %s", cfg.Idempotency.TTL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unexpected log level: %s", cfg.Logging.Level)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                    "9000",
		"HEARA_API_UPSTREAM":      "https://api.heara.example/",
		"HEARA_WEB_READ_TIMEOUT":  "20s",
		"HEARA_DEFAULT_LOCALE":    "HE",
		"HEARA_APP_DIR":           "/srv/app",
		"HEARA_API_PROXY_TIMEOUT": "5s",
		"LOG_LEVEL":               "DEBUG",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected PORT to drive the addr, got %s", cfg.Server.Addr)
	}
	if cfg.API.Upstream != "https://api.heara.example" {
		t.Errorf("unexpected upstream: %s", cfg.API.Upstream)
	}
	if cfg.API.DevFake {
		t.Errorf("expected dev fake to default off with an upstream")
	}
	if cfg.API.ProxyTimeout != 5*time.Second {
		t.Errorf("unexpected proxy timeout: %s", cfg.API.ProxyTimeout)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Site.DefaultLocale != "he" || cfg.Site.AppDir != "/srv/app" {
		t.Errorf("unexpected site config: %+v", cfg.Site)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level: %s", cfg.Logging.Level)
	}
}

func TestLoadExplicitAddrWins(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "9000", "HEARA_WEB_ADDR": "127.0.0.1:7000"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"HEARA_DEV_API":        "false",
		"HEARA_API_UPSTREAM":   "not a url",
		"HEARA_DEFAULT_LOCALE": "fr",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"Site.DefaultLocale", "API.Upstream"}
	if !reflect.DeepEqual(vErr.Fields(), want) {
		t.Errorf("unexpected fields: %v", vErr.Fields())
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# local overrides\nexport HEARA_APP_DIR=\"/from/dotenv\"\nLOG_LEVEL=warn\nHEARA_LOCALES=en, he\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(WithEnvFile(envPath), WithEnvMap(map[string]string{"HEARA_API_UPSTREAM": "", "HEARA_DEV_API": "true"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Site.AppDir != "/from/dotenv" {
		t.Errorf("expected .env value, got %s", cfg.Site.AppDir)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected system env to beat .env, got %s", cfg.Logging.Level)
	}
}
