package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !existed {
			_ = os.Unsetenv(key)
			return
		}
		_ = os.Setenv(key, original)
	})
}

func TestExportLangDefaultsToSpanish(t *testing.T) {
	unsetEnv(t, "EXPORT_LANG")

	cfg := New()
	if cfg.ExportLang != "es" {
		t.Fatalf("expected default export lang es, got %q", cfg.ExportLang)
	}
}

func TestBackupTTLAcceptsDurationsAndSeconds(t *testing.T) {
	t.Setenv("BACKUP_TTL", "90m")
	if got := New().BackupTTL; got != 90*time.Minute {
		t.Fatalf("expected 90m, got %v", got)
	}

	t.Setenv("BACKUP_TTL", "120")
	if got := New().BackupTTL; got != 2*time.Minute {
		t.Fatalf("expected 120s, got %v", got)
	}

	t.Setenv("BACKUP_TTL", "soon")
	if got := New().BackupTTL; got != 7*24*time.Hour {
		t.Fatalf("expected default ttl for invalid value, got %v", got)
	}
}

func TestDatabaseURLIsBuiltFromParts(t *testing.T) {
	unsetEnv(t, "DATABASE_URL")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "pages")

	cfg := New()
	want := "postgres://u:p@db:5432/pages?sslmode=disable"
	if cfg.DatabaseURL != want {
		t.Fatalf("expected %q, got %q", want, cfg.DatabaseURL)
	}
}

func TestCORSOriginsAreTrimmed(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := New()
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %#v", cfg.CORSOrigins)
	}
}

func TestFeatureFlagsDefaultOff(t *testing.T) {
	for _, key := range []string{"ENABLE_DATABASE", "ENABLE_REDIS", "ENABLE_NATS"} {
		unsetEnv(t, key)
	}

	cfg := New()
	if cfg.EnableDatabase || cfg.EnableRedis || cfg.EnableNATS {
		t.Fatalf("expected external backends disabled by default: %+v", cfg)
	}
	if !cfg.EnableMetrics {
		t.Fatal("expected metrics enabled by default")
	}
}
