package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Fatalf("Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Inference.URL != "http://localhost:8080" {
		t.Fatalf("Inference.URL = %q", cfg.Inference.URL)
	}
	if cfg.InferenceTimeout() != 30*time.Second {
		t.Fatalf("InferenceTimeout = %v", cfg.InferenceTimeout())
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		t.Fatal("CORSOrigins not defaulted")
	}
	if cfg.RateLimit.Capacity != 60 || cfg.RateLimit.RefillRate != 1 {
		t.Fatalf("RateLimit = %+v", cfg.RateLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: app
  password: from-file
  name: scans
openai:
  apiKey: from-file
`)
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("INFERENCE_URL", "http://model:9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Fatalf("Password = %q, want env override", cfg.Database.Password)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("APIKey = %q, want env override", cfg.OpenAI.APIKey)
	}
	if cfg.Inference.URL != "http://model:9000" {
		t.Fatalf("Inference.URL = %q", cfg.Inference.URL)
	}
}

func TestDSNHelpers(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: localhost
  port: 5432
  user: app
  password: secret
  name: scans
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pg := cfg.PostgresDSN()
	if pg != "host=localhost port=5432 user=app password=secret dbname=scans sslmode=disable" {
		t.Fatalf("PostgresDSN = %q", pg)
	}

	cfg.Database.Port = 3306
	my := cfg.MySQLDSN()
	want := "app:secret@tcp(localhost:3306)/scans?parseTime=true&charset=utf8mb4&loc=UTC"
	if my != want {
		t.Fatalf("MySQLDSN = %q, want %q", my, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}
