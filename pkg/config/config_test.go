package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithEnvFile("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.REPL.Prompt != "napkin> " || !cfg.REPL.Color {
		t.Fatalf("repl defaults wrong: %+v", cfg.REPL)
	}
	if cfg.Serve.TokenTTL.Duration != time.Hour {
		t.Fatalf("token ttl default wrong: %s", cfg.Serve.TokenTTL.Duration)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "napkin.toml", `
[log]
level = "debug"

[repl]
prompt = "> "
color = false

[serve]
addr = ":9000"
jwt_secret = "s3cret"
token_ttl = "15m"
`)
	cfg, err := LoadWithEnvFile(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.REPL.Prompt != "> " || cfg.REPL.Color {
		t.Fatalf("toml values not applied: %+v", cfg)
	}
	if cfg.Serve.Addr != ":9000" || cfg.Serve.JWTSecret != "s3cret" || cfg.Serve.TokenTTL.Duration != 15*time.Minute {
		t.Fatalf("serve values not applied: %+v", cfg.Serve)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "napkin.yaml", `
log:
  level: warn
serve:
  addr: "0.0.0.0:8080"
  token_ttl: 2h
`)
	cfg, err := LoadWithEnvFile(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Serve.Addr != "0.0.0.0:8080" || cfg.Serve.TokenTTL.Duration != 2*time.Hour {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.REPL.Prompt != "napkin> " {
		t.Fatalf("unset keys should keep defaults. got=%q", cfg.REPL.Prompt)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "napkin.toml", "[serve]\naddr = \":9000\"\n")
	t.Setenv("NAPKIN_SERVE_ADDR", ":9100")
	t.Setenv("NAPKIN_REPL_COLOR", "false")
	t.Setenv("NAPKIN_SERVE_TOKEN_TTL", "30s")

	cfg, err := LoadWithEnvFile(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Serve.Addr != ":9100" || cfg.REPL.Color || cfg.Serve.TokenTTL.Duration != 30*time.Second {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestDotEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "NAPKIN_SERVE_JWT_SECRET=from-dotenv\n")
	t.Setenv("NAPKIN_SERVE_JWT_SECRET", "")
	os.Unsetenv("NAPKIN_SERVE_JWT_SECRET")

	cfg, err := LoadWithEnvFile("", envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Serve.JWTSecret != "from-dotenv" {
		t.Fatalf(".env not applied. got=%q", cfg.Serve.JWTSecret)
	}

	if _, err := LoadWithEnvFile("", filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero ttl", func(c *Config) { c.Serve.TokenTTL = Duration{} }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	cfg := Default()
	if err := cfg.ValidateServe(); err == nil {
		t.Fatalf("serve without secret should fail")
	}
	cfg.Serve.JWTSecret = "x"
	cfg.Serve.PasswordHash = "y"
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "napkin.ini", "x=1")
	if _, err := LoadWithEnvFile(path, ""); err == nil {
		t.Fatalf("expected error for .ini file")
	}
}
