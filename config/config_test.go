package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/gonogo/logger"
)

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Store         struct {
		URI            string `mapstructure:"uri"`
		ConnectTimeout string `mapstructure:"connect_timeout"`
	} `mapstructure:"store"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "gonogo"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("expected development with debug, got %+v", cfg)
		}
		if cfg.Logging.ServiceName != "gonogo" {
			t.Errorf("expected logging service name to follow config name, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "gonogo", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigIsProduction(t *testing.T) {
	for env, want := range map[string]bool{"production": true, "sandbox": false, "development": false} {
		cfg := ServiceConfig{Environment: env}
		if cfg.IsProduction() != want {
			t.Errorf("IsProduction(%q) = %v, want %v", env, !want, want)
		}
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"sandbox", ServiceConfig{Name: "svc", Environment: "sandbox"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name: is required"},
		{"missing environment", ServiceConfig{Name: "svc"}, "config.environment: is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment: must be one of"},
		{"bad logging", ServiceConfig{Name: "svc", Environment: "staging", Logging: logger.Config{Level: "loud", Format: "json"}}, "config.logging"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: gonogo
environment: staging
store:
  uri: sqlite://data.db
  connect_timeout: 3s
server:
  port: 7000
`)

	var cfg testConfig
	if err := LoadConfig("gonogo", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "missing.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "gonogo" || cfg.Environment != "staging" {
		t.Errorf("unexpected base config: %+v", cfg.ServiceConfig)
	}
	if cfg.Store.URI != "sqlite://data.db" || cfg.Store.ConnectTimeout != "3s" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("expected port 7000, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "store:\n  uri: sqlite://file.db\n")
	t.Setenv("STORE_URI", "redis://localhost:6379/0")

	var cfg testConfig
	if err := LoadConfig("gonogo", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.URI != "redis://localhost:6379/0" {
		t.Errorf("expected env to override file, got %q", cfg.Store.URI)
	}
}

func TestLoadConfigEnvAliases(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/experiment")
	t.Setenv("PORT", "5050")

	var cfg testConfig
	err := LoadConfig("gonogo", &cfg,
		WithConfigFile(filepath.Join(dir, "none.yml")),
		WithEnvFile(filepath.Join(dir, "none.env")),
		WithEnvAlias("store.uri", "MONGODB_URI"),
		WithEnvAlias("server.port", "PORT"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.URI != "mongodb://localhost:27017/experiment" {
		t.Errorf("expected MONGODB_URI alias to fill store.uri, got %q", cfg.Store.URI)
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("expected PORT alias to fill server.port, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigCanonicalEnvBeatsAlias(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MONGODB_URI", "mongodb://alias/db")
	t.Setenv("STORE_URI", "mongodb://canonical/db")

	var cfg testConfig
	err := LoadConfig("gonogo", &cfg,
		WithConfigFile(filepath.Join(dir, "none.yml")),
		WithEnvFile(filepath.Join(dir, "none.env")),
		WithEnvAlias("store.uri", "MONGODB_URI"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.URI != "mongodb://canonical/db" {
		t.Errorf("expected canonical STORE_URI to win, got %q", cfg.Store.URI)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "STORE_CONNECT_TIMEOUT=7s\n")
	t.Cleanup(func() { os.Unsetenv("STORE_CONNECT_TIMEOUT") })

	var cfg testConfig
	if err := LoadConfig("gonogo", &cfg, WithConfigFile(filepath.Join(dir, "none.yml")), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.ConnectTimeout != "7s" {
		t.Errorf("expected .env value, got %q", cfg.Store.ConnectTimeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nonexistent", &cfg, WithConfigFile("/nonexistent/config.yml"), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing files, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/gonogo/config.yml": true,
		"./config.yml":            true,
		"./.env":                  true,
	}}
	r := &Resolver{FileSystem: fs}
	files := r.ResolveFiles("gonogo", LoaderConfig{})
	if files.ConfigFile != "./cmd/gonogo/config.yml" {
		t.Errorf("expected cmd config to win, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{}}
	files := r.ResolveFiles("gonogo", LoaderConfig{ConfigFile: "/etc/gonogo.yml", EnvFile: "/etc/gonogo.env"})
	if files.ConfigFile != "/etc/gonogo.yml" || files.EnvFile != "/etc/gonogo.env" {
		t.Errorf("explicit paths should be kept, got %+v", files)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("STORE_CONNECT_TIMEOUT")
	want := map[string]bool{
		"store_connect_timeout": true,
		"store.connect.timeout": true,
		"store.connect_timeout": true,
	}
	for _, v := range got {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, got)
	}
	if envKeyVariants("PORT") != nil {
		t.Error("single-segment names should not be bound")
	}
}
