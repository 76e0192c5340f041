package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/guidesync/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GUIDESYNC_AUTH_SECRET", "test-secret")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	workdir(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:3000" {
		t.Errorf("Addr = %q", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("BasePath = %q", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("MaxUploadSizeBytes = %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.CatalogStore != config.CatalogStorePostgres {
		t.Errorf("CatalogStore = %q", cfg.API.CatalogStore)
	}
	if cfg.API.Pagination.DefaultPageSize != 20 || cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("Pagination = %+v", cfg.API.Pagination)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Env() != "local" {
		t.Errorf("Env = %q", cfg.Env())
	}
}

func TestLoadLayers(t *testing.T) {
	dir := workdir(t)

	writeFile(t, dir, config.BaseConfigFile, `
version = "1.2.0"

[server]
port = 8080

[api]
base_path = "/v1"
max_upload_size = "5MB"

[database]
name = "catalog"
`)
	writeFile(t, dir, "config.staging.toml", `
[server]
host = "127.0.0.1"

[api]
catalog_store = "memory"
`)
	writeFile(t, dir, config.DotEnvFile, "GUIDESYNC_SERVER_PORT=9090\nGUIDESYNC_API_BASE_PATH=/from-dotenv\n")

	// godotenv writes straight to the process environment.
	t.Cleanup(func() { os.Unsetenv("GUIDESYNC_SERVER_PORT") })

	t.Setenv("GUIDESYNC_ENV", "staging")
	t.Setenv("GUIDESYNC_API_BASE_PATH", "/from-env")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Version != "1.2.0" {
		t.Errorf("Version = %q", cfg.Version)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q, want overlay host and .env port", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/from-env" {
		t.Errorf("BasePath = %q, process env should win over .env", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 5*1024*1024 {
		t.Errorf("MaxUploadSizeBytes = %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.CatalogStore != config.CatalogStoreMemory {
		t.Errorf("CatalogStore = %q", cfg.API.CatalogStore)
	}
	if cfg.Database.Name != "catalog" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"catalog store", map[string]string{"GUIDESYNC_API_CATALOG_STORE": "redis"}, "catalog_store"},
		{"upload size", map[string]string{"GUIDESYNC_API_MAX_UPLOAD_SIZE": "lots"}, "max_upload_size"},
		{"shutdown timeout", map[string]string{"GUIDESYNC_SHUTDOWN_TIMEOUT": "soon"}, "shutdown_timeout"},
		{"server timeout", map[string]string{"GUIDESYNC_SERVER_READ_TIMEOUT": "x"}, "server"},
		{"missing secret", map[string]string{"GUIDESYNC_AUTH_SECRET": ""}, "secret"},
		{"storage provider", map[string]string{"GUIDESYNC_STORAGE_PROVIDER": "ftp"}, "storage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := workdir(t)
	writeFile(t, dir, config.BaseConfigFile, "[server\nport = ")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
