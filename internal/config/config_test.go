package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("Port = %s, want 5000", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30 {
		t.Errorf("ShutdownTimeout = %d, want 30", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Driver = %s, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.SchemaScriptPath != "sql/create_meal_table.sql" {
		t.Errorf("SchemaScriptPath = %s", cfg.Storage.SchemaScriptPath)
	}
	if cfg.Battle.RandomSeed != 0 {
		t.Errorf("RandomSeed = %d, want 0", cfg.Battle.RandomSeed)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SQL_CREATE_TABLE_PATH", "/etc/meals/schema.sql")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Driver = %s, want memory", cfg.Storage.Driver)
	}
	if cfg.Storage.SchemaScriptPath != "/etc/meals/schema.sql" {
		t.Errorf("SchemaScriptPath = %s", cfg.Storage.SchemaScriptPath)
	}
	if cfg.Battle.RandomSeed != 42 {
		t.Errorf("RandomSeed = %d, want 42", cfg.Battle.RandomSeed)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("DB_PATH=/tmp/from-file.db\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	// godotenv never overrides variables already present in the environment.
	t.Setenv("DB_PATH", "")
	os.Unsetenv("DB_PATH")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.DBPath != "/tmp/from-file.db" {
		t.Errorf("DBPath = %s, want /tmp/from-file.db", cfg.Storage.DBPath)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: "5000"},
			Storage:  StorageConfig{Driver: "sqlite", DBPath: "meal_max.db", SchemaScriptPath: "sql/create_meal_table.sql"},
			LogLevel: "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "memory driver without path", mutate: func(c *Config) { c.Storage.Driver = "memory"; c.Storage.DBPath = "" }},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "PORT is required"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log level"},
		{name: "bad driver", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: "invalid storage driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.DBPath = " " }, wantErr: "DB_PATH is required"},
		{name: "missing schema script", mutate: func(c *Config) { c.Storage.SchemaScriptPath = "" }, wantErr: "SQL_CREATE_TABLE_PATH is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
