package config

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default server port: got %d want 8080", cfg.Server.Port)
	}
	if cfg.Server.OpsPort != 8081 {
		t.Errorf("default ops port: got %d want 8081", cfg.Server.OpsPort)
	}
	if cfg.DB.Driver != DriverSQLite {
		t.Errorf("default db driver: got %q want %q", cfg.DB.Driver, DriverSQLite)
	}
	if cfg.JWT.ExpiresIn != 24 {
		t.Errorf("default jwt expiry: got %d want 24", cfg.JWT.ExpiresIn)
	}
	if cfg.SMTP.Enabled {
		t.Error("smtp must be disabled by default")
	}
	if !cfg.Seed.Enabled {
		t.Error("seeding must be enabled by default")
	}
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "env-secret")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port from env: got %d want 9090", cfg.Server.Port)
	}
	if cfg.DB.Driver != DriverMemory {
		t.Errorf("db driver from env: got %q want %q", cfg.DB.Driver, DriverMemory)
	}
	if cfg.JWT.SecretKey != "env-secret" {
		t.Errorf("jwt secret from env: got %q want env-secret", cfg.JWT.SecretKey)
	}
}

func TestNewConfigDriverCaseInsensitive(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if cfg.DB.Driver != DriverPostgres {
		t.Errorf("db driver normalization: got %q want %q", cfg.DB.Driver, DriverPostgres)
	}
}

func TestNewConfigUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := NewConfig(); err == nil {
		t.Error("unknown db driver must be rejected")
	}
}
