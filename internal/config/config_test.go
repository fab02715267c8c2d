package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Address() != ":8080" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.ShutdownPeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown period %s", cfg.ShutdownPeriod)
	}
	if cfg.StartingBalance.String() != "1000" {
		t.Fatalf("unexpected starting balance %s", cfg.StartingBalance)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected dev jwt secret fallback")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestLoadRequiresDriverURLs(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected DATABASE_URL error")
	}

	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected REDIS_URL error")
	}
}

func TestLoadRequiresSecretsOutsideDev(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected secret error in production")
	}

	t.Setenv("JWT_SECRET", "a")
	t.Setenv("REFRESH_SECRET", "b")
	t.Setenv("STARTING_BALANCE", "250.75")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StartingBalance.String() != "250.75" {
		t.Fatalf("unexpected starting balance %s", cfg.StartingBalance)
	}
}
