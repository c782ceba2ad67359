package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_API", "segredo")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("DASHBOARD_CACHE_TTL", "")
	t.Setenv("STREAK_INCLUDE_REPEATING", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load falhou: %v", err)
	}
	if cfg.StorageBackend != BackendPostgres {
		t.Errorf("backend padrão esperado postgres, obtido %s", cfg.StorageBackend)
	}
	if cfg.DashboardCacheTTL != 30*time.Second {
		t.Errorf("TTL padrão inesperado: %v", cfg.DashboardCacheTTL)
	}
	if cfg.StreakIncludeRepeating {
		t.Error("STREAK_INCLUDE_REPEATING deveria ser false por padrão")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_API", "segredo")
	t.Setenv("STORAGE_BACKEND", "REMOTE")
	t.Setenv("JOURNEY_API_URL", "https://journey.example.com/")
	t.Setenv("DASHBOARD_CACHE_TTL", "90")
	t.Setenv("STREAK_INCLUDE_REPEATING", "true")
	t.Setenv("JOURNEY_RATE_LIMIT", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load falhou: %v", err)
	}
	if cfg.StorageBackend != BackendRemote {
		t.Errorf("backend esperado remote, obtido %s", cfg.StorageBackend)
	}
	if cfg.Journey.BaseURL != "https://journey.example.com" {
		t.Errorf("barra final deveria ser removida: %s", cfg.Journey.BaseURL)
	}
	if cfg.DashboardCacheTTL != 90*time.Second {
		t.Errorf("TTL esperado 90s, obtido %v", cfg.DashboardCacheTTL)
	}
	if !cfg.StreakIncludeRepeating {
		t.Error("STREAK_INCLUDE_REPEATING deveria ser true")
	}
	if cfg.Journey.RateLimitPerMinute != 100 {
		t.Errorf("rate limit inválido deveria voltar ao padrão, obtido %d", cfg.Journey.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"sem token", Config{StorageBackend: BackendPostgres}, ErrMissingToken},
		{"backend desconhecido", Config{TokenAPI: "x", StorageBackend: "mongo"}, ErrInvalidBackend},
		{"remoto sem url", Config{TokenAPI: "x", StorageBackend: BackendRemote}, ErrMissingJourneyURL},
		{"hash basta", Config{TokenAPIHash: "$2a$10$abc", StorageBackend: BackendPostgres}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("esperado %v, obtido %v", tt.want, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if d.DSN() != want {
		t.Errorf("DSN = %q, esperado %q", d.DSN(), want)
	}
}
