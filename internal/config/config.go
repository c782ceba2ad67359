package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends de armazenamento suportados
const (
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Config armazena as configurações da aplicação
type Config struct {
	TokenAPI     string
	TokenAPIHash string
	Port         string
	GinMode      string

	LogLevel string
	LogJSON  bool
	LogFile  string

	StorageBackend string
	Database       DatabaseConfig
	Journey        JourneyConfig

	DashboardCacheTTL      time.Duration
	SnapshotCron           string
	StreakIncludeRepeating bool
}

// DatabaseConfig contém os parâmetros de conexão com o PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN monta a string de conexão para o lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// JourneyConfig configura o cliente da API remota de metas
type JourneyConfig struct {
	BaseURL            string
	Token              string
	RateLimitPerMinute int
}

var (
	// ErrMissingToken indica que um token obrigatório não foi configurado
	ErrMissingToken = errors.New("token obrigatório não configurado")
	// ErrInvalidBackend indica STORAGE_BACKEND desconhecido
	ErrInvalidBackend = errors.New("STORAGE_BACKEND inválido")
	// ErrMissingJourneyURL indica backend remoto sem URL
	ErrMissingJourneyURL = errors.New("JOURNEY_API_URL não configurado")
)

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg := &Config{
		TokenAPI:     os.Getenv("TOKEN_API"),
		TokenAPIHash: os.Getenv("TOKEN_API_HASH"),
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getBool("LOG_JSON", false),
		LogFile:  os.Getenv("LOG_FILE"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "journey_goals"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Journey: JourneyConfig{
			BaseURL:            strings.TrimRight(os.Getenv("JOURNEY_API_URL"), "/"),
			Token:              os.Getenv("JOURNEY_API_TOKEN"),
			RateLimitPerMinute: getInt("JOURNEY_RATE_LIMIT", 100),
		},

		DashboardCacheTTL:      getDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		SnapshotCron:           getEnv("SNAPSHOT_CRON", "55 23 * * *"),
		StreakIncludeRepeating: getBool("STREAK_INCLUDE_REPEATING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica as combinações obrigatórias
func (c *Config) Validate() error {
	if c.TokenAPI == "" && c.TokenAPIHash == "" {
		return fmt.Errorf("%w: TOKEN_API ou TOKEN_API_HASH", ErrMissingToken)
	}

	switch c.StorageBackend {
	case BackendPostgres:
	case BackendRemote:
		if c.Journey.BaseURL == "" {
			return ErrMissingJourneyURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.StorageBackend)
	}

	if c.Journey.RateLimitPerMinute <= 0 {
		c.Journey.RateLimitPerMinute = 100
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration aceita "30s", "2m" ou um número de segundos
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
