package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Persistence drivers supported by the timetable service.
const (
	DriverPostgres = "postgres"
	DriverGraphQL  = "graphql"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Remote   RemoteConfig
	Registry RegistryConfig
	Bulk     BulkConfig
	Tenant   TenantConfig

	PersistenceDriver string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RemoteConfig points at the hosted persistence backend (GraphQL + REST).
type RemoteConfig struct {
	GraphQLURL  string
	RESTBaseURL string
	APIToken    string
	Timeout     time.Duration
}

// RegistryConfig controls caching of school configuration snapshots.
type RegistryConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// BulkConfig tunes the bulk lesson coordinator.
type BulkConfig struct {
	MaxEntries int
	Workers    int
	QueueSize  int
	StatusTTL  time.Duration
}

// TenantConfig describes how school subdomains are resolved.
type TenantConfig struct {
	BaseDomain    string
	DefaultTenant string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PersistenceDriver = strings.ToLower(v.GetString("PERSISTENCE_DRIVER"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Remote = RemoteConfig{
		GraphQLURL:  v.GetString("REMOTE_GRAPHQL_URL"),
		RESTBaseURL: strings.TrimRight(v.GetString("REMOTE_REST_BASE_URL"), "/"),
		APIToken:    v.GetString("REMOTE_API_TOKEN"),
		Timeout:     parseDuration(v.GetString("REMOTE_TIMEOUT"), 15*time.Second),
	}

	cfg.Registry = RegistryConfig{
		CacheEnabled: v.GetBool("ENABLE_REGISTRY_CACHE"),
		CacheTTL:     parseDuration(v.GetString("REGISTRY_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Bulk = BulkConfig{
		MaxEntries: v.GetInt("BULK_MAX_ENTRIES"),
		Workers:    v.GetInt("BULK_WORKERS"),
		QueueSize:  v.GetInt("BULK_QUEUE_SIZE"),
		StatusTTL:  parseDuration(v.GetString("BULK_STATUS_TTL"), 30*time.Minute),
	}

	cfg.Tenant = TenantConfig{
		BaseDomain:    strings.ToLower(v.GetString("TENANT_BASE_DOMAIN")),
		DefaultTenant: v.GetString("DEFAULT_TENANT"),
	}

	if cfg.PersistenceDriver != DriverPostgres && cfg.PersistenceDriver != DriverGraphQL {
		return nil, errors.New("PERSISTENCE_DRIVER must be one of postgres, graphql")
	}
	if cfg.PersistenceDriver == DriverGraphQL && cfg.Remote.GraphQLURL == "" {
		return nil, errors.New("REMOTE_GRAPHQL_URL is required for the graphql driver")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PERSISTENCE_DRIVER", DriverPostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REMOTE_GRAPHQL_URL", "")
	v.SetDefault("REMOTE_REST_BASE_URL", "")
	v.SetDefault("REMOTE_API_TOKEN", "")
	v.SetDefault("REMOTE_TIMEOUT", "15s")

	v.SetDefault("ENABLE_REGISTRY_CACHE", false)
	v.SetDefault("REGISTRY_CACHE_TTL", "15m")

	v.SetDefault("BULK_MAX_ENTRIES", 200)
	v.SetDefault("BULK_WORKERS", 1)
	v.SetDefault("BULK_QUEUE_SIZE", 16)
	v.SetDefault("BULK_STATUS_TTL", "30m")

	v.SetDefault("TENANT_BASE_DOMAIN", "")
	v.SetDefault("DEFAULT_TENANT", "default")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
