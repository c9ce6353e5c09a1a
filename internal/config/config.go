// Package config carrega a configuração das variáveis de ambiente (com fallback para .env).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	NATSURL  string
	Mongo    MongoConfig

	// EventBroker: rabbitmq | nats | none
	EventBroker string
	// Storage: postgres | memory
	Storage string

	StoreTimeout time.Duration
	DeepLinkBase string
	// PresenceMode: live (websocket) | static
	PresenceMode string

	LogLevel  string
	LogFormat string
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Name     string
}

// URL monta a string de conexão do pgx.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Host string
	Port int
}

func (c RedisConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

type RabbitMQConfig struct {
	User     string
	Password string
	Host     string
	Port     int
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

type MongoConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

func (c MongoConfig) URI() string {
	if c.User == "" {
		return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.User, c.Password, c.Host, c.Port)
}

// Load lê as variáveis de ambiente. Prioridade: ambiente > .env > defaults.
// Em Produção (Docker/K8s) não existe .env, então o erro do godotenv é ignorado.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		DB: DBConfig{
			User:     getEnv("DB_USER", "ledger"),
			Password: getEnv("DB_PASSWORD", "secret123"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "otcdesk"),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnvInt("REDIS_PORT", 6379),
		},
		RabbitMQ: RabbitMQConfig{
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASS", "guest"),
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
		},
		NATSURL: getEnv("NATS_URL", "nats://localhost:4222"),
		Mongo: MongoConfig{
			User:     getEnv("MONGO_USER", ""),
			Password: getEnv("MONGO_PASS", ""),
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnvInt("MONGO_PORT", 27017),
			Database: getEnv("MONGO_DB", "otcdesk_audit"),
		},
		EventBroker:  strings.ToLower(getEnv("EVENT_BROKER", "rabbitmq")),
		Storage:      strings.ToLower(getEnv("STORAGE", "postgres")),
		DeepLinkBase: getEnv("DEEP_LINK_BASE", ""),
		PresenceMode: strings.ToLower(getEnv("PRESENCE_MODE", "live")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "console")),
	}

	timeout, err := getEnvDuration("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.StoreTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate confere valores que quebrariam a subida do serviço.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.HTTPPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %q", c.HTTPPort)
	}
	switch c.EventBroker {
	case "rabbitmq", "nats", "none":
	default:
		return fmt.Errorf("EVENT_BROKER must be rabbitmq, nats or none, got %q", c.EventBroker)
	}
	switch c.Storage {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORAGE must be postgres or memory, got %q", c.Storage)
	}
	switch c.PresenceMode {
	case "live", "static":
	default:
		return fmt.Errorf("PRESENCE_MODE must be live or static, got %q", c.PresenceMode)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
