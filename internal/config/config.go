// config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	KVBackend   string // memory | redis | mongo
	MongoURI    string
	MongoDBName string
	RedisAddr   string
	RabbitURL   string
	AuthURL     string
	AuthToken   string

	// Cadencia del scheduler y umbral de avance del motor de envío.
	TickInterval    time.Duration
	AdvanceInterval time.Duration

	// Frescura máxima del veredicto de sesión que gatea al ticker.
	SessionCacheTTL time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		KVBackend:       getEnv("KV_BACKEND", "mongo"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront_db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RabbitURL:       getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		AuthURL:         getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		AuthToken:       getEnv("AUTH_TOKEN", ""),
		TickInterval:    getEnvMillis("TICK_INTERVAL_MS", 1000),
		AdvanceInterval: getEnvMillis("ADVANCE_INTERVAL_MS", 5000),
		SessionCacheTTL: getEnvMillis("SESSION_CACHE_TTL_MS", 1000),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvMillis(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(fallback) * time.Millisecond
}
