package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Observ    ObservabilityConfig
}

type ServerConfig struct {
	Port    string
	Env     string
	Version string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type RateLimitConfig struct {
	Enabled bool
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, _ := strconv.Atoi(getEnv("TOKEN_TTL_SECONDS", "3600"))
	sweepInterval, _ := strconv.Atoi(getEnv("BLACKLIST_SWEEP_INTERVAL_SECONDS", "300"))

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			Env:     getEnv("ENV", "development"),
			Version: "1.0.0",
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:      time.Duration(tokenTTL) * time.Second,
			SweepInterval: time.Duration(sweepInterval) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Enabled: getBool("KAFKA_ENABLED", false),
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBool("RATE_LIMIT_ENABLED", true),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return parsed
}
