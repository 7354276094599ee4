package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from .env and the environment.
type Config struct {
	Port        string
	DatabaseURL string
	ODsayAPIKey string
	KakaoAPIKey string

	// NATSURL enables trip-event publishing when set.
	NATSURL string
	// MetricsAddr enables the Prometheus endpoint when set (e.g. ":9102").
	MetricsAddr string

	LearningRate float64
	LogLevel     string
	Env          string
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getenvDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ODsayAPIKey: os.Getenv("ODSAY_API_KEY"),
		KakaoAPIKey: os.Getenv("KAKAO_REST_KEY"),
		NATSURL:     os.Getenv("NATS_URL"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),
		Env:         getenvDefault("GO_ENV", "development"),
	}

	if v := os.Getenv("LEARNING_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid LEARNING_RATE: %q", v)
		}
		cfg.LearningRate = f
	} else {
		cfg.LearningRate = 0.5
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
