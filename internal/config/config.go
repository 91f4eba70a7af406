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
	ServerPort     string
	AppMode        string
	AllowedOrigins []string

	SubmitDelay   time.Duration
	StrictOptions bool

	PreviewMaxDimension int
	PreviewJPEGQuality  int

	FormIdleTTL time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	submitDelayMS := getEnvAsInt("SUBMIT_DELAY_MS", 2000)
	if submitDelayMS < 0 {
		submitDelayMS = 2000
	}

	idleMin := getEnvAsInt("FORM_IDLE_TTL_MIN", 30)
	if idleMin <= 0 {
		idleMin = 30
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppMode:    getEnv("APP_MODE", "development"),

		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		SubmitDelay:   time.Duration(submitDelayMS) * time.Millisecond,
		StrictOptions: getEnvAsBool("STRICT_OPTIONS", true),

		PreviewMaxDimension: getEnvAsInt("PREVIEW_MAX_DIMENSION", 400),
		PreviewJPEGQuality:  getEnvAsInt("PREVIEW_JPEG_QUALITY", 80),

		FormIdleTTL: time.Duration(idleMin) * time.Minute,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		RedisURL: os.Getenv("REDIS_URL"),
	}, nil
}

// DatabaseEnabled reports whether submitted listings should be stored.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
