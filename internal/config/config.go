package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var AppEnv Config

type Config struct {
	Port              string
	MongoURI          string
	DBName            string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminCode         string
	BaseURL           string
	FrontendURL       string
	PaystackSecretKey string
	PaystackBaseURL   string
	CloudinaryURL     string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Info(".env not loaded")
	}
	AppEnv = Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		MongoURI:          getEnvOrDefault("MONGO_URI", ""),
		DBName:            getEnvOrDefault("DB_NAME", "ivorybeauty"),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:          getDurationEnv("TOKEN_TTL_HOURS", 24, time.Hour),
		AdminCode:         getEnvOrDefault("ADMIN_CODE", ""),
		BaseURL:           getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", ""),
		PaystackSecretKey: getEnvOrDefault("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:   getEnvOrDefault("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		CloudinaryURL:     getEnvOrDefault("CLOUDINARY_URL", ""),
	}
	// Payment redirects land on the storefront, which may be served from a
	// different origin than the API.
	if AppEnv.FrontendURL == "" {
		AppEnv.FrontendURL = AppEnv.BaseURL
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
