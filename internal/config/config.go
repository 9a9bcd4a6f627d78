package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	LogLevel      string

	StorageDir string

	// Watermark / protection pipeline
	BrandName   string
	BlurSigma   float64
	JPEGQuality int

	// Soft TTLs for deliverable assets, in hours
	ProtectedAssetTTLHours int
	FinalAssetTTLHours     int

	// Billing
	CheckoutBaseURL      string
	BillingWebhookSecret string
	SubscriptionEnforced bool
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "creax"),
		DBPassword: getEnv("DB_PASSWORD", "creaxpassword"),
		DBName:     getEnv("DB_NAME", "creax"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		StorageDir: getEnv("STORAGE_DIR", "./data/assets"),

		BrandName:   getEnv("BRAND_NAME", "CreaX"),
		BlurSigma:   getEnvFloat("PROTECT_BLUR_SIGMA", 8.0),
		JPEGQuality: getEnvInt("PROTECT_JPEG_QUALITY", 62),

		ProtectedAssetTTLHours: getEnvInt("PROTECTED_ASSET_TTL_HOURS", 72),
		FinalAssetTTLHours:     getEnvInt("FINAL_ASSET_TTL_HOURS", 336),

		CheckoutBaseURL:      getEnv("CHECKOUT_BASE_URL", "https://pay.example.com/session"),
		BillingWebhookSecret: getEnv("BILLING_WEBHOOK_SECRET", ""),
		SubscriptionEnforced: getEnvBool("SUBSCRIPTION_ENFORCED", false),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
