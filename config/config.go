package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage drivers understood by the upload pipeline.
const (
	StorageLocal    = "local"
	StorageFirebase = "firebase"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTAccessTTLHours  int
	JWTRefreshTTLHours int

	// ✅ Redis Config (rate limiter store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config (domain events)
	KafkaBrokers []string
	KafkaTopic   string

	// ✅ Object storage
	StorageDriver         string
	UploadDir             string
	PublicBaseURL         string
	FirebaseCredentials   string
	FirebaseProjectID     string
	FirebaseStorageBucket string

	AllowedOrigins     []string
	LogLevel           string
	RateLimitPerMinute int64

	// Bootstrap admin account, created on first start when both are set
	AdminEmail    string
	AdminPassword string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file, using environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "invitations"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:  getInt("JWT_ACCESS_TTL_HOURS", 1),
		JWTRefreshTTLHours: getInt("JWT_REFRESH_TTL_HOURS", 24*7),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "invitation-events"),

		StorageDriver:         getEnv("STORAGE_DRIVER", StorageLocal),
		UploadDir:             getEnv("UPLOAD_DIR", "/data/uploads"),
		PublicBaseURL:         strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		FirebaseCredentials:   getEnv("FIREBASE_CREDENTIALS_PATH", "./serviceAccountKey.json"),
		FirebaseProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),

		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:4173")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimitPerMinute: int64(getInt("RATE_LIMIT_PER_MINUTE", 100)),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ invalid integer, using default")
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
