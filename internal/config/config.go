package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string

	// Asset storage. Backend is "local" or "minio".
	StorageBackend string
	UploadDir      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Optional broker for cross-instance event fan-out. Empty disables it.
	AMQPURL string
}

func Load() *Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "feedhub"),
		DBPassword: getEnv("DB_PASSWORD", "feedhub_dev_password"),
		DBName:     getEnv("DB_NAME", "feedhub"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "feedhub-images"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		AMQPURL: getEnv("AMQP_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
