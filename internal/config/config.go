package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string

	RedisURL string

	ClerkSecretKey     string
	ClerkJWTKey        string
	ClerkWebhookSecret string
	ClerkAPIURL        string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = os.Getenv("PORT")
	}
	if serverPort == "" {
		serverPort = "8080"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	clerkAPIURL := os.Getenv("CLERK_API_URL")
	if clerkAPIURL == "" {
		clerkAPIURL = "https://api.clerk.com/v1"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ServerPort: serverPort,

		RedisURL: redisURL,

		ClerkSecretKey:     os.Getenv("CLERK_API_KEY"),
		ClerkJWTKey:        os.Getenv("CLERK_JWT_KEY"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		ClerkAPIURL:        clerkAPIURL,
	}, nil
}
