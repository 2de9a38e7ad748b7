package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Limits groups the tunable bounds that used to live as scattered
// framework settings: pagination size, review score range, field lengths
// and the reserved self identifier.
type Limits struct {
	PageSize int

	MinScore int
	MaxScore int

	NameMaxLen     int
	SlugMaxLen     int
	UsernameMaxLen int
	EmailMaxLen    int
	BioMaxLen      int
	TextMaxLen     int

	ConfirmationCodeLen int
	SelfIdentifier      string
}

type Config struct {
	Host        string
	Port        string
	DatabaseURL string
	JWTSecret   string

	SMTPHost  string
	SMTPPort  string
	EmailFrom string

	Limits Limits
}

func DefaultLimits() Limits {
	return Limits{
		PageSize:            10,
		MinScore:            1,
		MaxScore:            10,
		NameMaxLen:          256,
		SlugMaxLen:          50,
		UsernameMaxLen:      150,
		EmailMaxLen:         254,
		BioMaxLen:           2000,
		TextMaxLen:          5000,
		ConfirmationCodeLen: 16,
		SelfIdentifier:      "me",
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	limits := DefaultLimits()
	limits.PageSize = getEnvInt("PAGE_SIZE", limits.PageSize)

	return &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getDatabaseURL(),
		JWTSecret:   jwtSecret,
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "25"),
		EmailFrom:   getEnv("EMAIL_FROM", "noreply@yamdb.local"),
		Limits:      limits,
	}
}

func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "postgres")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)
}

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
