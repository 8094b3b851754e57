package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds all runtime configuration, sourced from the environment.
// A .env file in the working directory is honoured when present.
type Settings struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUsername string
	DBPassword string

	ListenAddr string

	SecretKey           string
	SigningAlgorithm    string
	AccessTokenAudience string
	AccessTokenIssuer   string
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration

	AdminUsername string
}

// Load reads settings from the environment, applying defaults for everything
// except the signing secret, which has no safe default.
func Load() (*Settings, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	s := &Settings{
		DBHost:              envOr("DB_HOST", "localhost"),
		DBPort:              envOr("DB_PORT", "5432"),
		DBName:              envOr("DB_NAME", "test"),
		DBUsername:          envOr("DB_USERNAME", "admin"),
		DBPassword:          envOr("DB_PASSWORD", "password"),
		ListenAddr:          envOr("LISTEN_ADDR", ":8080"),
		SecretKey:           strings.TrimSpace(os.Getenv("SECRET_KEY")),
		SigningAlgorithm:    envOr("HASHING_ALGORITHM", "HS256"),
		AccessTokenAudience: envOr("ACCESS_TOKEN_AUDIENCE", "poly"),
		AccessTokenIssuer:   envOr("ACCESS_TOKEN_ISSUER", "poly"),
		AdminUsername:       envOr("ADMIN_USERNAME", "admin"),
	}

	accessMinutes, err := envMinutes("ACCESS_TOKEN_EXPIRY", 10)
	if err != nil {
		return nil, err
	}
	refreshMinutes, err := envMinutes("REFRESH_TOKEN_EXPIRY", 60)
	if err != nil {
		return nil, err
	}
	s.AccessTokenExpiry = accessMinutes
	s.RefreshTokenExpiry = refreshMinutes

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.SecretKey == "" {
		return errors.New("config: SECRET_KEY is required")
	}
	if s.AccessTokenExpiry >= s.RefreshTokenExpiry {
		return errors.New("config: refresh token expiry must exceed access token expiry")
	}
	return nil
}

// DSN renders the Postgres connection string for the pgx stdlib driver.
func (s *Settings) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		s.DBUsername, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envMinutes(key string, fallback int) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * time.Minute, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive number of minutes", key)
	}
	return time.Duration(minutes) * time.Minute, nil
}
