package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string
	JWTExpiry time.Duration

	SchedulerPoll  time.Duration
	SchedulerBatch int

	LinkedInAPIBase string
	LinkedInTimeout time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	cfg.JWTExpiry = time.Duration(getenvInt("JWT_EXPIRY_MINUTES", 60)) * time.Minute

	cfg.SchedulerPoll = time.Duration(getenvInt("SCHEDULER_POLL_SECONDS", 10)) * time.Second
	cfg.SchedulerBatch = getenvInt("SCHEDULER_BATCH_LIMIT", 10)

	cfg.LinkedInAPIBase = getenv("LINKEDIN_API_BASE", "https://api.linkedin.com")
	cfg.LinkedInTimeout = time.Duration(getenvInt("LINKEDIN_TIMEOUT_SECONDS", 25)) * time.Second

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
