package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	Port           string
	AllowedOrigins []string

	SessionSecret   string
	SessionTTL      time.Duration
	ServiceToken    string
	DevLoginEnabled bool

	SchedulerInterval time.Duration

	IdentitySyncURL      string
	IdentitySyncPath     string
	IdentitySyncToken    string
	IdentitySyncInterval time.Duration

	R2 R2Config
}

// R2Config holds object storage credentials. Uploads are disabled when
// Bucket is empty.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

func (r R2Config) Enabled() bool {
	return r.Bucket != "" && r.AccountID != ""
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getenv("DATABASE_URL"),
		Port:             withDefault(getenv("PORT"), "5200"),
		SessionSecret:    getenv("SESSION_SECRET"),
		ServiceToken:     getenv("SERVICE_TOKEN"),
		IdentitySyncURL:  strings.TrimRight(getenv("IDENTITY_SYNC_URL"), "/"),
		IdentitySyncPath: withDefault(getenv("IDENTITY_SYNC_PATH"), "/api/v1/public/profiles"),
		R2: R2Config{
			AccountID:       getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      strings.TrimRight(getenv("CDN_BASE_URL"), "/"),
		},
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if cfg.ServiceToken == "" {
		missing = append(missing, "SERVICE_TOKEN")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	origins := withDefault(getenv("ALLOWED_ORIGINS"), "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	var err error
	if cfg.SessionTTL, err = parseDuration(getenv("SESSION_TTL"), 168*time.Hour); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.SchedulerInterval, err = parseDuration(getenv("SCHEDULER_INTERVAL"), time.Minute); err != nil {
		return nil, fmt.Errorf("SCHEDULER_INTERVAL: %w", err)
	}
	if cfg.IdentitySyncInterval, err = parseDuration(getenv("IDENTITY_SYNC_INTERVAL"), 10*time.Second); err != nil {
		return nil, fmt.Errorf("IDENTITY_SYNC_INTERVAL: %w", err)
	}
	cfg.IdentitySyncToken = withDefault(getenv("IDENTITY_SYNC_TOKEN"), cfg.ServiceToken)
	if v := getenv("DEV_LOGIN_ENABLED"); v != "" {
		if cfg.DevLoginEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("DEV_LOGIN_ENABLED: %w", err)
		}
	}
	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", v)
	}
	return d, nil
}
