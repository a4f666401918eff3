package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EmailDriverResend = "resend"
	EmailDriverSMTP   = "smtp"
	EmailDriverLog    = "log"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret              string
	JWTExpiry              time.Duration
	TokenEmailVerifyExpiry time.Duration

	// Email
	EmailDriver    string
	EmailFrom      string
	ResendAPIKey   string
	SMTPHost       string
	SMTPUser       string
	SMTPPassword   string
	SMTPSkipVerify bool

	// Storage
	StorageDriver string
	PublicDir     string
	TmpDir        string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, R2, etc.)
	S3PublicURL   string // Optional: CDN or bucket website base URL for object links

	// HTTP
	CORSAllowedOrigins []string
	AuthRateLimit      int           // Requests per window on signup/login/verify
	AuthRateWindow     time.Duration
	TrustProxy         bool          // Take the client IP from X-Forwarded-For / X-Real-IP

	// Observability (optional)
	SentryDSN string

	// Maintenance
	CleanupSchedule string
}

// Load reads the configuration from the environment. A missing required
// variable terminates the process.
func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := parse(envRequired)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		err = validateProduction(cfg)
		if err != nil {
			slog.Error("invalid production configuration", "error", err,
				"hint", "set APP_ENV=development for local testing with email log mode")
			os.Exit(1)
		}
	}

	return cfg
}

// parse builds a Config from the environment. required is called for every
// mandatory variable so tests can observe missing keys without exiting.
func parse(required func(key string) string) (*Config, error) {
	appEnv := required("APP_ENV")

	defaultEmailDriver := EmailDriverResend
	if appEnv == "development" {
		defaultEmailDriver = EmailDriverLog
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Contacts"),
		AppEnv:  appEnv,                                       // Required: 'development' or 'production'
		AppURL:  strings.TrimSuffix(required("APP_URL"), "/"), // Required: base URL for email links
		Port:    envString("PORT", "3000"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/contacts.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:              required("JWT_SECRET"),
		JWTExpiry:              envDuration("JWT_EXPIRY", time.Hour),
		TokenEmailVerifyExpiry: envDuration("TOKEN_EMAIL_VERIFY_EXPIRY", 24*time.Hour),

		// Email
		EmailDriver:    envString("EMAIL_DRIVER", defaultEmailDriver),
		EmailFrom:      required("EMAIL_FROM"),
		ResendAPIKey:   envString("RESEND_API_KEY", ""),
		SMTPHost:       envString("SMTP_HOST", ""),
		SMTPUser:       envString("SMTP_USER", ""),
		SMTPPassword:   envString("SMTP_PASSWORD", ""),
		SMTPSkipVerify: envBool("SMTP_SKIP_VERIFY", false),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", StorageDriverLocal),
		PublicDir:     envString("PUBLIC_DIR", "public"),
		TmpDir:        envString("TMP_DIR", "tmp"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""),
		S3PublicURL:   strings.TrimSuffix(envString("S3_PUBLIC_URL", ""), "/"),

		// HTTP
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AuthRateLimit:      envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:     envDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		TrustProxy:         envBool("TRUST_PROXY", false),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Maintenance
		CleanupSchedule: envString("CLEANUP_SCHEDULE", "@hourly"),
	}

	switch cfg.EmailDriver {
	case EmailDriverResend, EmailDriverSMTP, EmailDriverLog:
	default:
		return nil, fmt.Errorf("unknown EMAIL_DRIVER %q", cfg.EmailDriver)
	}

	switch cfg.StorageDriver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=s3 requires S3_REGION and S3_BUCKET")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// validateProduction ensures the email transport is really configured for
// production deployments. Development falls back to logging emails.
func validateProduction(cfg *Config) error {
	switch cfg.EmailDriver {
	case EmailDriverResend:
		if cfg.ResendAPIKey == "" {
			return fmt.Errorf("production deployment requires RESEND_API_KEY")
		}
	case EmailDriverSMTP:
		if cfg.SMTPHost == "" {
			return fmt.Errorf("production deployment requires SMTP_HOST")
		}
	case EmailDriverLog:
		return fmt.Errorf("EMAIL_DRIVER=log is not allowed in production")
	}
	return nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
