package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores settings for the API and the worker.
type Config struct {
	Port int
	// MetricsPort is where the worker exposes /metrics.
	MetricsPort int
	LogLevel    string
	DB          DB
	Kafka       Kafka
	Auth        Auth
	Delivery    Delivery
	Mail        Mail
	Files       Files
	Access      Access
	RateLimit   RateLimit
	Admin       Admin
}

// DB holds PostgreSQL connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres:// connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Kafka holds the notification queue settings.
type Kafka struct {
	Brokers   []string
	Topic     string
	Group     string
	QueueSize int
}

// Enabled reports whether a broker list was configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Auth holds session token settings.
type Auth struct {
	Secret string
	TTL    time.Duration
}

// Delivery holds lifecycle settings.
type Delivery struct {
	// Location is the zone the pickup window and the daily cap are evaluated in.
	Location *time.Location
}

// Mail holds SMTP settings for the worker.
type Mail struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Addr is host:port of the SMTP server.
func (m Mail) Addr() string { return net.JoinHostPort(m.Host, strconv.Itoa(m.Port)) }

// Files holds upload settings.
type Files struct {
	Dir       string
	PublicURL string
}

// Access holds the administrator lookup cache settings.
type Access struct {
	CacheTTL  time.Duration
	CacheSize int
}

// RateLimit bounds login attempts per client IP.
type RateLimit struct {
	SessionsPerMinute int
}

// Admin optionally bootstraps an administrator account at start.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// Enabled reports whether bootstrap credentials were provided.
func (a Admin) Enabled() bool { return a.Email != "" && a.Password != "" }

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:        defaultPort,
		MetricsPort: defaultMetricsPort,
		LogLevel:    envString("LOG_LEVEL", "info"),
		DB:          defaultDB,
		Kafka:       defaultKafka,
		Auth:        defaultAuth,
		Mail:        defaultMail,
		Files:       defaultFiles,
		Access:      defaultAccess,
		RateLimit:   defaultRateLimit,
	}

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.MetricsPort, err = envInt("METRICS_PORT", cfg.MetricsPort); err != nil {
		return nil, err
	}

	cfg.DB.Host = envString("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envString("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envString("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envString("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envString("POSTGRES_DB", cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.Topic = envString("KAFKA_NOTIFICATIONS_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.Group = envString("KAFKA_CONSUMER_GROUP", cfg.Kafka.Group)
	if cfg.Kafka.QueueSize, err = envInt("NOTIFY_QUEUE_SIZE", cfg.Kafka.QueueSize); err != nil {
		return nil, err
	}

	cfg.Auth.Secret = envString("JWT_SECRET", cfg.Auth.Secret)
	if cfg.Auth.TTL, err = envDuration("JWT_TTL", cfg.Auth.TTL); err != nil {
		return nil, err
	}

	tz := envString("DELIVERY_TIMEZONE", "Local")
	if cfg.Delivery.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_TIMEZONE %q: %w", tz, err)
	}

	cfg.Mail.Host = envString("SMTP_HOST", cfg.Mail.Host)
	if cfg.Mail.Port, err = envInt("SMTP_PORT", cfg.Mail.Port); err != nil {
		return nil, err
	}
	cfg.Mail.User = envString("SMTP_USER", cfg.Mail.User)
	cfg.Mail.Password = envString("SMTP_PASSWORD", cfg.Mail.Password)
	cfg.Mail.From = envString("MAIL_FROM", cfg.Mail.From)
	if cfg.Mail.MaxAttempts, err = envInt("MAIL_MAX_ATTEMPTS", cfg.Mail.MaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Mail.BaseDelay, err = envDuration("MAIL_RETRY_BASE_DELAY", cfg.Mail.BaseDelay); err != nil {
		return nil, err
	}
	if cfg.Mail.MaxDelay, err = envDuration("MAIL_RETRY_MAX_DELAY", cfg.Mail.MaxDelay); err != nil {
		return nil, err
	}

	cfg.Files.Dir = envString("UPLOADS_DIR", cfg.Files.Dir)
	cfg.Files.PublicURL = strings.TrimRight(envString("PUBLIC_URL", cfg.Files.PublicURL), "/")

	if cfg.Access.CacheTTL, err = envDuration("ADMIN_CACHE_TTL", cfg.Access.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimit.SessionsPerMinute, err = envInt("SESSION_RATE_LIMIT", cfg.RateLimit.SessionsPerMinute); err != nil {
		return nil, err
	}

	cfg.Admin.Name = envString("ADMIN_NAME", "Distribuidora FastFeet")
	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d", c.MetricsPort)
	}
	if c.Kafka.QueueSize <= 0 {
		return fmt.Errorf("invalid NOTIFY_QUEUE_SIZE: %d", c.Kafka.QueueSize)
	}
	if c.Auth.TTL <= 0 {
		return fmt.Errorf("invalid JWT_TTL: %s", c.Auth.TTL)
	}
	if c.Mail.MaxAttempts <= 0 {
		return fmt.Errorf("invalid MAIL_MAX_ATTEMPTS: %d", c.Mail.MaxAttempts)
	}
	if c.RateLimit.SessionsPerMinute <= 0 {
		return fmt.Errorf("invalid SESSION_RATE_LIMIT: %d", c.RateLimit.SessionsPerMinute)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// ParseDuration extends time.ParseDuration with a whole-day suffix, e.g. "7d".
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("parse days: %w", err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
