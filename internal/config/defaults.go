package config

import "time"

const (
	defaultPort        = 8080
	defaultMetricsPort = 9102
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "fastfeet",
}

var defaultKafka = Kafka{
	Topic:     "fastfeet.notifications",
	Group:     "fastfeet-mailer",
	QueueSize: 256,
}

var defaultAuth = Auth{
	TTL: 7 * 24 * time.Hour,
}

var defaultMail = Mail{
	Host:        "localhost",
	Port:        1025,
	From:        "Equipe FastFeet <noreply@fastfeet.com>",
	MaxAttempts: 4,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

var defaultFiles = Files{
	Dir:       "tmp/uploads",
	PublicURL: "http://localhost:8080",
}

var defaultAccess = Access{
	CacheTTL:  30 * time.Second,
	CacheSize: 1024,
}

var defaultRateLimit = RateLimit{
	SessionsPerMinute: 10,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default queue settings. Brokers are empty, which
// disables notification publishing.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultAuth returns the default token settings.
func DefaultAuth() Auth {
	return defaultAuth
}

// DefaultMail returns the default SMTP settings.
func DefaultMail() Mail {
	return defaultMail
}

// DefaultFiles returns the default upload settings.
func DefaultFiles() Files {
	return defaultFiles
}

// DefaultAccess returns the default access-policy cache settings.
func DefaultAccess() Access {
	return defaultAccess
}

// DefaultRateLimit returns the default session rate limit.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
