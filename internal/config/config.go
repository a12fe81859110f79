package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	ServiceName string

	// Remote store. Empty DSN runs the storefront in local-only mode.
	PostgresDSN     string
	SchemaNamespace string // empty means probe at startup

	RedisAddr    string // empty falls back to in-process session storage
	KafkaBrokers []string

	AdminPassword    string
	AdminTokenSecret string
	AdminTokenTTL    time.Duration

	MediaBucket   string
	MediaRegion   string
	MediaEndpoint string

	OutboxFlushInterval time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		ServiceName: getenv("SERVICE_NAME", "storefront"),

		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		SchemaNamespace: os.Getenv("SCHEMA_NAMESPACE"),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),

		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		AdminTokenSecret: getenv("ADMIN_TOKEN_SECRET", "dev-only-secret"),
		AdminTokenTTL:    getdur("ADMIN_TOKEN_TTL", 12*time.Hour),

		MediaBucket:   os.Getenv("MEDIA_BUCKET"),
		MediaRegion:   getenv("MEDIA_REGION", "ap-northeast-1"),
		MediaEndpoint: os.Getenv("MEDIA_ENDPOINT"),

		OutboxFlushInterval: getdur("OUTBOX_FLUSH_INTERVAL", 30*time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
