package config

import (
	"os"
	"strconv"
	"strings"
)

// Config captures service level configuration. Store selection is by
// presence: a database URL wins over a Redis address, and with neither
// the in-process store is used.
type Config struct {
	Addr string

	// ConsoleAuditing turns auditing on for console/batch runtimes.
	// Request-serving runtimes always audit.
	ConsoleAuditing bool

	DatabaseURL string
	RedisAddr   string

	KafkaBrokers []string
	KafkaTopic   string

	// JWTSigningKey enables the bearer-token actor middleware when set.
	JWTSigningKey string

	// FanoutBuffer sizes the channel between the recorder and the
	// publish worker.
	FanoutBuffer int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("TRAIL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("TRAIL_KAFKA_TOPIC")
	if topic == "" {
		topic = "trail.audits"
	}

	var brokers []string
	if raw := os.Getenv("TRAIL_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	buffer := 256
	if raw := os.Getenv("TRAIL_FANOUT_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			buffer = n
		}
	}

	return Config{
		Addr:            addr,
		ConsoleAuditing: os.Getenv("TRAIL_CONSOLE_AUDITING") == "true",
		DatabaseURL:     os.Getenv("TRAIL_DATABASE_URL"),
		RedisAddr:       os.Getenv("TRAIL_REDIS_ADDR"),
		KafkaBrokers:    brokers,
		KafkaTopic:      topic,
		JWTSigningKey:   os.Getenv("TRAIL_JWT_SIGNING_KEY"),
		FanoutBuffer:    buffer,
	}
}
