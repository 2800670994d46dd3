package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	AMQPURL      string   `yaml:"amqp_url"`
	RedisAddr    string   `yaml:"redis_addr"`

	FeeRateBps        int64         `yaml:"fee_rate_bps"`
	AdminAccount      string        `yaml:"admin_account"`
	VotingWindow      time.Duration `yaml:"voting_window"`
	OutboxPoll        time.Duration `yaml:"outbox_poll"`
	EnableActivity    bool          `yaml:"enable_activity"`
	EnableOutboxRelay bool          `yaml:"enable_outbox_relay"`
}

// Load reads an optional YAML file named by CONFIG_FILE, then overlays
// environment variables. Environment always wins.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:       "fundry",
		HTTPPort:          "8080",
		KafkaBrokers:      []string{"localhost:9092"},
		FeeRateBps:        250,
		AdminAccount:      "platform-treasury",
		VotingWindow:      72 * time.Hour,
		OutboxPoll:        2 * time.Second,
		EnableActivity:    true,
		EnableOutboxRelay: true,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if service := os.Getenv("SERVICE_NAME"); service != "" {
		cfg.ServiceName = service
	}
	if port := os.Getenv("HTTP_PORT"); port != "" {
		cfg.HTTPPort = port
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.PostgresDSN = dsn
	}
	if brokers := envList("KAFKA_BROKERS"); len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}
	if url := os.Getenv("AMQP_URL"); url != "" {
		cfg.AMQPURL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	if bps := envInt64("FEE_RATE_BPS"); bps != nil {
		cfg.FeeRateBps = *bps
	}
	if account := os.Getenv("ADMIN_ACCOUNT"); account != "" {
		cfg.AdminAccount = account
	}
	if hours := envInt64("VOTING_WINDOW_HOURS"); hours != nil {
		cfg.VotingWindow = time.Duration(*hours) * time.Hour
	}
	if ms := envInt64("OUTBOX_POLL_MS"); ms != nil {
		cfg.OutboxPoll = time.Duration(*ms) * time.Millisecond
	}
	cfg.EnableActivity = envBool("ENABLE_ACTIVITY_FEED", cfg.EnableActivity)
	cfg.EnableOutboxRelay = envBool("ENABLE_OUTBOX_RELAY", cfg.EnableOutboxRelay)

	if cfg.FeeRateBps < 0 || cfg.FeeRateBps > 10000 {
		return Config{}, fmt.Errorf("fee rate %d out of range [0,10000]", cfg.FeeRateBps)
	}
	return cfg, nil
}

func envList(name string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

func envInt64(name string) *int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
