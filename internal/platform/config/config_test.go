package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.ServiceName != "fundry" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FeeRateBps != 250 || cfg.AdminAccount != "platform-treasury" {
		t.Fatalf("unexpected fee defaults: %+v", cfg)
	}
	if cfg.VotingWindow != 72*time.Hour || cfg.OutboxPoll != 2*time.Second {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if !cfg.EnableActivity || !cfg.EnableOutboxRelay {
		t.Fatalf("workers must default to enabled: %+v", cfg)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "service_name: from-file\nhttp_port: \"9000\"\nfee_rate_bps: 100\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("FEE_RATE_BPS", "500")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092")
	t.Setenv("VOTING_WINDOW_HOURS", "24")
	t.Setenv("ENABLE_ACTIVITY_FEED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "from-file" || cfg.HTTPPort != "9000" {
		t.Fatalf("file values must apply: %+v", cfg)
	}
	if cfg.FeeRateBps != 500 {
		t.Fatalf("environment must win over file, got %d", cfg.FeeRateBps)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-b:9092" {
		t.Fatalf("broker list must trim entries: %v", cfg.KafkaBrokers)
	}
	if cfg.VotingWindow != 24*time.Hour {
		t.Fatalf("expected 24h voting window, got %s", cfg.VotingWindow)
	}
	if cfg.EnableActivity {
		t.Fatalf("expected activity feed disabled")
	}
}

func TestLoadRejectsOutOfRangeFee(t *testing.T) {
	t.Setenv("FEE_RATE_BPS", "10001")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for fee above 10000 bps")
	}
}
