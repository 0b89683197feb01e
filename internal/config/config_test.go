package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Paths.DatabasePath != "~/.seiri/agents.db" {
		t.Fatalf("database path default: %s", cfg.Paths.DatabasePath)
	}
	if cfg.Kafka.Enabled || cfg.Slack.Enabled || cfg.Telemetry.Enabled {
		t.Fatal("integrations must default to disabled")
	}
	if cfg.Kafka.Brokers != "localhost:9092" {
		t.Fatalf("kafka brokers default: %s", cfg.Kafka.Brokers)
	}
}

func TestConfigPathExplicitOverride(t *testing.T) {
	t.Setenv("SEIRI_AGENTS_CONFIG", "/tmp/custom/agents.json")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if path != "/tmp/custom/agents.json" {
		t.Fatalf("path %s", path)
	}
}

func TestConfigPathSeiriHome(t *testing.T) {
	t.Setenv("SEIRI_AGENTS_CONFIG", "")
	t.Setenv("SEIRI_HOME", "/srv/seiri")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if path != filepath.Join("/srv/seiri", ConfigDir, ConfigFile) {
		t.Fatalf("path %s", path)
	}
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.json")
	body := `{
		"kafka": {"enabled": true, "brokers": "broker-1:9092"},
		"slack": {"enabled": true, "channel": "C123"}
	}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SEIRI_AGENTS_CONFIG", path)
	t.Setenv("SEIRI_KAFKA_BROKERS", "broker-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Kafka.Enabled {
		t.Fatal("kafka enabled from file")
	}
	// env > file
	if cfg.Kafka.Brokers != "broker-2:9092" {
		t.Fatalf("brokers %s, want env override", cfg.Kafka.Brokers)
	}
	if cfg.Slack.Channel != "C123" {
		t.Fatalf("slack channel %s", cfg.Slack.Channel)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SEIRI_AGENTS_CONFIG", filepath.Join(t.TempDir(), "nope.json"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Kafka.Brokers != "localhost:9092" {
		t.Fatalf("defaults not applied: %s", cfg.Kafka.Brokers)
	}
}

func TestLoadSlackTokenFallback(t *testing.T) {
	t.Setenv("SEIRI_AGENTS_CONFIG", filepath.Join(t.TempDir(), "nope.json"))
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Slack.Token != "xoxb-test" {
		t.Fatalf("slack token %q", cfg.Slack.Token)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	t.Setenv("SEIRI_AGENTS_CONFIG", path)

	cfg := DefaultConfig()
	cfg.Pool.SeedManifest = "/etc/seiri/pool.yaml"
	cfg.Telemetry.Enabled = true
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Pool.SeedManifest != "/etc/seiri/pool.yaml" {
		t.Fatalf("seed manifest %s", loaded.Pool.SeedManifest)
	}
	if !loaded.Telemetry.Enabled {
		t.Fatal("telemetry flag lost in round trip")
	}
}
