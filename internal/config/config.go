// Package config provides configuration types and loading for the agent
// coordination core.
package config

// Config is the root configuration struct.
// Top-level groups: Paths, Pool, Kafka, Slack, Telemetry.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Pool      PoolConfig      `json:"pool"`
	Kafka     KafkaConfig     `json:"kafka"`
	Slack     SlackConfig     `json:"slack"`
	Telemetry TelemetryConfig `json:"telemetry"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	StateDir     string `json:"stateDir" envconfig:"STATE_DIR"`
	DatabasePath string `json:"databasePath" envconfig:"DATABASE_PATH"`
}

// ---------------------------------------------------------------------------
// Pool – agent pool seeding
// ---------------------------------------------------------------------------

// PoolConfig controls how the agent pool is seeded at startup.
type PoolConfig struct {
	// SeedManifest points at a YAML manifest; empty means the built-in
	// default seed.
	SeedManifest string `json:"seedManifest,omitempty" envconfig:"SEED_MANIFEST"`
}

// ---------------------------------------------------------------------------
// Kafka – lifecycle event stream
// ---------------------------------------------------------------------------

// KafkaConfig configures the allocation lifecycle event stream.
type KafkaConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers string `json:"brokers" envconfig:"BROKERS"` // comma-separated host:port list
}

// ---------------------------------------------------------------------------
// Slack – escalation notifications
// ---------------------------------------------------------------------------

// SlackConfig configures escalation alerts.
type SlackConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Token   string `json:"token" envconfig:"TOKEN"`
	Channel string `json:"channel" envconfig:"CHANNEL"`
}

// ---------------------------------------------------------------------------
// Telemetry – metrics endpoint
// ---------------------------------------------------------------------------

// TelemetryConfig configures the Prometheus /metrics endpoint.
type TelemetryConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Addr    string `json:"addr" envconfig:"ADDR"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			StateDir:     "~/.seiri",
			DatabasePath: "~/.seiri/agents.db",
		},
		Kafka: KafkaConfig{
			Brokers: "localhost:9092",
		},
		Telemetry: TelemetryConfig{
			Addr: "127.0.0.1:9464",
		},
	}
}
