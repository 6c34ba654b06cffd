package config

import (
	"time"
)

// Config represents the main configuration for a chain client
type Config struct {
	Node     NodeConfig     `yaml:"node"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Events   EventsConfig   `yaml:"events"`
	Limits   LimitsConfig   `yaml:"limits"`
	Identity IdentityConfig `yaml:"identity"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NodeConfig describes the ledger node the client talks to
type NodeConfig struct {
	APIURL  string `yaml:"api_url"`  // Base URL of the node HTTP API (e.g., http://localhost:9090)
	ChainID string `yaml:"chain_id"` // 0x-prefixed hex chain identifier
	APIKey  string `yaml:"api_key"`  // Optional API key sent as X-API-Key
	JWT     string `yaml:"jwt"`      // Optional bearer token, takes precedence over api_key
}

// TimeoutConfig bounds the synchronous node operations
type TimeoutConfig struct {
	View time.Duration `yaml:"view"` // default: 10s
	Post time.Duration `yaml:"post"` // default: 30s
	Wait time.Duration `yaml:"wait"` // default wait used when callers pass zero
}

// EventsConfig configures the event subscriber
type EventsConfig struct {
	Topics           []string      `yaml:"topics"`            // default: chains, block_events
	IdleTimeout      time.Duration `yaml:"idle_timeout"`      // 0 disables
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"` // websocket dial handshake
}

// LimitsConfig holds client-side outbound rate limits
type LimitsConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables limiting
	Burst             int     `yaml:"burst"`
}

// IdentityConfig points at the signing key used by tools built on the client
type IdentityConfig struct {
	KeyFile string `yaml:"key_file"`
	Scheme  string `yaml:"scheme"` // ed25519, secp256k1
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // console, colored
	OutputFile string `yaml:"output_file"` // Empty for stdout
	Quiet      bool   `yaml:"quiet"`       // Only warnings and errors
}

// DefaultTopics are the event feed topics needed for block and contract events.
var DefaultTopics = []string{"chains", "block_events"}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			APIURL: "http://localhost:9090",
		},
		Timeouts: TimeoutConfig{
			View: 10 * time.Second,
			Post: 30 * time.Second,
			Wait: 60 * time.Second,
		},
		Events: EventsConfig{
			Topics:           append([]string(nil), DefaultTopics...),
			HandshakeTimeout: 10 * time.Second,
		},
		Limits: LimitsConfig{
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Identity: IdentityConfig{
			Scheme: "ed25519",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
