package client

import (
	"fmt"
	"time"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/config"
)

// ClientConfig represents configuration for a chain client Service
type ClientConfig struct {
	APIURL  string `json:"api_url"`  // Node HTTP API base URL (e.g., "http://localhost:9090")
	ChainID string `json:"chain_id"` // 0x-prefixed hex chain identifier
	APIKey  string `json:"api_key"`  // API key for node auth
	JWT     string `json:"jwt"`      // Optional JWT bearer token

	ViewTimeout time.Duration `json:"view_timeout"`
	PostTimeout time.Duration `json:"post_timeout"`
	WaitTimeout time.Duration `json:"wait_timeout"` // used when WaitUntilProcessed gets a zero timeout

	Topics           []string      `json:"topics"`
	IdleTimeout      time.Duration `json:"idle_timeout"` // 0 keeps subscriptions open until the next message after Stop
	HandshakeTimeout time.Duration `json:"handshake_timeout"`

	RequestsPerSecond float64 `json:"requests_per_second"` // 0 disables limiting
	Burst             int     `json:"burst"`

	QuietMode bool `json:"quiet_mode"` // Suppress debug/info logs
}

// DefaultClientConfig returns a default client configuration for chainID
func DefaultClientConfig(chainID string) *ClientConfig {
	defaultCfg := config.DefaultConfig()

	return &ClientConfig{
		APIURL:            defaultCfg.Node.APIURL,
		ChainID:           chainID,
		ViewTimeout:       defaultCfg.Timeouts.View,
		PostTimeout:       defaultCfg.Timeouts.Post,
		WaitTimeout:       defaultCfg.Timeouts.Wait,
		Topics:            defaultCfg.Events.Topics,
		HandshakeTimeout:  defaultCfg.Events.HandshakeTimeout,
		RequestsPerSecond: defaultCfg.Limits.RequestsPerSecond,
		Burst:             defaultCfg.Limits.Burst,
	}
}

// ClientConfigFromConfig validates a loaded config file and maps it to a ClientConfig
func ClientConfigFromConfig(cfg *config.Config) (*ClientConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, errs[0])
	}

	return &ClientConfig{
		APIURL:            cfg.Node.APIURL,
		ChainID:           cfg.Node.ChainID,
		APIKey:            cfg.Node.APIKey,
		JWT:               cfg.Node.JWT,
		ViewTimeout:       cfg.Timeouts.View,
		PostTimeout:       cfg.Timeouts.Post,
		WaitTimeout:       cfg.Timeouts.Wait,
		Topics:            append([]string(nil), cfg.Events.Topics...),
		IdleTimeout:       cfg.Events.IdleTimeout,
		HandshakeTimeout:  cfg.Events.HandshakeTimeout,
		RequestsPerSecond: cfg.Limits.RequestsPerSecond,
		Burst:             cfg.Limits.Burst,
		QuietMode:         cfg.Logging.Quiet,
	}, nil
}

// ValidateClientConfig validates a client configuration and returns the parsed chain ID
func ValidateClientConfig(cfg *ClientConfig) (chain.ChainID, error) {
	if cfg == nil {
		return chain.ChainID{}, fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
	}
	if cfg.APIURL == "" {
		return chain.ChainID{}, fmt.Errorf("%w: api url is required", ErrInvalidConfig)
	}
	chainID, err := chain.ChainIDFromHex(cfg.ChainID)
	if err != nil {
		return chain.ChainID{}, fmt.Errorf("%w: chain id: %v", ErrInvalidConfig, err)
	}
	if cfg.JWT != "" && cfg.APIKey != "" {
		return chain.ChainID{}, fmt.Errorf("%w: api key and jwt are mutually exclusive", ErrInvalidConfig)
	}
	return chainID, nil
}
