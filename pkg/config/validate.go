package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "node.api_url" or "events.topics[1]"
	Message string // e.g., "must not be empty"
	Hint    string // e.g., "expected http(s)://host:port"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNode()...)
	errs = append(errs, c.validateTimeouts()...)
	errs = append(errs, c.validateEvents()...)
	errs = append(errs, c.validateLimits()...)
	errs = append(errs, c.validateIdentity()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateNode() []error {
	var errs []error
	nc := c.Node

	if nc.APIURL == "" {
		errs = append(errs, ValidationError{
			Path:    "node.api_url",
			Message: "must not be empty",
			Hint:    "expected http(s)://host:port",
		})
	} else if u, err := url.Parse(nc.APIURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Path:    "node.api_url",
			Message: fmt.Sprintf("invalid URL %q", nc.APIURL),
			Hint:    "expected http(s)://host:port",
		})
	}

	if nc.ChainID == "" {
		errs = append(errs, ValidationError{
			Path:    "node.chain_id",
			Message: "must not be empty",
		})
	} else if b, err := hexutil.Decode(nc.ChainID); err != nil || len(b) != 32 {
		errs = append(errs, ValidationError{
			Path:    "node.chain_id",
			Message: fmt.Sprintf("invalid chain id %q", nc.ChainID),
			Hint:    "expected 0x followed by 64 hex digits",
		})
	}

	if nc.JWT != "" && nc.APIKey != "" {
		errs = append(errs, ValidationError{
			Path:    "node.jwt",
			Message: "jwt and api_key are mutually exclusive",
		})
	}

	return errs
}

func (c *Config) validateTimeouts() []error {
	var errs []error
	check := func(path string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("must be positive; got %s", d),
			})
		}
	}
	check("timeouts.view", c.Timeouts.View)
	check("timeouts.post", c.Timeouts.Post)
	check("timeouts.wait", c.Timeouts.Wait)
	return errs
}

func (c *Config) validateEvents() []error {
	var errs []error
	ec := c.Events

	if len(ec.Topics) == 0 {
		errs = append(errs, ValidationError{
			Path:    "events.topics",
			Message: "must not be empty",
			Hint:    fmt.Sprintf("default topics are %s", strings.Join(DefaultTopics, ", ")),
		})
	}

	seen := make(map[string]bool)
	for i, topic := range ec.Topics {
		path := fmt.Sprintf("events.topics[%d]", i)
		if strings.TrimSpace(topic) == "" {
			errs = append(errs, ValidationError{Path: path, Message: "must not be blank"})
			continue
		}
		if seen[topic] {
			errs = append(errs, ValidationError{Path: path, Message: "duplicate topic"})
		}
		seen[topic] = true
	}

	if ec.IdleTimeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "events.idle_timeout",
			Message: fmt.Sprintf("must be >= 0; got %s", ec.IdleTimeout),
			Hint:    "0 keeps the subscription open until the next message after stop",
		})
	}
	if ec.HandshakeTimeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "events.handshake_timeout",
			Message: fmt.Sprintf("must be >= 0; got %s", ec.HandshakeTimeout),
		})
	}

	return errs
}

func (c *Config) validateLimits() []error {
	var errs []error
	lc := c.Limits

	if lc.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Path:    "limits.requests_per_second",
			Message: fmt.Sprintf("must be >= 0; got %v", lc.RequestsPerSecond),
		})
	}
	if lc.RequestsPerSecond > 0 && lc.Burst < 1 {
		errs = append(errs, ValidationError{
			Path:    "limits.burst",
			Message: fmt.Sprintf("must be >= 1 when rate limiting is enabled; got %d", lc.Burst),
		})
	}

	return errs
}

func (c *Config) validateIdentity() []error {
	var errs []error

	switch strings.ToLower(c.Identity.Scheme) {
	case "", "ed25519", "secp256k1":
	default:
		errs = append(errs, ValidationError{
			Path:    "identity.scheme",
			Message: fmt.Sprintf("unsupported scheme %q", c.Identity.Scheme),
			Hint:    "expected ed25519 or secp256k1",
		})
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	lc := c.Logging

	switch strings.ToLower(lc.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid level %q", lc.Level),
			Hint:    "expected one of debug, info, warn, error",
		})
	}

	switch strings.ToLower(lc.Format) {
	case "", "console", "colored":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("invalid format %q", lc.Format),
			Hint:    "expected console or colored",
		})
	}

	return errs
}
