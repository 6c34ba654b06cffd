// Package node is the HTTP client for the ledger node's request API.
package node

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/metrics"
	"github.com/DeBrosOfficial/chainclient/pkg/request"
)

// Default operation timeouts.
const (
	DefaultViewTimeout = 10 * time.Second
	DefaultPostTimeout = 30 * time.Second
	DefaultWaitTimeout = 60 * time.Second
)

// Operation names used in errors, logs and metrics.
const (
	OpCallView  = "callview"
	OpOffLedger = "offledger"
	OpWait      = "wait"
)

// Gateway is the node RPC surface used by the client.
type Gateway interface {
	CallView(ctx context.Context, contract, function chain.Hname, args codec.Args) (codec.Args, error)
	PostRequest(ctx context.Context, req *request.SignedRequest) (chain.RequestID, error)
	WaitUntilProcessed(ctx context.Context, requestID chain.RequestID, timeout time.Duration) error
}

// Config configures a node Client.
type Config struct {
	APIURL  string
	ChainID chain.ChainID
	APIKey  string
	JWT     string

	ViewTimeout time.Duration
	PostTimeout time.Duration
	WaitTimeout time.Duration

	// RequestsPerSecond limits outbound requests; 0 disables limiting.
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
}

// Client implements Gateway over HTTP.
type Client struct {
	baseURL    string
	chainID    chain.ChainID
	apiKey     string
	jwt        string
	timeouts   map[string]time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.ColoredLogger
	metrics    metrics.ClientMetrics
}

var _ Gateway = (*Client)(nil)

// NewClient validates cfg and returns a Client. logger and m may be nil.
func NewClient(cfg Config, logger *logging.ColoredLogger, m metrics.ClientMetrics) (*Client, error) {
	base := strings.TrimSuffix(cfg.APIURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.NewValidationError("api_url", "expected http(s)://host:port", cfg.APIURL)
	}
	if cfg.ChainID.IsZero() {
		return nil, errors.NewValidationError("chain_id", "must not be empty", nil)
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		baseURL: base,
		chainID: cfg.ChainID,
		apiKey:  cfg.APIKey,
		jwt:     cfg.JWT,
		timeouts: map[string]time.Duration{
			OpCallView:  orDefault(cfg.ViewTimeout, DefaultViewTimeout),
			OpOffLedger: orDefault(cfg.PostTimeout, DefaultPostTimeout),
			OpWait:      orDefault(cfg.WaitTimeout, DefaultWaitTimeout),
		},
		httpClient: httpClient,
		logger:     logger,
		metrics:    m,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// BaseURL returns the node API URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ChainID() chain.ChainID {
	return c.chainID
}
