package client

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/node"
)

// Option customizes a Service at construction.
type Option func(*options)

type options struct {
	gateway    node.Gateway
	logger     *logging.ColoredLogger
	registry   prometheus.Registerer
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// WithGateway replaces the HTTP node client, e.g. with a mock in tests.
func WithGateway(gw node.Gateway) Option {
	return func(o *options) { o.gateway = gw }
}

// WithLogger sets the logger instead of building one from QuietMode.
func WithLogger(logger *logging.ColoredLogger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetricsRegistry registers client metrics with registry.
func WithMetricsRegistry(registry prometheus.Registerer) Option {
	return func(o *options) { o.registry = registry }
}

// WithHTTPClient sets the HTTP client used for node requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithDialer sets the websocket dialer used by subscriptions.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) { o.dialer = d }
}
