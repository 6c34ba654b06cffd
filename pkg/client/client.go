// Package client is the entry point for applications and generated contract
// bindings. A Service composes the node gateway, the nonce cache, request
// signing and event subscriptions behind one configuration object.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/events"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/metrics"
	"github.com/DeBrosOfficial/chainclient/pkg/node"
	"github.com/DeBrosOfficial/chainclient/pkg/nonce"
	"github.com/DeBrosOfficial/chainclient/pkg/request"
)

// Identity signs requests and keys the nonce cache.
// *identity.Identity implements it.
type Identity interface {
	nonce.Account
	request.Signer
}

// Service implements the chain client
type Service struct {
	config  *ClientConfig
	chainID chain.ChainID
	opts    options

	gateway  node.Gateway
	nonces   *nonce.Cache
	registry *events.Registry
	logger   *logging.ColoredLogger
	metrics  metrics.ClientMetrics

	mu     sync.Mutex
	subs   map[string]*SubscriptionHandle
	latest *SubscriptionHandle
	closed bool
}

// NewService creates a new chain client
func NewService(cfg *ClientConfig, opts ...Option) (*Service, error) {
	chainID, err := ValidateClientConfig(cfg)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger, err = newClientLogger(cfg.QuietMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	m := metrics.NewNoop()
	if o.registry != nil {
		m = metrics.InitMetrics(o.registry)
	}

	gateway := o.gateway
	if gateway == nil {
		gateway, err = node.NewClient(node.Config{
			APIURL:            cfg.APIURL,
			ChainID:           chainID,
			APIKey:            cfg.APIKey,
			JWT:               cfg.JWT,
			ViewTimeout:       cfg.ViewTimeout,
			PostTimeout:       cfg.PostTimeout,
			WaitTimeout:       cfg.WaitTimeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			HTTPClient:        o.httpClient,
		}, logger, m)
		if err != nil {
			return nil, err
		}
	}

	cp := *cfg
	cp.Topics = append([]string(nil), cfg.Topics...)

	s := &Service{
		config:   &cp,
		chainID:  chainID,
		opts:     o,
		gateway:  gateway,
		nonces:   nonce.NewCache(gateway, logger, m),
		registry: events.NewRegistry(logger),
		logger:   logger,
		metrics:  m,
		subs:     make(map[string]*SubscriptionHandle),
	}

	logger.ComponentInfo(logging.ComponentClient, "Chain client ready",
		zap.String("api_url", cfg.APIURL),
		zap.String("chain_id", chainID.String()))
	return s, nil
}

func (s *Service) ready() error {
	if s == nil || s.gateway == nil {
		return errors.ErrNotInitialized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Config returns a snapshot copy of the client's configuration
func (s *Service) Config() *ClientConfig {
	cp := *s.config
	cp.Topics = append([]string(nil), s.config.Topics...)
	return &cp
}

// CurrentChainID returns the chain every request is addressed to.
func (s *Service) CurrentChainID() chain.ChainID {
	return s.chainID
}

// CallView runs a read-only contract function.
func (s *Service) CallView(ctx context.Context, contract, function chain.Hname, args codec.Args) (codec.Args, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.gateway.CallView(ctx, contract, function, args)
}

// PostOffLedgerRequest issues the next nonce for id, signs the request and
// posts it. The nonce stays consumed even when signing or posting fails.
func (s *Service) PostOffLedgerRequest(
	ctx context.Context,
	id Identity,
	contract, function chain.Hname,
	args codec.Args,
	allowance *chain.Assets,
) (chain.RequestID, error) {
	if err := s.ready(); err != nil {
		return chain.RequestID{}, err
	}
	if id == nil {
		return chain.RequestID{}, ErrNoIdentity
	}

	n, err := s.nonces.Next(ctx, id)
	if err != nil {
		return chain.RequestID{}, NewClientError("post", "nonce unavailable", err)
	}

	signed, err := request.New(s.chainID, contract, function, args, n).
		WithAllowance(allowance).
		Sign(id)
	if err != nil {
		s.logger.ComponentWarn(logging.ComponentSigner, "Failed to sign request",
			zap.String("identity", id.Key()),
			zap.Uint64("nonce", n),
			zap.Error(err))
		return chain.RequestID{}, NewClientError("post", "signing failed", err)
	}

	rid, err := s.gateway.PostRequest(ctx, signed)
	if err != nil {
		s.logger.ComponentWarn(logging.ComponentClient, "Off-ledger request not accepted",
			zap.String("identity", id.Key()),
			zap.Uint64("nonce", n),
			zap.Error(err))
		return chain.RequestID{}, NewClientError("post", "request not accepted", err)
	}

	s.logger.ComponentDebug(logging.ComponentClient, "Off-ledger request posted",
		zap.String("request_id", rid.String()),
		zap.Uint64("nonce", n))
	return rid, nil
}

// WaitUntilProcessed blocks until the node reports rid as processed or
// timeout elapses. A zero timeout uses the configured default.
func (s *Service) WaitUntilProcessed(ctx context.Context, rid chain.RequestID, timeout time.Duration) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.gateway.WaitUntilProcessed(ctx, rid, timeout)
}

// AccountNonce returns the last nonce committed on chain for id, bypassing
// the cache.
func (s *Service) AccountNonce(ctx context.Context, id Identity) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if id == nil {
		return 0, ErrNoIdentity
	}
	return nonce.FetchAccountNonce(ctx, s.gateway, id.AgentID())
}

// RegisterHandler adds h to the handlers of every subscription.
func (s *Service) RegisterHandler(h events.Handler) string {
	return s.registry.Register(h)
}

// UnregisterHandler removes a handler added by RegisterHandler.
func (s *Service) UnregisterHandler(id string) bool {
	return s.registry.Unregister(id)
}

// EventState reports the state of the most recent subscription.
func (s *Service) EventState() events.State {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if latest == nil {
		return events.StateDisconnected
	}
	return latest.State()
}

// Close closes every open subscription. Later calls return ErrClosed.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := make([]*SubscriptionHandle, 0, len(s.subs))
	for _, h := range s.subs {
		subs = append(subs, h)
	}
	s.mu.Unlock()

	for _, h := range subs {
		h.Close()
	}
	s.logger.ComponentInfo(logging.ComponentClient, "Chain client closed",
		zap.Int("subscriptions", len(subs)))
	return nil
}
