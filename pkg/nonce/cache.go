// Package nonce issues strictly increasing per-identity request nonces,
// seeding each identity from the nonce committed on chain.
package nonce

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/metrics"
)

// Account is the part of an identity the cache needs.
type Account interface {
	Key() string
	AgentID() chain.AgentID
}

// ViewCaller runs a read-only view call against the node.
type ViewCaller interface {
	CallView(ctx context.Context, contract, function chain.Hname, args codec.Args) (codec.Args, error)
}

// Cache holds the last issued nonce per identity for the process lifetime.
// A single mutex guards the whole map, so issuance is serialized across
// identities as well.
type Cache struct {
	mu      sync.Mutex
	nonces  map[string]uint64
	view    ViewCaller
	logger  *logging.ColoredLogger
	metrics metrics.ClientMetrics
}

// NewCache creates a cache that seeds misses through view.
func NewCache(view ViewCaller, logger *logging.ColoredLogger, m metrics.ClientMetrics) *Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Cache{
		nonces:  make(map[string]uint64),
		view:    view,
		logger:  logger,
		metrics: m,
	}
}

// Next returns the next nonce for account. On a miss the on-chain nonce is
// fetched first; if that fails a NonceResolutionError is returned and the
// cache is left as it was.
func (c *Cache) Next(ctx context.Context, account Account) (uint64, error) {
	key := account.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	nonce, ok := c.nonces[key]
	if !ok {
		seed, err := FetchAccountNonce(ctx, c.view, account.AgentID())
		if err != nil {
			c.metrics.IncNonceSeedFailures()
			c.logger.ComponentWarn(logging.ComponentNonce, "Failed to seed nonce",
				zap.String("identity", key),
				zap.Error(err))
			return 0, errors.NewNonceResolutionError(key, err)
		}
		c.metrics.IncNoncesSeeded()
		c.logger.ComponentDebug(logging.ComponentNonce, "Seeded nonce from chain",
			zap.String("identity", key),
			zap.Uint64("nonce", seed))
		nonce = seed
	}

	nonce++
	c.nonces[key] = nonce
	c.metrics.IncNoncesIssued()
	return nonce, nil
}

// Peek returns the last nonce issued for account without changing it.
func (c *Cache) Peek(account Account) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nonces[account.Key()]
	return n, ok
}

// Len returns the number of identities seen so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nonces)
}

// FetchAccountNonce asks the accounts core contract for the last nonce
// committed for agent.
func FetchAccountNonce(ctx context.Context, view ViewCaller, agent chain.AgentID) (uint64, error) {
	if view == nil {
		return 0, errors.ErrNotInitialized
	}
	args := codec.NewArgs().SetAgentID(chain.ParamAgentID, agent)
	res, err := view.CallView(ctx, chain.CoreAccounts, chain.ViewGetAccountNonce, args)
	if err != nil {
		return 0, err
	}
	raw, err := res.MustGet(chain.ParamAccountNonce)
	if err != nil {
		return 0, errors.Wrap(err, "getAccountNonce result")
	}
	return codec.DecodeUint64(raw)
}
