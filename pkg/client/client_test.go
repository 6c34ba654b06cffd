package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/events"
	"github.com/DeBrosOfficial/chainclient/pkg/events/eventstest"
	"github.com/DeBrosOfficial/chainclient/pkg/identity"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/node"
	"github.com/DeBrosOfficial/chainclient/pkg/request"
)

var (
	testChainID  = chain.ChainID{0xaa, 0xbb}
	testContract = chain.HnameFromName("inccounter")
	testFunction = chain.HnameFromName("increment")
)

type mockGateway struct {
	mock.Mock
}

var _ node.Gateway = (*mockGateway)(nil)

func (m *mockGateway) CallView(ctx context.Context, contract, function chain.Hname, args codec.Args) (codec.Args, error) {
	ret := m.Called(ctx, contract, function, args)
	res, _ := ret.Get(0).(codec.Args)
	return res, ret.Error(1)
}

func (m *mockGateway) PostRequest(ctx context.Context, req *request.SignedRequest) (chain.RequestID, error) {
	ret := m.Called(ctx, req)
	return ret.Get(0).(chain.RequestID), ret.Error(1)
}

func (m *mockGateway) WaitUntilProcessed(ctx context.Context, rid chain.RequestID, timeout time.Duration) error {
	return m.Called(ctx, rid, timeout).Error(0)
}

func testConfig(apiURL string) *ClientConfig {
	cfg := DefaultClientConfig(testChainID.String())
	cfg.APIURL = apiURL
	return cfg
}

func newTestService(t *testing.T, apiURL string, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	s, err := NewService(testConfig(apiURL), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.Generate(identity.SchemeEd25519)
	require.NoError(t, err)
	return id
}

func nonceResult(n uint64) codec.Args {
	return codec.NewArgs().SetUint64(chain.ParamAccountNonce, n)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewService(testConfig(""))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := testConfig("http://localhost:9090")
	cfg.ChainID = "0x1234"
	_, err = NewService(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig("http://localhost:9090")
	cfg.APIKey = "ak"
	cfg.JWT = "jwt"
	_, err = NewService(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig("localhost:9090")
	_, err = NewService(cfg, WithLogger(logging.NewNopLogger()))
	assert.True(t, errors.IsValidation(err))

	s := newTestService(t, "http://localhost:9090")
	assert.Equal(t, testChainID, s.CurrentChainID())
	assert.Equal(t, "http://localhost:9090", s.Config().APIURL)
}

// fakeNode serves the accounts nonce view and records posted requests.
type fakeNode struct {
	mu        sync.Mutex
	seed      uint64
	viewCalls int
	posted    []*request.SignedRequest
}

func (f *fakeNode) router(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Post("/requests/callview", func(w http.ResponseWriter, r *http.Request) {
		var body node.CallViewRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode callview: %v", err)
		}
		if body.FunctionHName != chain.ViewGetAccountNonce.String() {
			t.Errorf("unexpected view %s", body.FunctionHName)
		}
		f.mu.Lock()
		f.viewCalls++
		seed := f.seed
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(nonceResult(seed).ToJSONDict())
	})
	r.Post("/requests/offledger", func(w http.ResponseWriter, r *http.Request) {
		var body node.OffLedgerRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode offledger: %v", err)
		}
		raw, err := hexutil.Decode(body.Request)
		if err != nil {
			t.Errorf("request hex: %v", err)
		}
		req, err := request.FromBytes(raw)
		if err != nil {
			t.Errorf("request bytes: %v", err)
		}
		f.mu.Lock()
		f.posted = append(f.posted, req)
		f.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	return r
}

func TestPostOffLedgerRequestAgainstNode(t *testing.T) {
	fake := &fakeNode{seed: 41}
	server := httptest.NewServer(fake.router(t))
	defer server.Close()

	s := newTestService(t, server.URL)
	id := newIdentity(t)
	args := codec.NewArgs().SetUint64("amount", 10)

	rid1, err := s.PostOffLedgerRequest(context.Background(), id, testContract, testFunction, args, nil)
	require.NoError(t, err)
	rid2, err := s.PostOffLedgerRequest(context.Background(), id, testContract, testFunction, args, chain.NewAssets(5))
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.posted, 2)
	assert.Equal(t, 1, fake.viewCalls, "nonce is seeded once per identity")

	assert.Equal(t, uint64(42), fake.posted[0].Nonce())
	assert.Equal(t, uint64(43), fake.posted[1].Nonce())
	assert.Equal(t, rid1, fake.posted[0].ID())
	assert.Equal(t, rid2, fake.posted[1].ID())
	assert.NotEqual(t, rid1, rid2)

	for _, req := range fake.posted {
		assert.NoError(t, req.VerifySignature())
		assert.Equal(t, testChainID, req.ChainID())
		assert.Equal(t, testContract, req.Contract())
		assert.Equal(t, testFunction, req.EntryPoint())
		assert.True(t, args.Equal(req.Args()))
	}
	assert.Equal(t, uint64(5), fake.posted[1].Allowance().BaseTokens)
}

func TestPostOffLedgerRequestConsumesNonceOnFailure(t *testing.T) {
	gw := &mockGateway{}
	id := newIdentity(t)

	var nonces []uint64
	gw.On("CallView", mock.Anything, chain.CoreAccounts, chain.ViewGetAccountNonce, mock.Anything).
		Return(nonceResult(5), nil).Once()
	gw.On("PostRequest", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			nonces = append(nonces, args.Get(1).(*request.SignedRequest).Nonce())
		}).
		Return(chain.RequestID{}, errors.NewPostRequestError(http.StatusConflict, "nonce already used")).Once()
	gw.On("PostRequest", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			nonces = append(nonces, args.Get(1).(*request.SignedRequest).Nonce())
		}).
		Return(chain.RequestID{0x01}, nil).Once()

	s := newTestService(t, "http://localhost:9090", WithGateway(gw))

	_, err := s.PostOffLedgerRequest(context.Background(), id, testContract, testFunction, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, errors.StatusCodeOf(err))

	rid, err := s.PostOffLedgerRequest(context.Background(), id, testContract, testFunction, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, chain.RequestID{0x01}, rid)

	assert.Equal(t, []uint64{6, 7}, nonces)
	gw.AssertExpectations(t)
}

func TestPostOffLedgerRequestNonceResolutionFailure(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CallView", mock.Anything, chain.CoreAccounts, chain.ViewGetAccountNonce, mock.Anything).
		Return(nil, errors.NewTransportError(node.OpCallView, context.DeadlineExceeded))

	s := newTestService(t, "http://localhost:9090", WithGateway(gw))

	_, err := s.PostOffLedgerRequest(context.Background(), newIdentity(t), testContract, testFunction, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsNonceResolution(err))
	gw.AssertNotCalled(t, "PostRequest", mock.Anything, mock.Anything)
}

func TestPostOffLedgerRequestWithoutIdentity(t *testing.T) {
	s := newTestService(t, "http://localhost:9090", WithGateway(&mockGateway{}))
	_, err := s.PostOffLedgerRequest(context.Background(), nil, testContract, testFunction, nil, nil)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestCallViewAndWaitDelegate(t *testing.T) {
	gw := &mockGateway{}
	want := codec.NewArgs().SetUint64("counter", 3)
	rid := chain.RequestID{0x02}

	gw.On("CallView", mock.Anything, testContract, chain.HnameFromName("getCounter"), mock.Anything).
		Return(want, nil)
	gw.On("WaitUntilProcessed", mock.Anything, rid, 2*time.Second).Return(nil)

	s := newTestService(t, "http://localhost:9090", WithGateway(gw))

	got, err := s.CallView(context.Background(), testContract, chain.HnameFromName("getCounter"), nil)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	require.NoError(t, s.WaitUntilProcessed(context.Background(), rid, 2*time.Second))
	gw.AssertExpectations(t)
}

func TestAccountNonceBypassesCache(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CallView", mock.Anything, chain.CoreAccounts, chain.ViewGetAccountNonce, mock.Anything).
		Return(nonceResult(9), nil)
	gw.On("PostRequest", mock.Anything, mock.Anything).Return(chain.RequestID{}, nil)

	s := newTestService(t, "http://localhost:9090", WithGateway(gw))
	id := newIdentity(t)

	n, err := s.AccountNonce(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), n)
	assert.Equal(t, 0, s.nonces.Len())

	_, err = s.PostOffLedgerRequest(context.Background(), id, testContract, testFunction, nil, nil)
	require.NoError(t, err)

	n, err = s.AccountNonce(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), n)
	gw.AssertNumberOfCalls(t, "CallView", 3)
}

func TestClosedService(t *testing.T) {
	gw := &mockGateway{}
	s := newTestService(t, "http://localhost:9090", WithGateway(gw))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.CallView(context.Background(), testContract, testFunction, nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	gw.AssertNotCalled(t, "CallView", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var nilService *Service
	_, err = nilService.CallView(context.Background(), testContract, testFunction, nil)
	assert.ErrorIs(t, err, errors.ErrNotInitialized)
}

func TestSubscribeDeliversToHandlers(t *testing.T) {
	feed := eventstest.NewFeed(t)
	s := newTestService(t, feed.URL(), WithGateway(&mockGateway{}))

	received := make(chan string, 8)
	record := func(name string) events.Handler {
		return events.HandlerFunc(func(evt events.ContractEvent) {
			received <- name + ":" + evt.ContractID + ":" + evt.Data
		})
	}

	s.RegisterHandler(record("global"))
	assert.Equal(t, events.StateDisconnected, s.EventState())

	handle, err := s.Subscribe(context.Background(), record("sub"))
	require.NoError(t, err)
	assert.NotEmpty(t, handle.ID())
	assert.Equal(t, events.StateSubscribed, s.EventState())
	assert.Equal(t, 1, s.registry.Len())
	assert.Equal(t, 1, handle.handlers.Len())

	conn := feed.Conn(t)
	assert.Equal(t, events.DefaultTopics, feed.Topics(t, 2))

	require.NoError(t, eventstest.Send(conn, eventstest.Envelope(events.KindContract, "0xaa", `abc123: {"x":1}`)))
	for _, want := range []string{`global:abc123:{"x":1}`, `sub:abc123:{"x":1}`} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("expected %s", want)
		}
	}

	handle.Stop()
	require.NoError(t, eventstest.Send(conn, eventstest.Envelope(events.KindNewBlock, "0xaa")))
	assert.Equal(t, 1000, feed.CloseCode(t))

	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not end")
	}
	assert.Equal(t, 1, s.registry.Len())
	assert.Equal(t, events.StateDisconnected, s.EventState())
}

func TestSubscribeSendsAuthHeader(t *testing.T) {
	feed := eventstest.NewFeed(t)

	cfg := testConfig(feed.URL())
	cfg.APIKey = "ak_test"
	s, err := NewService(cfg, WithLogger(logging.NewNopLogger()), WithGateway(&mockGateway{}))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Subscribe(context.Background())
	require.NoError(t, err)

	header := feed.Header(t)
	assert.Equal(t, "ak_test", header.Get("X-API-Key"))
	assert.Equal(t, "Bearer ak_test", header.Get("Authorization"))
}

func TestCloseEndsSubscriptions(t *testing.T) {
	feed := eventstest.NewFeed(t)
	s := newTestService(t, feed.URL(), WithGateway(&mockGateway{}))

	handle, err := s.Subscribe(context.Background(), events.HandlerFunc(func(events.ContractEvent) {}))
	require.NoError(t, err)
	feed.Conn(t)

	require.NoError(t, s.Close())
	select {
	case <-handle.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not end the subscription")
	}
	assert.Equal(t, 0, s.registry.Len())
}

func TestSubscribeDialFailureReleasesHandlers(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := newTestService(t, url, WithGateway(&mockGateway{}))
	_, err := s.Subscribe(context.Background(), events.HandlerFunc(func(events.ContractEvent) {}))
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Equal(t, 0, s.registry.Len())

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, "subscribe", clientErr.Op)
}

func TestSubscriptionHandlersAreIsolated(t *testing.T) {
	feed := eventstest.NewFeed(t)
	s := newTestService(t, feed.URL(), WithGateway(&mockGateway{}))

	collect := func(ch chan string) events.Handler {
		return events.HandlerFunc(func(evt events.ContractEvent) {
			ch <- evt.ContractID
		})
	}
	global := make(chan string, 8)
	gotA := make(chan string, 8)
	gotB := make(chan string, 8)
	s.RegisterHandler(collect(global))

	handleA, err := s.Subscribe(context.Background(), collect(gotA))
	require.NoError(t, err)
	connA := feed.Conn(t)
	feed.Topics(t, 2)

	handleB, err := s.Subscribe(context.Background(), collect(gotB))
	require.NoError(t, err)
	connB := feed.Conn(t)
	feed.Topics(t, 2)

	expect := func(ch chan string, want string) {
		t.Helper()
		select {
		case got := <-ch:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("expected %s", want)
		}
	}

	require.NoError(t, eventstest.Send(connB, eventstest.Envelope(events.KindContract, "0xaa", "onlyB: x")))
	expect(gotB, "onlyB")
	expect(global, "onlyB")
	assert.Empty(t, gotA)

	require.NoError(t, eventstest.Send(connA, eventstest.Envelope(events.KindContract, "0xaa", "onlyA: y")))
	expect(gotA, "onlyA")
	expect(global, "onlyA")
	assert.Empty(t, gotB)
	assert.Empty(t, global)

	handleA.Close()
	handleB.Close()
	for _, h := range []*SubscriptionHandle{handleA, handleB} {
		select {
		case <-h.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("subscription did not end")
		}
	}
	assert.Equal(t, 1, s.registry.Len())
}

func TestPostOffLedgerRequestReportsOperation(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CallView", mock.Anything, chain.CoreAccounts, chain.ViewGetAccountNonce, mock.Anything).
		Return(nonceResult(0), nil).Once()
	gw.On("PostRequest", mock.Anything, mock.Anything).
		Return(chain.RequestID{}, errors.NewPostRequestError(http.StatusBadRequest, "bad request")).Once()

	s := newTestService(t, "http://localhost:9090", WithGateway(gw))

	_, err := s.PostOffLedgerRequest(context.Background(), newIdentity(t), testContract, testFunction, nil, nil)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, "post", clientErr.Op)
	assert.Equal(t, http.StatusBadRequest, errors.StatusCodeOf(err))

	var postErr *errors.PostRequestError
	assert.ErrorAs(t, err, &postErr)
	gw.AssertExpectations(t)
}

func TestMetricsRegistryOption(t *testing.T) {
	fake := &fakeNode{seed: 1}
	server := httptest.NewServer(fake.router(t))
	defer server.Close()

	registry := prometheus.NewRegistry()
	s := newTestService(t, server.URL, WithMetricsRegistry(registry))

	_, err := s.PostOffLedgerRequest(context.Background(), newIdentity(t), testContract, testFunction, nil, nil)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, "chain_client_nonces_issued_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
