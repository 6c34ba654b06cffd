package events

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
	"github.com/DeBrosOfficial/chainclient/pkg/metrics"
)

// State of a Subscriber.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

const (
	writeWait = 10 * time.Second

	// DefaultHandshakeTimeout bounds the websocket dial.
	DefaultHandshakeTimeout = 10 * time.Second
)

// DefaultTopics are required for new block and contract event notifications.
var DefaultTopics = []string{"chains", "block_events"}

// SubscribeCommand is sent once per topic after connecting.
type SubscribeCommand struct {
	Command string `json:"command"`
	Topic   string `json:"topic"`
}

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	APIURL string
	Topics []string

	// IdleTimeout ends the subscription when no message arrives for this
	// long. Zero waits forever, so Stop only takes effect on the next message.
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration

	Header http.Header
	Dialer *websocket.Dialer
}

// Subscriber owns one connection to the node event feed and dispatches
// contract events to a Dispatcher from a single goroutine. It does not
// reconnect.
type Subscriber struct {
	cfg      SubscriberConfig
	wsURL    string
	registry Dispatcher
	logger   *logging.ColoredLogger
	metrics  metrics.ClientMetrics

	state   atomic.Int32
	stop    atomic.Bool
	started atomic.Bool

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

// NewSubscriber builds a subscriber for the feed at {APIURL}/ws.
func NewSubscriber(cfg SubscriberConfig, registry Dispatcher, logger *logging.ColoredLogger, m metrics.ClientMetrics) (*Subscriber, error) {
	wsURL, err := FeedURL(cfg.APIURL)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, errors.NewValidationError("registry", "must not be nil", nil)
	}
	if len(cfg.Topics) == 0 {
		cfg.Topics = append([]string(nil), DefaultTopics...)
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Subscriber{
		cfg:      cfg,
		wsURL:    wsURL,
		registry: registry,
		logger:   logger,
		metrics:  m,
		done:     make(chan struct{}),
	}, nil
}

// FeedURL maps an http(s) API URL to its ws(s) event feed URL.
func FeedURL(apiURL string) (string, error) {
	base := strings.TrimSuffix(apiURL, "/")
	switch {
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws", nil
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws", nil
	default:
		return "", errors.NewValidationError("api_url", "expected http(s)://host:port", apiURL)
	}
}

func (s *Subscriber) setState(state State) {
	s.state.Store(int32(state))
	s.metrics.SetSubscriberState(int(state))
}

func (s *Subscriber) State() State {
	return State(s.state.Load())
}

// Done is closed when the read loop has exited.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Start connects, subscribes to the configured topics and starts the read
// loop in the background. A Subscriber can be started once.
func (s *Subscriber) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.NewValidationError("subscriber", "already started", nil)
	}
	s.setState(StateConnecting)

	base := s.cfg.Dialer
	if base == nil {
		base = websocket.DefaultDialer
	}
	dialer := *base
	dialer.HandshakeTimeout = s.cfg.HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, s.wsURL, s.cfg.Header)
	if err != nil {
		s.setState(StateDisconnected)
		close(s.done)
		return errors.NewTransportError("subscribe", err)
	}

	for _, topic := range s.cfg.Topics {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(SubscribeCommand{Command: "subscribe", Topic: topic}); err != nil {
			conn.Close()
			s.setState(StateDisconnected)
			close(s.done)
			return errors.NewTransportError("subscribe", err)
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.setState(StateSubscribed)
	s.logger.ComponentInfo(logging.ComponentEvents, "Subscribed to event feed",
		zap.String("url", s.wsURL),
		zap.Strings("topics", s.cfg.Topics))

	go s.readLoop(conn)
	return nil
}

// Stop asks the read loop to close the connection after the next message.
// It never blocks and may be called any number of times.
func (s *Subscriber) Stop() {
	s.stop.Store(true)
}

// Close stops the subscriber and closes the connection immediately instead
// of waiting for the next message.
func (s *Subscriber) Close() {
	s.Stop()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		s.setState(StateDisconnected)
		close(s.done)
	}()

	for {
		if s.cfg.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				s.logger.ComponentInfo(logging.ComponentEvents, "Event feed idle, closing",
					zap.Duration("idle_timeout", s.cfg.IdleTimeout))
				s.closeNormal(conn)
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || s.stop.Load() {
				s.logger.ComponentInfo(logging.ComponentEvents, "Event feed closed")
			} else {
				s.logger.ComponentWarn(logging.ComponentEvents, "Event feed read failed",
					zap.Error(err))
			}
			return
		}

		s.handleMessage(messageType, data)

		if s.stop.Load() {
			s.closeNormal(conn)
			return
		}
	}
}

func (s *Subscriber) closeNormal(conn *websocket.Conn) {
	s.setState(StateClosing)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		s.logger.ComponentDebug(logging.ComponentEvents, "Failed to send close frame", zap.Error(err))
	}
}

func (s *Subscriber) handleMessage(messageType int, data []byte) {
	s.metrics.IncEventsReceived()

	if messageType != websocket.TextMessage {
		s.metrics.IncEventsDropped(metrics.DropMalformedEnvelope)
		return
	}

	env, err := ParseEnvelope(data)
	if err != nil {
		s.metrics.IncEventsDropped(metrics.DropMalformedEnvelope)
		s.logger.ComponentDebug(logging.ComponentEvents, "Dropping malformed message",
			zap.Error(err))
		return
	}

	evts, dropped := env.ContractEvents()
	for i := 0; i < dropped; i++ {
		s.metrics.IncEventsDropped(metrics.DropMalformedItem)
	}
	if dropped > 0 {
		s.logger.ComponentDebug(logging.ComponentEvents, "Dropped payload items without separator",
			zap.String("kind", env.Kind),
			zap.Int("dropped", dropped))
	}

	for _, evt := range evts {
		s.metrics.IncEventsDispatched(s.registry.Dispatch(evt))
	}
}
