package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/events"
	"github.com/DeBrosOfficial/chainclient/pkg/logging"
)

// SubscriptionHandle controls one event feed connection.
type SubscriptionHandle struct {
	id       string
	sub      *events.Subscriber
	handlers *events.Registry
	done     chan struct{}
}

// ID identifies the subscription in logs.
func (h *SubscriptionHandle) ID() string {
	return h.id
}

// Stop asks the subscription to close after the next message.
func (h *SubscriptionHandle) Stop() {
	h.sub.Stop()
}

// Close closes the connection without waiting for another message.
func (h *SubscriptionHandle) Close() {
	h.sub.Close()
}

// Done is closed once the connection is gone.
func (h *SubscriptionHandle) Done() <-chan struct{} {
	return h.done
}

func (h *SubscriptionHandle) State() events.State {
	return h.sub.State()
}

// Subscribe opens an event feed connection. Events read from it go to the
// handlers added with RegisterHandler first, then to handlers. handlers only
// see events from this connection.
func (s *Service) Subscribe(ctx context.Context, handlers ...events.Handler) (*SubscriptionHandle, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	h := &SubscriptionHandle{
		id:       uuid.NewString(),
		handlers: events.NewRegistry(s.logger),
		done:     make(chan struct{}),
	}
	for _, handler := range handlers {
		if handler != nil {
			h.handlers.Register(handler)
		}
	}

	sub, err := events.NewSubscriber(events.SubscriberConfig{
		APIURL:           s.config.APIURL,
		Topics:           s.config.Topics,
		IdleTimeout:      s.config.IdleTimeout,
		HandshakeTimeout: s.config.HandshakeTimeout,
		Header:           s.authHeader(),
		Dialer:           s.opts.dialer,
	}, events.Dispatchers{s.registry, h.handlers}, s.logger, s.metrics)
	if err != nil {
		return nil, NewClientError("subscribe", "invalid feed configuration", err)
	}
	h.sub = sub

	if err := sub.Start(ctx); err != nil {
		return nil, NewClientError("subscribe", "failed to open event feed", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Close()
		<-sub.Done()
		return nil, ErrClosed
	}
	s.subs[h.id] = h
	s.latest = h
	s.mu.Unlock()

	s.logger.ComponentInfo(logging.ComponentClient, "Subscription started",
		zap.String("subscription", h.id),
		zap.Int("handlers", h.handlers.Len()))

	go s.release(h)
	return h, nil
}

func (s *Service) release(h *SubscriptionHandle) {
	<-h.sub.Done()

	s.mu.Lock()
	delete(s.subs, h.id)
	s.mu.Unlock()
	close(h.done)

	s.logger.ComponentInfo(logging.ComponentClient, "Subscription ended",
		zap.String("subscription", h.id))
}

// authHeader carries the node credentials on the websocket upgrade request.
func (s *Service) authHeader() http.Header {
	header := http.Header{}
	switch {
	case s.config.JWT != "":
		header.Set("Authorization", "Bearer "+s.config.JWT)
	case s.config.APIKey != "":
		header.Set("Authorization", "Bearer "+s.config.APIKey)
		header.Set("X-API-Key", s.config.APIKey)
	}
	return header
}
