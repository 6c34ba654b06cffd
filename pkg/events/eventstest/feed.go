// Package eventstest provides a fake node event feed for tests.
package eventstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// CloseAbnormal is reported when a client connection ends without a close frame.
const CloseAbnormal = -1

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Feed is an httptest server serving a websocket event feed at /ws.
type Feed struct {
	Server *httptest.Server

	conns      chan *websocket.Conn
	headers    chan http.Header
	topics     chan string
	closeCodes chan int
}

type subscribeCommand struct {
	Command string `json:"command"`
	Topic   string `json:"topic"`
}

// NewFeed starts a feed that is shut down when the test ends.
func NewFeed(t testing.TB) *Feed {
	t.Helper()
	f := &Feed{
		conns:      make(chan *websocket.Conn, 4),
		headers:    make(chan http.Header, 4),
		topics:     make(chan string, 32),
		closeCodes: make(chan int, 4),
	}

	r := chi.NewRouter()
	r.Get("/ws", f.serveWS)
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the http base URL of the feed, as a client would configure it.
func (f *Feed) URL() string {
	return f.Server.URL
}

func (f *Feed) serveWS(w http.ResponseWriter, r *http.Request) {
	select {
	case f.headers <- r.Header.Clone():
	default:
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	f.conns <- conn

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				f.closeCodes <- ce.Code
			} else {
				f.closeCodes <- CloseAbnormal
			}
			return
		}
		var cmd subscribeCommand
		if json.Unmarshal(data, &cmd) == nil && cmd.Command == "subscribe" {
			f.topics <- cmd.Topic
		}
	}
}

// Conn waits for the next client connection.
func (f *Feed) Conn(t testing.TB) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-f.conns:
		return conn
	case <-time.After(5 * time.Second):
		t.Fatalf("no client connected")
		return nil
	}
}

// Header waits for the next upgrade request and returns its headers.
func (f *Feed) Header(t testing.TB) http.Header {
	t.Helper()
	select {
	case h := <-f.headers:
		return h
	case <-time.After(5 * time.Second):
		t.Fatalf("no upgrade request received")
		return nil
	}
}

// Topics waits for n subscribe commands and returns their topics in order.
func (f *Feed) Topics(t testing.TB, n int) []string {
	t.Helper()
	var out []string
	for len(out) < n {
		select {
		case topic := <-f.topics:
			out = append(out, topic)
		case <-time.After(5 * time.Second):
			t.Fatalf("expected %d subscribe commands, got %v", n, out)
		}
	}
	return out
}

// CloseCode waits for a client connection to end and returns its close code.
func (f *Feed) CloseCode(t testing.TB) int {
	t.Helper()
	select {
	case code := <-f.closeCodes:
		return code
	case <-time.After(5 * time.Second):
		t.Fatalf("client did not close the connection")
		return 0
	}
}

// Send writes v as a JSON text message.
func Send(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(v)
}

// SendRaw writes a text message as-is.
func SendRaw(conn *websocket.Conn, text string) error {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Envelope builds an event feed message.
func Envelope(kind, chainID string, payload ...string) map[string]interface{} {
	if payload == nil {
		payload = []string{}
	}
	return map[string]interface{}{
		"kind":      kind,
		"issuer":    "",
		"requestID": "",
		"chainID":   chainID,
		"payload":   payload,
	}
}
