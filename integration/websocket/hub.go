package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// ErrHubClosed is returned for connections arriving after Close.
var ErrHubClosed = errors.New("websocket: hub closed")

// Hub tracks WebSocket clients and broadcasts carousel messages to them.
type Hub struct {
	upgrader       *websocket.Upgrader
	responseHeader http.Header
	writeTimeout   time.Duration
	logger         *slog.Logger
	onConnect      func(context.Context, *websocket.Conn)
	onDisconnect   func(context.Context, *websocket.Conn)
	onError        func(context.Context, error)

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
	// writeMu serializes frame writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

// Option configures a Hub.
type Option func(*Hub)

func WithReadBuffer(size int) Option {
	return func(h *Hub) {
		h.upgrader.ReadBufferSize = size
	}
}

func WithWriteBuffer(size int) Option {
	return func(h *Hub) {
		h.upgrader.WriteBufferSize = size
	}
}

func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(h *Hub) {
		h.upgrader.HandshakeTimeout = timeout
	}
}

// WithWriteTimeout bounds every frame write. Default is 10s.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(h *Hub) {
		h.writeTimeout = timeout
	}
}

func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

func WithAllowAnyOrigin() Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = func(*http.Request) bool {
			return true
		}
	}
}

func WithSubprotocols(protocols ...string) Option {
	return func(h *Hub) {
		h.upgrader.Subprotocols = protocols
	}
}

func WithUpgradeHeaders(header http.Header) Option {
	return func(h *Hub) {
		h.responseHeader = header
	}
}

func WithOnConnect(fn func(context.Context, *websocket.Conn)) Option {
	return func(h *Hub) {
		h.onConnect = fn
	}
}

func WithOnDisconnect(fn func(context.Context, *websocket.Conn)) Option {
	return func(h *Hub) {
		h.onDisconnect = fn
	}
}

// WithLogger sets the logger used by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithErrorHandler replaces the default error handler, which logs.
func WithErrorHandler(fn func(context.Context, error)) Option {
	return func(h *Hub) {
		h.onError = fn
	}
}

// NewHub returns an empty Hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeTimeout: 10 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		conns:        make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.onError == nil {
		h.onError = func(ctx context.Context, err error) {
			h.logger.WarnContext(ctx, "websocket error", logger.Error(err))
		}
	}
	return h
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, h.responseHeader)
	if err != nil {
		// Upgrade has already replied to the client.
		h.onError(ctx, err)
		return
	}

	if !h.add(conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		h.onError(ctx, ErrHubClosed)
		return
	}
	if h.onConnect != nil {
		h.onConnect(ctx, conn)
	}

	defer func() {
		h.remove(conn)
		if h.onDisconnect != nil {
			h.onDisconnect(ctx, conn)
		}
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.onError(ctx, err)
			}
			return
		}
	}
}

// Consume implements mp2c.Consumer.
func (h *Hub) Consume(ctx context.Context, msg mp2c.Message) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for _, conn := range h.snapshot() {
		if h.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			h.onError(ctx, err)
			h.remove(conn)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close sends a close frame to every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	conns := h.conns
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	var errs []error
	for conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) add(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
	}
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		out = append(out, conn)
	}
	return out
}
