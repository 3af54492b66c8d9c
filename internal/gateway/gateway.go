package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/services/ratelimit"
	"github.com/mcoot/wordcraft/internal/services/session"
)

// Errors
var (
	ErrDuplicateConnection = errors.New("connection id already registered")
	ErrShuttingDown        = errors.New("gateway is shutting down")
)

const msgRateLimited = "Rate limit exceeded. Please slow down."

// maxCloseReason is the most a close frame can carry after the status code
const maxCloseReason = 123

// Router turns one line of input into the caller's responses
type Router interface {
	Welcome() model.Message
	Route(ctx context.Context, connID string, raw string) []model.Message
}

// Config holds configuration for the gateway
type Config struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		SendBuffer:     64,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 4096,
	}
}

// Manager owns every live websocket connection. Other components address
// connections only by id.
type Manager struct {
	router   Router
	sessions *session.Manager
	limiter  *ratelimit.Limiter
	players  *players.Service
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	conns    map[string]*connection
	draining bool
}

// New creates a new gateway Manager
func New(
	router Router,
	sessions *session.Manager,
	limiter *ratelimit.Limiter,
	playerService *players.Service,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	defaults := DefaultConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	return &Manager{
		router:   router,
		sessions: sessions,
		limiter:  limiter,
		players:  playerService,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "gateway")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*connection),
	}
}

// ServeWS upgrades the request and runs the connection until it closes
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	connID, err := m.Accept(ws)
	if err != nil {
		m.logger.Warn("rejecting connection",
			slog.String("remote_addr", ws.RemoteAddr().String()),
			slog.String("error", err.Error()))
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(m.cfg.WriteWait))
		_ = ws.Close()
		return
	}

	m.Send(connID, m.router.Welcome())

	ctx := r.Context()
	for raw := range m.Frames(connID) {
		if !m.limiter.Allow(connID) {
			m.logger.Warn("rate limit exceeded", slog.String("conn_id", connID))
			m.Send(connID, model.NewError(msgRateLimited))
			m.Disconnect(connID, model.CloseRateLimited, "rate limit exceeded")
			break
		}

		line, ok := decodeFrame(raw)
		if !ok {
			m.logger.Debug("ignoring frame", slog.String("conn_id", connID))
			continue
		}
		for _, msg := range m.router.Route(ctx, connID, line) {
			m.Send(connID, msg)
		}
	}

	m.Disconnect(connID, model.CloseNormal, "")
	// A frame may have been admitted after an earlier disconnect
	m.limiter.Forget(connID)
}

// Accept registers an upgraded websocket and starts its writer. The id is
// the peer's transport address.
func (m *Manager) Accept(ws *websocket.Conn) (string, error) {
	id := ws.RemoteAddr().String()

	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return "", ErrShuttingDown
	}
	if _, exists := m.conns[id]; exists {
		m.mu.Unlock()
		return "", ErrDuplicateConnection
	}
	c := newConnection(id, ws, m.cfg.SendBuffer)
	m.conns[id] = c
	count := len(m.conns)
	m.mu.Unlock()

	m.sessions.CreateSession(id)

	ws.SetReadLimit(m.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(m.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(m.cfg.PongWait))
	})

	go c.writePump(m.cfg, m.logger)

	m.logger.Info("connection accepted",
		slog.String("conn_id", id),
		slog.Int("total_connections", count))
	return id, nil
}

// Frames yields each text frame read from the connection until the peer
// closes or a read fails. Unknown ids yield nothing.
func (m *Manager) Frames(connID string) iter.Seq[string] {
	return func(yield func(string) bool) {
		c := m.get(connID)
		if c == nil {
			return
		}
		for {
			msgType, payload, err := c.ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					m.logger.Debug("connection read ended",
						slog.String("conn_id", connID),
						slog.String("error", err.Error()))
				}
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}
			if !yield(string(payload)) {
				return
			}
		}
	}
}

// Send queues a message for a connection. Sending to an unknown or closed
// connection is logged and dropped.
func (m *Manager) Send(connID string, msg model.Message) {
	c := m.get(connID)
	if c == nil {
		m.logger.Debug("send to unknown connection",
			slog.String("conn_id", connID),
			slog.String("type", string(msg.Type)))
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("failed to encode message",
			slog.String("conn_id", connID),
			slog.String("error", err.Error()))
		return
	}

	if !c.enqueue(data) {
		m.logger.Warn("message dropped",
			slog.String("conn_id", connID),
			slog.String("type", string(msg.Type)))
	}
}

// Disconnect closes a connection with the given status and releases its
// session, rate limit state and player. Calling it again is a no-op.
func (m *Manager) Disconnect(connID string, code model.CloseCode, reason string) {
	m.mu.Lock()
	c, ok := m.conns[connID]
	if ok {
		delete(m.conns, connID)
	}
	count := len(m.conns)
	m.mu.Unlock()
	if !ok {
		return
	}

	c.close(code, truncateReason(reason))
	m.limiter.Forget(connID)

	logger := m.logger.With(slog.String("conn_id", connID))
	if playerID, bound := m.sessions.EndSession(connID); bound {
		logger = logger.With(slog.String("player_id", string(playerID)))
		if err := m.players.Release(context.Background(), playerID, m.boundElsewhere); err != nil {
			logger.Error("failed to save player on disconnect", slog.String("error", err.Error()))
		}
	}

	logger.Info("connection closed",
		slog.Int("code", int(code)),
		slog.Duration("connection_duration", time.Since(c.connectedAt)),
		slog.Int("total_connections", count))
}

// boundElsewhere reports a player who has already logged in again on
// another connection
func (m *Manager) boundElsewhere(playerID model.PlayerID) bool {
	_, ok := m.sessions.ConnectionFor(playerID)
	return ok
}

// Shutdown closes every connection with a going-away status, waits for
// their writers to finish and saves all online players
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.draining = true
	conns := make([]*connection, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	m.logger.Info("closing connections", slog.Int("count", len(conns)))
	for _, c := range conns {
		m.Disconnect(c.id, model.CloseGoingAway, "server shutting down")
	}

	for _, c := range conns {
		select {
		case <-c.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return m.players.FlushAll(ctx)
}

// Count returns the number of live connections
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

func (m *Manager) get(connID string) *connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conns[connID]
}

// inboundFrame is the JSON form of a client message
type inboundFrame struct {
	Type    model.MessageType `json:"type"`
	Message string            `json:"message"`
}

// decodeFrame turns a frame into a command line. Frames are either a raw
// line or a JSON envelope of type command or token_auth.
func decodeFrame(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}

	var frame inboundFrame
	if err := json.Unmarshal([]byte(trimmed), &frame); err != nil {
		return trimmed, true
	}
	switch frame.Type {
	case model.MessageCommand:
		return frame.Message, true
	case model.MessageTokenAuth:
		return "token_auth " + frame.Message, true
	}
	return "", false
}

func truncateReason(reason string) string {
	if len(reason) <= maxCloseReason {
		return reason
	}
	cut := reason[:maxCloseReason]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
