package session

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/mcoot/wordcraft/internal/dependencies/clock"
	"github.com/mcoot/wordcraft/internal/model"
)

// Session binds one live connection to an authenticated identity
type Session struct {
	ConnID      string
	PlayerID    model.PlayerID // empty until authenticated
	Roles       model.RoleSet
	LoggedIn    bool
	ConnectedAt time.Time
}

// Manager tracks the session of every live connection.
//
// A player is bound to at most one connection. Authenticating a player who
// is already bound elsewhere moves the binding to the new connection and
// reports the old one so the caller can disconnect it.
type Manager struct {
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[model.PlayerID]string
}

// NewManager creates an empty session Manager
func NewManager(clock clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{
		clock:    clock,
		logger:   logger.With(slog.String("component", "sessions")),
		sessions: make(map[string]*Session),
		byPlayer: make(map[model.PlayerID]string),
	}
}

// CreateSession starts an unauthenticated session for a new connection
func (m *Manager) CreateSession(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[connID] = &Session{
		ConnID:      connID,
		Roles:       model.RoleSet{},
		ConnectedAt: m.clock.Now(),
	}
}

// Authenticate binds a player to the connection, overwriting any previous
// binding on that connection. If the player was bound to a different
// connection, that session is reset and its id returned as evicted.
func (m *Manager) Authenticate(connID string, playerID model.PlayerID, roles model.RoleSet) (evicted string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[connID]
	if !ok {
		return "", model.ErrSessionNotFound
	}

	if s.LoggedIn && s.PlayerID != playerID {
		delete(m.byPlayer, s.PlayerID)
	}

	if other, bound := m.byPlayer[playerID]; bound && other != connID {
		if old, ok := m.sessions[other]; ok {
			old.PlayerID = ""
			old.Roles = model.RoleSet{}
			old.LoggedIn = false
		}
		evicted = other
		m.logger.Info("session replaced",
			slog.String("player_id", string(playerID)),
			slog.String("old_conn_id", other),
			slog.String("conn_id", connID))
	}

	s.PlayerID = playerID
	s.Roles = maps.Clone(roles)
	s.LoggedIn = true
	m.byPlayer[playerID] = connID
	return evicted, nil
}

// EndSession removes the connection's session and returns the player that
// was bound to it, if any
func (m *Manager) EndSession(connID string) (model.PlayerID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[connID]
	if !ok {
		return "", false
	}
	delete(m.sessions, connID)
	return m.unbindLocked(s)
}

// Logout resets the session to unauthenticated while keeping the connection
func (m *Manager) Logout(connID string) (model.PlayerID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[connID]
	if !ok {
		return "", false
	}
	playerID, bound := m.unbindLocked(s)
	s.PlayerID = ""
	s.Roles = model.RoleSet{}
	s.LoggedIn = false
	return playerID, bound
}

// IsAuthenticated reports whether a player is bound to the connection
func (m *Manager) IsAuthenticated(connID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[connID]
	return ok && s.LoggedIn
}

// RolesOf returns a copy of the connection's role set
func (m *Manager) RolesOf(connID string) model.RoleSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[connID]
	if !ok {
		return model.RoleSet{}
	}
	return maps.Clone(s.Roles)
}

// Get returns a copy of the connection's session
func (m *Manager) Get(connID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[connID]
	if !ok {
		return Session{}, false
	}
	cp := *s
	cp.Roles = maps.Clone(s.Roles)
	return cp, true
}

// ConnectionFor returns the connection a player is bound to
func (m *Manager) ConnectionFor(playerID model.PlayerID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	connID, ok := m.byPlayer[playerID]
	return connID, ok
}

// SetRoles replaces the roles of a player's live session, if any
func (m *Manager) SetRoles(playerID model.PlayerID, roles model.RoleSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if connID, ok := m.byPlayer[playerID]; ok {
		m.sessions[connID].Roles = maps.Clone(roles)
	}
}

// Authenticated returns copies of every logged-in session
func (m *Manager) Authenticated() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Session, 0, len(m.byPlayer))
	for _, connID := range m.byPlayer {
		s := *m.sessions[connID]
		s.Roles = maps.Clone(s.Roles)
		result = append(result, s)
	}
	return result
}

// Count returns the number of sessions, authenticated or not
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) unbindLocked(s *Session) (model.PlayerID, bool) {
	if !s.LoggedIn {
		return "", false
	}
	if m.byPlayer[s.PlayerID] == s.ConnID {
		delete(m.byPlayer, s.PlayerID)
	}
	return s.PlayerID, true
}
