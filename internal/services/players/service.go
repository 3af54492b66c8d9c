package players

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/wordcraft/internal/keylock"
	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/storage"
)

// Service keeps the records of online players in memory on top of the
// player store. Every mutation is persisted before the cached record is
// replaced, so the cache never runs ahead of storage.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
	locks   *keylock.Locker[model.PlayerID]

	mu     sync.RWMutex
	online map[model.PlayerID]*model.Player
}

// New creates a new player Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "players")),
		locks:   keylock.New[model.PlayerID](),
		online:  make(map[model.PlayerID]*model.Player),
	}
}

// Load reads a player and marks them online
func (s *Service) Load(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if p := s.cached(id); p != nil {
		return p.Clone(), nil
	}

	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.online[id] = p
	s.mu.Unlock()

	s.logger.Debug("player loaded", slog.String("player_id", string(id)))
	return p.Clone(), nil
}

// Get reads a player from the cache, falling back to storage
func (s *Service) Get(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if p := s.cached(id); p != nil {
		return p.Clone(), nil
	}
	return s.storage.GetPlayer(ctx, id)
}

// GetByUsername reads any player, online or not, by username
func (s *Service) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	p, err := s.storage.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if cached := s.cached(p.ID); cached != nil {
		return cached.Clone(), nil
	}
	return p, nil
}

// Update applies fn to a working copy of the player under the player's
// lock, persists the result, and only then replaces the cached record.
// If fn or the save fails nothing changes.
func (s *Service) Update(ctx context.Context, id model.PlayerID, fn func(p *model.Player) error) (*model.Player, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	current := s.cached(id)
	isOnline := current != nil
	if !isOnline {
		var err error
		current, err = s.storage.GetPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	if err := s.storage.SavePlayer(ctx, working); err != nil {
		s.logger.Error("failed to persist player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if isOnline {
		s.mu.Lock()
		s.online[id] = working
		s.mu.Unlock()
	}
	return working.Clone(), nil
}

// Flush writes the player's final state and drops them from the cache
func (s *Service) Flush(ctx context.Context, id model.PlayerID) error {
	return s.Release(ctx, id, nil)
}

// Release writes the player's final state and drops them from the cache
// unless inUse reports them still bound elsewhere. inUse is checked under
// the player's lock, so a concurrent Load after a rebind is never undone.
func (s *Service) Release(ctx context.Context, id model.PlayerID, inUse func(model.PlayerID) bool) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	p := s.cached(id)
	if p == nil {
		return nil
	}

	if err := s.storage.SavePlayer(ctx, p); err != nil {
		s.logger.Error("failed to flush player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		return err
	}

	if inUse != nil && inUse(id) {
		s.logger.Debug("player saved, still bound", slog.String("player_id", string(id)))
		return nil
	}

	s.mu.Lock()
	delete(s.online, id)
	s.mu.Unlock()

	s.logger.Debug("player flushed", slog.String("player_id", string(id)))
	return nil
}

// FlushAll flushes every online player
func (s *Service) FlushAll(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]model.PlayerID, 0, len(s.online))
	for id := range s.online {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if err := s.Flush(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsOnline reports whether the player is loaded
func (s *Service) IsOnline(id model.PlayerID) bool {
	return s.cached(id) != nil
}

// Online returns copies of all online players ordered by display name
func (s *Service) Online() []*model.Player {
	s.mu.RLock()
	result := make([]*model.Player, 0, len(s.online))
	for _, p := range s.online {
		result = append(result, p.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b *model.Player) int {
		return strings.Compare(a.Username, b.Username)
	})
	return result
}

// OnlineAt returns online players standing at the coordinate
func (s *Service) OnlineAt(coord model.Coordinate) []*model.Player {
	var result []*model.Player
	for _, p := range s.Online() {
		if p.Location == coord {
			result = append(result, p)
		}
	}
	return result
}

func (s *Service) cached(id model.PlayerID) *model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online[id]
}
