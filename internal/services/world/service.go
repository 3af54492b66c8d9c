package world

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/singleflight"

	"github.com/mcoot/wordcraft/internal/keylock"
	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/storage"
)

// FallbackDescription is shown for rooms whose generation failed
const FallbackDescription = "A plain room stretches before you. The walls are smooth and featureless."

// Generator produces the content of a room that has never been visited
type Generator interface {
	Generate(ctx context.Context, coord model.Coordinate) (*model.Room, error)
}

// Config holds configuration for the world service
type Config struct {
	// GenerationTimeout bounds a single call to the generator
	GenerationTimeout time.Duration
}

// DefaultConfig returns default world configuration
func DefaultConfig() Config {
	return Config{
		GenerationTimeout: 10 * time.Second,
	}
}

// Service is the world state: a coordinate-keyed room cache over the room
// store, generating rooms on first visit.
//
// Cached rooms are never modified in place. Writers build a working copy,
// persist it and then swap it in, so readers only ever see durable states.
type Service struct {
	storage   storage.Storage
	generator Generator
	logger    *slog.Logger
	cfg       Config

	mu    sync.RWMutex
	cache map[string]*model.Room

	locks      *keylock.Locker[string]
	generating singleflight.Group
}

// New creates a new world Service
func New(storage storage.Storage, generator Generator, cfg Config, logger *slog.Logger) *Service {
	if cfg.GenerationTimeout == 0 {
		cfg.GenerationTimeout = DefaultConfig().GenerationTimeout
	}
	return &Service{
		storage:   storage,
		generator: generator,
		logger:    logger.With(slog.String("component", "world")),
		cfg:       cfg,
		cache:     make(map[string]*model.Room),
		locks:     keylock.New[string](),
	}
}

// Fallback returns the deterministic room used when generation fails
func Fallback(coord model.Coordinate) *model.Room {
	return &model.Room{
		Coordinate:  coord,
		Description: FallbackDescription,
		Exits:       map[model.Direction]model.Exit{},
		NPCs:        []model.NPC{},
		Items:       []model.Item{},
		Puzzles:     []model.Puzzle{},
	}
}

// GetRoom returns the room at coord, checking the cache, then storage, then
// generating it. A failed generation yields the fallback room. It is cached
// so the generator is asked once per coordinate per process, but not stored
// until someone changes it, so a restarted server tries again.
func (s *Service) GetRoom(ctx context.Context, coord model.Coordinate) (*model.Room, error) {
	if room := s.cached(coord.Key()); room != nil {
		return room.Clone(), nil
	}

	v, err, _ := s.generating.Do(coord.Key(), func() (any, error) {
		return s.load(ctx, coord)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Room).Clone(), nil
}

// SaveRoom replaces the room at its coordinate
func (s *Service) SaveRoom(ctx context.Context, room *model.Room) error {
	_, err := s.Mutate(ctx, room.Coordinate, func(working *model.Room) error {
		*working = *room.Clone()
		return nil
	})
	return err
}

// Mutate applies fn to a working copy of the room under the coordinate's
// lock, persists it, and then swaps it into the cache. If fn or the save
// fails the cached room is left untouched.
func (s *Service) Mutate(ctx context.Context, coord model.Coordinate, fn func(room *model.Room) error) (*model.Room, error) {
	// Make sure the room exists before taking the lock so no lock is ever
	// held across a generator call.
	if _, err := s.GetRoom(ctx, coord); err != nil {
		return nil, err
	}

	key := coord.Key()
	unlock := s.locks.Lock(key)
	defer unlock()

	current, err := s.current(ctx, coord)
	if err != nil {
		return nil, err
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Coordinate = coord

	if err := s.storage.SaveRoom(ctx, working); err != nil {
		s.logger.Error("failed to persist room",
			slog.String("coord", key),
			slog.String("error", err.Error()))
		return nil, oops.Wrapf(err, "save room %s", key)
	}

	s.store(key, working)
	return working.Clone(), nil
}

// CachedRooms returns how many rooms are held in memory
func (s *Service) CachedRooms() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// load resolves a cache miss. Only one load per coordinate runs at a time.
func (s *Service) load(ctx context.Context, coord model.Coordinate) (*model.Room, error) {
	key := coord.Key()
	if room := s.cached(key); room != nil {
		return room, nil
	}

	room, err := s.storage.GetRoom(ctx, coord)
	if err == nil {
		return s.storeIfAbsent(key, room), nil
	}
	if !errors.Is(err, model.ErrRoomNotFound) {
		return nil, oops.Wrapf(err, "get room %s", key)
	}

	room, ok := s.generate(ctx, coord)
	if !ok {
		return s.storeIfAbsent(key, Fallback(coord)), nil
	}

	if err := s.storage.CreateRoom(ctx, room); err != nil {
		if !errors.Is(err, model.ErrRoomExists) {
			return nil, oops.Wrapf(err, "create room %s", key)
		}
		// Another writer got there first; its room is authoritative.
		room, err = s.storage.GetRoom(ctx, coord)
		if err != nil {
			return nil, oops.Wrapf(err, "get room %s", key)
		}
	}

	s.logger.Info("room generated", slog.String("coord", key))
	return s.storeIfAbsent(key, room), nil
}

func (s *Service) generate(ctx context.Context, coord model.Coordinate) (*model.Room, bool) {
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.GenerationTimeout)
	defer cancel()

	start := time.Now()
	room, err := s.generator.Generate(genCtx, coord)
	if err == nil && room == nil {
		err = errors.New("generator returned no room")
	}
	if err != nil {
		s.logger.Warn("room generation failed, using fallback",
			slog.String("coord", coord.Key()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, false
	}

	room.Coordinate = coord
	if room.Exits == nil {
		room.Exits = map[model.Direction]model.Exit{}
	}
	return room, true
}

// current returns the authoritative room for a coordinate whose lock is held
func (s *Service) current(ctx context.Context, coord model.Coordinate) (*model.Room, error) {
	if room := s.cached(coord.Key()); room != nil {
		return room, nil
	}
	room, err := s.storage.GetRoom(ctx, coord)
	if errors.Is(err, model.ErrRoomNotFound) {
		// A fallback room becomes durable once someone changes it
		return Fallback(coord), nil
	}
	if err != nil {
		return nil, oops.Wrapf(err, "get room %s", coord.Key())
	}
	return room, nil
}

func (s *Service) cached(key string) *model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key]
}

// storeIfAbsent caches room unless a writer has already swapped in a newer
// value, and returns whichever is cached
func (s *Service) storeIfAbsent(key string, room *model.Room) *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[key]; ok {
		return existing
	}
	s.cache[key] = room
	return room
}

func (s *Service) store(key string, room *model.Room) {
	s.mu.Lock()
	s.cache[key] = room
	s.mu.Unlock()
}
