package testutil

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/storage"
)

// ErrStorageDown is returned by FlakyStorage when a fault is switched on
var ErrStorageDown = errors.New("storage unavailable")

// FlakyStorage wraps a Storage and fails selected writes on demand.
// Use it to check that caches are not updated when persistence fails.
type FlakyStorage struct {
	storage.Storage

	FailSavePlayer atomic.Bool
	FailSaveRoom   atomic.Bool
	FailCreateRoom atomic.Bool
}

// NewFlakyStorage wraps inner with all faults switched off
func NewFlakyStorage(inner storage.Storage) *FlakyStorage {
	return &FlakyStorage{Storage: inner}
}

func (f *FlakyStorage) SavePlayer(ctx context.Context, player *model.Player) error {
	if f.FailSavePlayer.Load() {
		return ErrStorageDown
	}
	return f.Storage.SavePlayer(ctx, player)
}

func (f *FlakyStorage) SaveRoom(ctx context.Context, room *model.Room) error {
	if f.FailSaveRoom.Load() {
		return ErrStorageDown
	}
	return f.Storage.SaveRoom(ctx, room)
}

func (f *FlakyStorage) CreateRoom(ctx context.Context, room *model.Room) error {
	if f.FailCreateRoom.Load() {
		return ErrStorageDown
	}
	return f.Storage.CreateRoom(ctx, room)
}
