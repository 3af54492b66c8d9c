package storage

import (
	"context"

	"github.com/mcoot/wordcraft/internal/model"
)

// Storage defines the interface for durable persistence of players and rooms
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error // ErrUsernameExists if the canonical username is taken
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)

	// Room operations
	CreateRoom(ctx context.Context, room *model.Room) error // ErrRoomExists if the coordinate is taken
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, coord model.Coordinate) (*model.Room, error)

	Close() error
}
