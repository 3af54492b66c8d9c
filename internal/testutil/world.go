package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/mcoot/wordcraft/internal/model"
)

// ErrNoCannedRoom is returned by StubGenerator for coordinates it doesn't know
var ErrNoCannedRoom = errors.New("no canned room")

// StubGenerator serves canned rooms, failing for any other coordinate so
// the world falls back
type StubGenerator struct {
	mu    sync.Mutex
	rooms map[model.Coordinate]*model.Room
	calls int
}

// NewStubGenerator creates a generator serving the given rooms
func NewStubGenerator(rooms ...*model.Room) *StubGenerator {
	g := &StubGenerator{rooms: make(map[model.Coordinate]*model.Room)}
	for _, room := range rooms {
		g.rooms[room.Coordinate] = room
	}
	return g
}

func (g *StubGenerator) Generate(_ context.Context, coord model.Coordinate) (*model.Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	room, ok := g.rooms[coord]
	if !ok {
		return nil, ErrNoCannedRoom
	}
	return room.Clone(), nil
}

// Calls returns how many times Generate has run
func (g *StubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Room builds a room with plain exits in the given directions
func Room(coord model.Coordinate, description string, exits ...model.Direction) *model.Room {
	room := &model.Room{
		Coordinate:  coord,
		Description: description,
		Exits:       make(map[model.Direction]model.Exit, len(exits)),
	}
	for _, dir := range exits {
		room.Exits[dir] = model.Exit{}
	}
	return room
}

// StandardWorld is a small fixed world: a start room with a gold key and a
// riddle, a hallway to its north, and a dead end to its east
func StandardWorld() *StubGenerator {
	start := Room(model.Origin, "A cozy stone chamber.", model.North, model.East)
	start.Items = []model.Item{
		{ID: "item-goldkey", Name: "goldkey", Description: "A small key of polished gold.", Category: "key"},
	}
	start.NPCs = []model.NPC{{ID: "npc-guide", Name: "Tutorial Guide", Dialogue: "Welcome!"}}
	start.Puzzles = []model.Puzzle{
		{Type: "riddle", Prompt: "What has keys but can't open locks?", Solution: "piano"},
	}

	hallway := Room(model.Coordinate{Y: 1}, "A narrow hallway lit by torches.", model.South)
	closet := Room(model.Coordinate{X: 1}, "A cramped closet.", model.West)

	return NewStubGenerator(start, hallway, closet)
}
