package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcraft/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func newPlayer(id model.PlayerID, name string) *model.Player {
	return &model.Player{
		ID:          id,
		Username:    model.CanonicalUsername(name),
		DisplayName: name,
		Location:    model.Coordinate{X: 0, Y: 1, Z: 0},
		Inventory:   []model.Item{{Name: "Welcome Scroll", Category: "quest"}},
		Role:        model.RolePlayer,
	}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	err := s.storage.CreatePlayer(s.ctx, newPlayer("player-1", "Hero"))
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Hero", retrieved.DisplayName)
	s.Equal(model.Coordinate{Y: 1}, retrieved.Location)
	s.Require().Len(retrieved.Inventory, 1)
	s.Equal("Welcome Scroll", retrieved.Inventory[0].Name)
}

func (s *StorageSuite) TestCreatePlayerUsernameIsCaseInsensitive() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, newPlayer("player-1", "Hero")))

	err := s.storage.CreatePlayer(s.ctx, newPlayer("player-2", "hero"))
	s.ErrorIs(err, model.ErrUsernameExists)
	s.False(s.mini.Exists(playerKey("player-2")))
}

func (s *StorageSuite) TestCreatePlayerWritesUsernameIndex() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, newPlayer("player-1", "Hero")))

	id, err := s.mini.Get(usernameIndexKey("hero"))
	s.Require().NoError(err)
	s.Equal("player-1", id)
}

func (s *StorageSuite) TestGetPlayerByUsername() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, newPlayer("player-1", "Hero")))

	retrieved, err := s.storage.GetPlayerByUsername(s.ctx, "HeRo")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.ID)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.storage.GetPlayerByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSavePlayerPersistsBan() {
	player := newPlayer("player-1", "Hero")
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	player.Banned = true
	player.BanReason = "griefing"
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayerByUsername(s.ctx, "hero")
	s.Require().NoError(err)
	s.True(retrieved.Banned)
	s.Equal("griefing", retrieved.BanReason)
}

// Room tests

func (s *StorageSuite) TestCreateAndGetRoom() {
	target := model.Coordinate{X: 4, Y: 4, Z: 4}
	room := &model.Room{
		Coordinate:  model.Coordinate{X: -1, Y: 2, Z: 0},
		Description: "A windswept ledge.",
		Exits: map[model.Direction]model.Exit{
			model.East: {},
			model.Up:   {Target: &target},
		},
		NPCs:    []model.NPC{{ID: "npc-1", Name: "Old Merchant", Dialogue: "Wares!"}},
		Puzzles: []model.Puzzle{{Type: "riddle", Prompt: "Speak friend and enter", Solution: "friend"}},
	}
	s.Require().NoError(s.storage.CreateRoom(s.ctx, room))
	s.True(s.mini.Exists("wordcraft:room:-1,2,0"))

	retrieved, err := s.storage.GetRoom(s.ctx, model.Coordinate{X: -1, Y: 2, Z: 0})
	s.Require().NoError(err)
	s.Equal("A windswept ledge.", retrieved.Description)
	s.Equal(room.NPCs, retrieved.NPCs)
	s.Equal(room.Puzzles, retrieved.Puzzles)

	next, ok := retrieved.ExitTarget(model.Up)
	s.True(ok)
	s.Equal(target, next)
}

func (s *StorageSuite) TestCreateRoomRejectsDuplicate() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Coordinate: model.Origin, Description: "first"}))

	err := s.storage.CreateRoom(s.ctx, &model.Room{Coordinate: model.Origin, Description: "second"})
	s.ErrorIs(err, model.ErrRoomExists)

	retrieved, err := s.storage.GetRoom(s.ctx, model.Origin)
	s.Require().NoError(err)
	s.Equal("first", retrieved.Description)
}

func (s *StorageSuite) TestSaveRoomOverwrites() {
	room := &model.Room{Coordinate: model.Origin, Items: []model.Item{{Name: "Magic Gem"}}}
	s.Require().NoError(s.storage.CreateRoom(s.ctx, room))

	room.Items = nil
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, model.Origin)
	s.Require().NoError(err)
	s.Empty(retrieved.Items)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, model.Coordinate{X: 7})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestStorageErrorsSurface() {
	s.mini.Close()

	_, err := s.storage.GetRoom(s.ctx, model.Origin)
	s.Error(err)
	s.NotErrorIs(err, model.ErrRoomNotFound)
}
