package world

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/storage/memory"
	"github.com/mcoot/wordcraft/internal/testutil"
)

// stubGenerator builds a one-item room and counts its calls
type stubGenerator struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (g *stubGenerator) Generate(ctx context.Context, coord model.Coordinate) (*model.Room, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &model.Room{
		Description: "A generated hall at " + coord.Key(),
		Exits:       map[model.Direction]model.Exit{model.South: {}},
		Items:       []model.Item{{Name: "goldkey", Category: "key"}},
	}, nil
}

type ServiceSuite struct {
	suite.Suite
	storage   *testutil.FlakyStorage
	generator *stubGenerator
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = testutil.NewFlakyStorage(memory.New())
	s.generator = &stubGenerator{}
	s.service = New(s.storage, s.generator, Config{GenerationTimeout: 200 * time.Millisecond}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestGetRoomGeneratesAndPersists() {
	coord := model.Coordinate{Y: 1}

	room, err := s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal("A generated hall at 0,1,0", room.Description)
	s.Equal(coord, room.Coordinate)

	stored, err := s.storage.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal(room.Description, stored.Description)
}

func (s *ServiceSuite) TestGetRoomIsIdempotentAfterGeneration() {
	coord := model.Coordinate{X: 2, Y: -3}

	first, err := s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	second, err := s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(int32(1), s.generator.calls.Load())
}

func (s *ServiceSuite) TestGetRoomPrefersStorage() {
	coord := model.Coordinate{Z: 4}
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Coordinate: coord, Description: "stored"}))

	room, err := s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal("stored", room.Description)
	s.Equal(int32(0), s.generator.calls.Load())
}

func (s *ServiceSuite) TestConcurrentFirstVisitsGenerateOnce() {
	s.generator.delay = 20 * time.Millisecond
	coord := model.Coordinate{X: 5}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.GetRoom(s.ctx, coord)
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(int32(1), s.generator.calls.Load())
}

func (s *ServiceSuite) TestGeneratorFailureYieldsFallback() {
	s.generator.err = errors.New("malformed output")
	coord := model.Coordinate{X: 1}

	room, err := s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal(FallbackDescription, room.Description)
	s.Empty(room.Exits)
	s.Empty(room.Items)
	s.Empty(room.NPCs)

	_, err = s.storage.GetRoom(s.ctx, coord)
	s.ErrorIs(err, model.ErrRoomNotFound)

	// The fallback stays for the life of the process
	s.generator.err = nil
	room, err = s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal(FallbackDescription, room.Description)
	s.Equal(int32(1), s.generator.calls.Load())
	_, err = s.storage.GetRoom(s.ctx, coord)
	s.ErrorIs(err, model.ErrRoomNotFound)

	// A restarted server tries again
	restarted := New(s.storage, s.generator, Config{GenerationTimeout: 200 * time.Millisecond}, testutil.NopLogger())
	room, err = restarted.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal("A generated hall at 1,0,0", room.Description)
}

func (s *ServiceSuite) TestFallbackRoomIsGeneratedOnce() {
	s.generator.delay = time.Second
	coord := model.Coordinate{X: 5, Y: -2, Z: 3}

	start := time.Now()
	for range 5 {
		room, err := s.service.GetRoom(s.ctx, coord)
		s.Require().NoError(err)
		s.Equal(FallbackDescription, room.Description)
	}
	_, err := s.service.Mutate(s.ctx, coord, func(*model.Room) error { return nil })
	s.Require().NoError(err)

	s.Equal(int32(1), s.generator.calls.Load())
	// One timeout, not one per read
	s.Less(time.Since(start), 600*time.Millisecond)
}

func (s *ServiceSuite) TestGeneratorTimeoutYieldsFallback() {
	s.generator.delay = time.Second

	start := time.Now()
	room, err := s.service.GetRoom(s.ctx, model.Coordinate{X: 9})
	s.Require().NoError(err)
	s.Equal(FallbackDescription, room.Description)
	s.Less(time.Since(start), 900*time.Millisecond)
}

func (s *ServiceSuite) TestMutatePersistsThenSwaps() {
	coord := model.Coordinate{Y: 1}

	updated, err := s.service.Mutate(s.ctx, coord, func(room *model.Room) error {
		room.RemoveItem(room.FindItem("GOLDKEY"))
		return nil
	})
	s.Require().NoError(err)
	s.Empty(updated.Items)

	cached, _ := s.service.GetRoom(s.ctx, coord)
	s.Empty(cached.Items)
	stored, _ := s.storage.GetRoom(s.ctx, coord)
	s.Empty(stored.Items)
}

func (s *ServiceSuite) TestMutateStorageFailureLeavesCacheUntouched() {
	coord := model.Coordinate{Y: 1}
	_, err := s.service.GetRoom(s.ctx, coord)
	s.Require().NoError(err)

	s.storage.FailSaveRoom.Store(true)
	_, err = s.service.Mutate(s.ctx, coord, func(room *model.Room) error {
		room.Items = nil
		return nil
	})
	s.ErrorIs(err, testutil.ErrStorageDown)

	cached, _ := s.service.GetRoom(s.ctx, coord)
	s.Len(cached.Items, 1)
}

func (s *ServiceSuite) TestMutateCallbackErrorLeavesRoomUntouched() {
	coord := model.Coordinate{Y: 1}
	boom := errors.New("boom")

	_, err := s.service.Mutate(s.ctx, coord, func(room *model.Room) error {
		room.Description = "vandalised"
		return boom
	})
	s.ErrorIs(err, boom)

	cached, _ := s.service.GetRoom(s.ctx, coord)
	s.Equal("A generated hall at 0,1,0", cached.Description)
}

func (s *ServiceSuite) TestConcurrentTakeOnlyOneSucceeds() {
	coord := model.Coordinate{Y: 1}
	errNoItem := errors.New("no such item here")

	var wg sync.WaitGroup
	var successes, failures atomic.Int32
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Mutate(s.ctx, coord, func(room *model.Room) error {
				i := room.FindItem("goldkey")
				if i < 0 {
					return errNoItem
				}
				room.RemoveItem(i)
				return nil
			})
			if err == nil {
				successes.Add(1)
			} else if errors.Is(err, errNoItem) {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(1), failures.Load())
}

func (s *ServiceSuite) TestMutatingFallbackRoomMakesItDurable() {
	s.generator.err = errors.New("down")
	coord := model.Coordinate{X: -4}

	_, err := s.service.Mutate(s.ctx, coord, func(room *model.Room) error {
		room.Items = append(room.Items, model.Item{Name: "Broken Sword"})
		return nil
	})
	s.Require().NoError(err)

	stored, err := s.storage.GetRoom(s.ctx, coord)
	s.Require().NoError(err)
	s.Equal(FallbackDescription, stored.Description)
	s.Len(stored.Items, 1)
}

func (s *ServiceSuite) TestReturnedRoomsAreCopies() {
	coord := model.Coordinate{Y: 1}
	room, _ := s.service.GetRoom(s.ctx, coord)
	room.Items = nil

	again, _ := s.service.GetRoom(s.ctx, coord)
	s.Len(again.Items, 1)
}

func (s *ServiceSuite) TestSaveRoomWritesThrough() {
	coord := model.Coordinate{Z: -1}
	err := s.service.SaveRoom(s.ctx, &model.Room{Coordinate: coord, Description: "edited"})
	s.Require().NoError(err)

	cached, _ := s.service.GetRoom(s.ctx, coord)
	s.Equal("edited", cached.Description)
	stored, _ := s.storage.GetRoom(s.ctx, coord)
	s.Equal("edited", stored.Description)
}
