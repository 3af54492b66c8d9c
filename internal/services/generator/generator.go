package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/mcoot/wordcraft/internal/dependencies/random"
	"github.com/mcoot/wordcraft/internal/model"
)

// ErrEmptyDescription is returned when the describer produces no usable text
var ErrEmptyDescription = errors.New("empty room description")

// Describer writes the prose for a room at a coordinate
type Describer interface {
	Describe(ctx context.Context, coord model.Coordinate) (string, error)
}

// Config holds configuration for the generator
type Config struct {
	// RequestsPerSecond caps calls to the describer across all players
	RequestsPerSecond float64
	// Burst is the number of calls allowed at once
	Burst int
	// NPCChance, PuzzleChance are percentages in [0, 100]
	NPCChance    int
	PuzzleChance int
	// MaxItems is the most pool items placed in a fresh room, capped at the
	// pool size
	MaxItems int
}

// DefaultConfig returns default generator configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		Burst:             4,
		NPCChance:         70,
		PuzzleChance:      30,
		MaxItems:          2,
	}
}

// Generator creates new rooms: prose from a Describer, exits parsed from
// that prose, and contents drawn from fixed pools
type Generator struct {
	describer Describer
	random    random.Random
	limiter   *rate.Limiter
	cfg       Config
	logger    *slog.Logger
}

// New creates a new Generator
func New(describer Describer, rnd random.Random, cfg Config, logger *slog.Logger) *Generator {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultConfig().Burst
	}
	return &Generator{
		describer: describer,
		random:    rnd,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "generator")),
	}
}

// Generate builds the room for a coordinate. The origin always gets the
// fixed starting room.
func (g *Generator) Generate(ctx context.Context, coord model.Coordinate) (*model.Room, error) {
	if coord == model.Origin {
		return StartingRoom(), nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	description, err := g.describer.Describe(ctx, coord)
	if err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	room := &model.Room{
		Coordinate:  coord,
		Description: description,
		Exits:       ParseExits(description, coord),
		NPCs:        g.npcs(),
		Items:       g.items(),
		Puzzles:     g.puzzles(),
	}

	g.logger.Debug("room content generated",
		slog.String("coord", coord.Key()),
		slog.Int("exits", len(room.Exits)),
		slog.Int("npcs", len(room.NPCs)),
		slog.Int("items", len(room.Items)))
	return room, nil
}

// ParseExits finds every direction word mentioned in a description. A
// generated room always keeps a way back towards the origin.
func ParseExits(description string, coord model.Coordinate) map[model.Direction]model.Exit {
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	exits := make(map[model.Direction]model.Exit)
	for _, w := range words {
		if dir, ok := model.ParseDirection(w); ok && len(w) > 1 {
			exits[dir] = model.Exit{}
		}
	}

	if home, ok := homeward(coord); ok {
		exits[home] = model.Exit{}
	}
	return exits
}

// homeward picks the direction that shrinks the coordinate's largest axis
func homeward(c model.Coordinate) (model.Direction, bool) {
	ax, ay, az := abs(c.X), abs(c.Y), abs(c.Z)
	switch {
	case ax == 0 && ay == 0 && az == 0:
		return "", false
	case az >= ax && az >= ay:
		if c.Z > 0 {
			return model.Down, true
		}
		return model.Up, true
	case ay >= ax:
		if c.Y > 0 {
			return model.South, true
		}
		return model.North, true
	default:
		if c.X > 0 {
			return model.West, true
		}
		return model.East, true
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (g *Generator) npcs() []model.NPC {
	if !g.random.Chance(g.cfg.NPCChance) {
		return []model.NPC{}
	}
	npc := npcPool[g.random.Intn(len(npcPool))]
	npc.ID = ulid.Make().String()
	return []model.NPC{npc}
}

func (g *Generator) items() []model.Item {
	count := min(g.random.Intn(g.cfg.MaxItems+1), len(itemPool))
	remaining := make([]model.Item, len(itemPool))
	copy(remaining, itemPool)

	items := make([]model.Item, 0, count)
	for range count {
		i := g.random.Intn(len(remaining))
		item := remaining[i]
		item.ID = ulid.Make().String()
		items = append(items, item)
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return items
}

func (g *Generator) puzzles() []model.Puzzle {
	if !g.random.Chance(g.cfg.PuzzleChance) {
		return []model.Puzzle{}
	}
	return []model.Puzzle{puzzlePool[g.random.Intn(len(puzzlePool))]}
}
