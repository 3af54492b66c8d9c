package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/wordcraft/internal/model"
)

func (r *Router) look(_ context.Context, req *Request) ([]model.Message, error) {
	return []model.Message{r.describeRoom(req.Room, req.Player.ID, "")}, nil
}

func (r *Router) move(ctx context.Context, req *Request) ([]model.Message, error) {
	dir, ok := model.ParseDirection(req.Args[0])
	if !ok {
		return nil, userErrorf("%q is not a direction. Try north, south, east, west, up or down.", req.Args[0])
	}

	target, ok := req.Room.ExitTarget(dir)
	if !ok {
		return nil, userErrorf("You cannot go that way.")
	}

	return r.relocate(ctx, req, target, fmt.Sprintf("You go %s.", dir),
		fmt.Sprintf("%s leaves %s.", req.Player.DisplayName, dir))
}

func (r *Router) recall(ctx context.Context, req *Request) ([]model.Message, error) {
	if req.Player.Location == model.Origin {
		return nil, userErrorf("You are already in the starting room.")
	}
	return r.relocate(ctx, req, model.Origin, "The world folds around you and you return to where it all began.",
		fmt.Sprintf("%s vanishes in a swirl of light.", req.Player.DisplayName))
}

// relocate persists the player's new location and describes the room
// they arrive in. The room is read after the move so generation happens
// outside the player's lock.
func (r *Router) relocate(ctx context.Context, req *Request, target model.Coordinate, narration, departure string) ([]model.Message, error) {
	from := req.Player.Location
	player, err := r.players.Update(ctx, req.Player.ID, func(p *model.Player) error {
		p.Location = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	room, err := r.world.GetRoom(ctx, target)
	if err != nil {
		return nil, err
	}

	r.broadcastRoom(from, player.ID, model.NewText(departure))
	r.broadcastRoom(target, player.ID, model.NewText(player.DisplayName+" arrives."))

	r.logger.Debug("player moved",
		slog.String("player_id", string(player.ID)),
		slog.String("coord", target.Key()))
	return []model.Message{r.describeRoom(room, player.ID, narration)}, nil
}

func (r *Router) inventory(_ context.Context, req *Request) ([]model.Message, error) {
	items := req.Player.Inventory
	if items == nil {
		items = []model.Item{}
	}

	text := "Your inventory is empty."
	if len(items) > 0 {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name)
		}
		text = "You are carrying: " + strings.Join(names, ", ")
	}
	return []model.Message{
		model.NewMessage(model.MessageInventory, text).WithData(model.InventoryData{Items: items}),
	}, nil
}

func (r *Router) inspect(_ context.Context, req *Request) ([]model.Message, error) {
	i := req.Player.FindItem(req.Rest)
	if i < 0 {
		return nil, userErrorf("You are not carrying %s.", req.Rest)
	}
	item := req.Player.Inventory[i]
	return []model.Message{model.NewText(fmt.Sprintf("%s: %s", item.Name, item.Description))}, nil
}

// take moves an item from the room into the inventory. The room is changed
// first under its own lock; if the player save then fails the item is put
// back so it is never lost or duplicated.
func (r *Router) take(ctx context.Context, req *Request) ([]model.Message, error) {
	coord := req.Player.Location

	var taken model.Item
	_, err := r.world.Mutate(ctx, coord, func(room *model.Room) error {
		i := room.FindItem(req.Rest)
		if i < 0 {
			return userErrorf("There is no such item here.")
		}
		taken = room.RemoveItem(i)
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, err = r.players.Update(ctx, req.Player.ID, func(p *model.Player) error {
		p.Inventory = append(p.Inventory, taken)
		return nil
	})
	if err != nil {
		r.restoreRoomItem(ctx, coord, taken)
		return nil, err
	}

	r.broadcastRoom(coord, req.Player.ID,
		model.NewText(fmt.Sprintf("%s picks up the %s.", req.Player.DisplayName, taken.Name)))
	return []model.Message{model.NewText(fmt.Sprintf("You take the %s.", taken.Name))}, nil
}

// drop is the reverse of take: inventory first, then the room
func (r *Router) drop(ctx context.Context, req *Request) ([]model.Message, error) {
	coord := req.Player.Location

	var dropped model.Item
	_, err := r.players.Update(ctx, req.Player.ID, func(p *model.Player) error {
		i := p.FindItem(req.Rest)
		if i < 0 {
			return userErrorf("You are not carrying %s.", req.Rest)
		}
		dropped = p.Inventory[i]
		p.Inventory = append(p.Inventory[:i:i], p.Inventory[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, err = r.world.Mutate(ctx, coord, func(room *model.Room) error {
		room.Items = append(room.Items, dropped)
		return nil
	})
	if err != nil {
		r.restoreInventoryItem(ctx, req.Player.ID, dropped)
		return nil, err
	}

	r.broadcastRoom(coord, req.Player.ID,
		model.NewText(fmt.Sprintf("%s drops the %s.", req.Player.DisplayName, dropped.Name)))
	return []model.Message{model.NewText(fmt.Sprintf("You drop the %s.", dropped.Name))}, nil
}

func (r *Router) solve(ctx context.Context, req *Request) ([]model.Message, error) {
	coord := req.Player.Location

	var solved model.Puzzle
	_, err := r.world.Mutate(ctx, coord, func(room *model.Room) error {
		puzzle := room.ActivePuzzle()
		if puzzle == nil {
			return userErrorf("There's nothing to interact with here.")
		}
		if !model.SameName(strings.TrimSpace(req.Rest), puzzle.Solution) {
			return userErrorf("That's not the correct answer. Try again.")
		}
		solved = *puzzle
		room.ClearActivePuzzle()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.broadcastRoom(coord, req.Player.ID,
		model.NewText(fmt.Sprintf("%s solved the %s!", req.Player.DisplayName, solved.Type)))
	return []model.Message{model.NewText(fmt.Sprintf("You solved the %s!", solved.Type))}, nil
}

func (r *Router) restoreRoomItem(ctx context.Context, coord model.Coordinate, item model.Item) {
	_, err := r.world.Mutate(context.WithoutCancel(ctx), coord, func(room *model.Room) error {
		room.Items = append(room.Items, item)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to return item to room",
			slog.String("coord", coord.Key()),
			slog.String("item", item.Name),
			slog.String("error", err.Error()))
	}
}

func (r *Router) restoreInventoryItem(ctx context.Context, id model.PlayerID, item model.Item) {
	_, err := r.players.Update(context.WithoutCancel(ctx), id, func(p *model.Player) error {
		p.Inventory = append(p.Inventory, item)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to return item to inventory",
			slog.String("player_id", string(id)),
			slog.String("item", item.Name),
			slog.String("error", err.Error()))
	}
}
