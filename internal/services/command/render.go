package command

import (
	"context"
	"strings"

	"github.com/mcoot/wordcraft/internal/model"
)

// roomView builds the client payload for a room as seen by viewer
func (r *Router) roomView(room *model.Room, viewer model.PlayerID) model.RoomView {
	view := model.RoomView{
		Coordinate:  room.Coordinate,
		Description: room.Description,
		Exits:       room.ExitNames(),
		NPCs:        room.NPCs,
		Items:       make([]string, 0, len(room.Items)),
	}
	if view.NPCs == nil {
		view.NPCs = []model.NPC{}
	}
	for _, item := range room.Items {
		view.Items = append(view.Items, item.Name)
	}
	if p := room.ActivePuzzle(); p != nil {
		view.Puzzle = p.Prompt
	}
	for _, other := range r.players.OnlineAt(room.Coordinate) {
		if other.ID != viewer {
			view.Players = append(view.Players, other.DisplayName)
		}
	}
	return view
}

// renderRoom formats a room view as plain text
func renderRoom(view model.RoomView) string {
	var b strings.Builder
	b.WriteString(view.Description)

	b.WriteString("\nExits: ")
	b.WriteString(listOrNone(view.Exits))

	names := make([]string, 0, len(view.NPCs))
	for _, npc := range view.NPCs {
		names = append(names, npc.Name)
	}
	b.WriteString("\nNPCs: ")
	b.WriteString(listOrNone(names))

	b.WriteString("\nItems: ")
	b.WriteString(listOrNone(view.Items))

	if view.Puzzle != "" {
		b.WriteString("\nPuzzle: ")
		b.WriteString(view.Puzzle)
	}
	if len(view.Players) > 0 {
		b.WriteString("\nOther players here: ")
		b.WriteString(strings.Join(view.Players, ", "))
	}
	return b.String()
}

// describeRoom produces a room message, optionally prefixed with a line
// of narration
func (r *Router) describeRoom(room *model.Room, viewer model.PlayerID, prefix string) model.Message {
	view := r.roomView(room, viewer)
	text := renderRoom(view)
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	return model.NewMessage(model.MessageRoom, text).WithData(view)
}

// broadcastRoom sends msg to every online player at coord except one
func (r *Router) broadcastRoom(coord model.Coordinate, except model.PlayerID, msg model.Message) {
	for _, p := range r.players.OnlineAt(coord) {
		if p.ID == except {
			continue
		}
		r.sendToPlayer(p.ID, msg)
	}
}

// sendToPlayer delivers msg to the player's live connection, if any
func (r *Router) sendToPlayer(id model.PlayerID, msg model.Message) bool {
	connID, ok := r.sessions.ConnectionFor(id)
	if !ok {
		return false
	}
	r.notifier.Send(connID, msg)
	return true
}

// findPlayer resolves a username given as a command argument
func (r *Router) findPlayer(ctx context.Context, username string) (*model.Player, error) {
	p, err := r.players.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, userErrorf("Player not found: %s", username)
		}
		return nil, err
	}
	return p, nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
