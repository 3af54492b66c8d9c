package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/mcoot/wordcraft/internal/model"
)

const defaultBanReason = "No reason given"

// target resolves the player named by the first argument, refusing the
// caller themselves
func (r *Router) target(ctx context.Context, req *Request, verb string) (*model.Player, error) {
	p, err := r.findPlayer(ctx, req.Args[0])
	if err != nil {
		return nil, err
	}
	if p.ID == req.Player.ID {
		return nil, userErrorf("You cannot %s yourself.", verb)
	}
	return p, nil
}

func (r *Router) kick(ctx context.Context, req *Request) ([]model.Message, error) {
	target, err := r.target(ctx, req, "kick")
	if err != nil {
		return nil, err
	}
	connID, ok := r.sessions.ConnectionFor(target.ID)
	if !ok {
		return nil, userErrorf("%s is not online.", target.DisplayName)
	}

	r.notifier.Send(connID, model.NewMessage(model.MessageKick,
		fmt.Sprintf("You have been kicked by %s.", req.Player.DisplayName)))
	r.notifier.Disconnect(connID, model.CloseKicked, "kicked")

	r.logger.Info("player kicked",
		slog.String("player_id", string(target.ID)),
		slog.String("by", string(req.Player.ID)))
	return []model.Message{model.NewText(fmt.Sprintf("Kicked %s.", target.DisplayName))}, nil
}

// ban marks the player banned, then closes their connection after sending
// the reason
func (r *Router) ban(ctx context.Context, req *Request) ([]model.Message, error) {
	target, err := r.target(ctx, req, "ban")
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(strings.TrimPrefix(req.Rest, req.Args[0]))
	if reason == "" {
		reason = defaultBanReason
	}

	_, err = r.players.Update(ctx, target.ID, func(p *model.Player) error {
		p.Banned = true
		p.BanReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	if connID, ok := r.sessions.ConnectionFor(target.ID); ok {
		r.notifier.Send(connID, model.NewMessage(model.MessageBan, "You have been banned: "+reason).
			WithData(model.BanData{Reason: reason}))
		r.notifier.Disconnect(connID, model.CloseBanned, reason)
	}

	r.logger.Info("player banned",
		slog.String("player_id", string(target.ID)),
		slog.String("by", string(req.Player.ID)),
		slog.String("reason", reason))
	return []model.Message{model.NewText(fmt.Sprintf("Banned %s: %s", target.DisplayName, reason))}, nil
}

func (r *Router) unban(ctx context.Context, req *Request) ([]model.Message, error) {
	target, err := r.findPlayer(ctx, req.Args[0])
	if err != nil {
		return nil, err
	}

	_, err = r.players.Update(ctx, target.ID, func(p *model.Player) error {
		if !p.Banned {
			return userErrorf("%s is not banned.", p.DisplayName)
		}
		p.Banned = false
		p.BanReason = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("player unbanned",
		slog.String("player_id", string(target.ID)),
		slog.String("by", string(req.Player.ID)))
	return []model.Message{model.NewText(fmt.Sprintf("Unbanned %s.", target.DisplayName))}, nil
}

func (r *Router) describe(ctx context.Context, req *Request) ([]model.Message, error) {
	room, err := r.world.Mutate(ctx, req.Player.Location, func(room *model.Room) error {
		room.Description = req.Rest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []model.Message{r.describeRoom(room, req.Player.ID, "Room description updated.")}, nil
}

func (r *Router) grant(ctx context.Context, req *Request) ([]model.Message, error) {
	role, ok := model.ParseRole(req.Args[1])
	if !ok || role == model.RoleNone {
		return nil, userErrorf("Unknown role: %s. Roles are player, moderator and admin.", req.Args[1])
	}
	target, err := r.target(ctx, req, "change the role of")
	if err != nil {
		return nil, err
	}

	updated, err := r.players.Update(ctx, target.ID, func(p *model.Player) error {
		p.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.sessions.SetRoles(updated.ID, model.RolesFor(role))
	r.sendToPlayer(updated.ID, model.NewText(fmt.Sprintf("You have been granted the %s role.", role)))

	r.logger.Info("role granted",
		slog.String("player_id", string(updated.ID)),
		slog.String("role", string(role)),
		slog.String("by", string(req.Player.ID)))
	return []model.Message{model.NewText(fmt.Sprintf("Granted %s the %s role.", updated.DisplayName, role))}, nil
}

func (r *Router) teleport(ctx context.Context, req *Request) ([]model.Message, error) {
	coord, err := model.ParseCoordinate(strings.Join(req.Args[:3], " "))
	if err != nil {
		return nil, userErrorf("Usage: teleport <x> <y> <z>")
	}
	return r.relocate(ctx, req, coord, fmt.Sprintf("You teleport to %s.", coord),
		fmt.Sprintf("%s disappears in a flash.", req.Player.DisplayName))
}

func (r *Router) spawn(ctx context.Context, req *Request) ([]model.Message, error) {
	item := model.Item{
		ID:          ulid.Make().String(),
		Name:        req.Rest,
		Description: fmt.Sprintf("A %s, conjured out of thin air.", req.Rest),
		Category:    "spawned",
	}
	_, err := r.world.Mutate(ctx, req.Player.Location, func(room *model.Room) error {
		room.Items = append(room.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []model.Message{model.NewText(fmt.Sprintf("A %s appears.", item.Name))}, nil
}
