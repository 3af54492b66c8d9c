package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/services/auth"
)

const (
	msgBanned          = "This account has been banned."
	msgSessionReplaced = "You have logged in from another location."
	msgInvalidToken    = "Your session has expired. Please log in again."
)

func (r *Router) help(_ context.Context, req *Request) ([]model.Message, error) {
	if len(req.Args) > 0 {
		desc, ok := r.registry.Lookup(req.Args[0])
		if !ok || desc.Hidden || !req.Roles.Has(desc.Role) {
			return nil, userErrorf(msgUnknownFormat, strings.ToLower(req.Args[0]))
		}
		text := fmt.Sprintf("Command: %s\nUsage: %s\n%s", desc.Name, desc.Usage, desc.Description)
		if len(desc.Aliases) > 0 {
			text += "\nAliases: " + strings.Join(desc.Aliases, ", ")
		}
		return []model.Message{model.NewText(text)}, nil
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, desc := range r.registry.Visible(req.Roles) {
		fmt.Fprintf(&b, "\n  %-14s %s", desc.Name, desc.Description)
	}
	b.WriteString("\n\nType \"help <command>\" for usage.")
	return []model.Message{model.NewText(b.String())}, nil
}

func (r *Router) register(ctx context.Context, req *Request) ([]model.Message, error) {
	if len(req.Args) != 2 {
		return nil, userErrorf("Usage: register <username> <password>")
	}

	player, err := r.auth.Register(ctx, req.Args[0], req.Args[1])
	switch {
	case errors.Is(err, auth.ErrInvalidUsername):
		return nil, userErrorf("Username must be 3-20 letters, numbers or underscores.")
	case errors.Is(err, auth.ErrPasswordTooShort):
		return nil, userErrorf("Password must be at least %d characters.", r.auth.MinPasswordLength())
	case errors.Is(err, model.ErrUsernameExists):
		return nil, userErrorf("Username already exists")
	case err != nil:
		return nil, err
	}

	r.logger.Info("player registered",
		slog.String("conn_id", req.ConnID),
		slog.String("player_id", string(player.ID)))
	greeting := fmt.Sprintf("Welcome to World of Wordcraft, %s! You are now logged in.", player.DisplayName)
	return r.bind(ctx, req.ConnID, player, greeting)
}

func (r *Router) login(ctx context.Context, req *Request) ([]model.Message, error) {
	if len(req.Args) != 2 {
		return nil, userErrorf("Usage: login <username> <password>")
	}

	player, err := r.auth.Verify(ctx, req.Args[0], req.Args[1])
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return nil, userErrorf("Player not found")
	case errors.Is(err, auth.ErrIncorrectPassword):
		return nil, userErrorf("Incorrect password")
	case errors.Is(err, model.ErrBanned):
		return nil, userErrorf(msgBanned)
	case err != nil:
		return nil, err
	}

	greeting := fmt.Sprintf("Welcome back, %s!", player.DisplayName)
	return r.bind(ctx, req.ConnID, player, greeting)
}

func (r *Router) tokenAuth(ctx context.Context, req *Request) ([]model.Message, error) {
	playerID, err := r.auth.ValidateToken(req.Args[0])
	if err != nil {
		return nil, userErrorf(msgInvalidToken)
	}

	player, err := r.players.Get(ctx, playerID)
	if err != nil {
		if isNotFound(err) {
			return nil, userErrorf(msgInvalidToken)
		}
		return nil, err
	}
	if player.Banned {
		return nil, userErrorf(msgBanned)
	}

	greeting := fmt.Sprintf("Welcome back, %s!", player.DisplayName)
	return r.bind(ctx, req.ConnID, player, greeting)
}

// bind attaches a verified player to the connection and builds the
// auth_success response, evicting any older connection the player held
func (r *Router) bind(ctx context.Context, connID string, player *model.Player, greeting string) ([]model.Message, error) {
	token, err := r.auth.IssueToken(player.ID)
	if err != nil {
		return nil, err
	}

	if _, err := r.players.Load(ctx, player.ID); err != nil {
		return nil, err
	}

	if prev, ok := r.sessions.Get(connID); ok && prev.LoggedIn && prev.PlayerID != player.ID {
		if err := r.players.Flush(ctx, prev.PlayerID); err != nil {
			r.logger.Warn("failed to flush previous player on re-auth",
				slog.String("conn_id", connID),
				slog.String("player_id", string(prev.PlayerID)),
				slog.String("error", err.Error()))
		}
	}

	evicted, err := r.sessions.Authenticate(connID, player.ID, model.RolesFor(player.Role))
	if err != nil {
		r.release(ctx, player.ID)
		return nil, err
	}
	// The evicted connection may have flushed the player between the load
	// and the rebind
	if _, err := r.players.Load(ctx, player.ID); err != nil {
		return nil, err
	}
	if evicted != "" {
		r.notifier.Send(evicted, model.NewMessage(model.MessageKick, msgSessionReplaced))
		r.notifier.Disconnect(evicted, model.CloseSessionReplaced, "session replaced")
	}

	room, err := r.world.GetRoom(ctx, player.Location)
	if err != nil {
		return nil, err
	}
	view := r.roomView(room, player.ID)

	r.logger.Info("player authenticated",
		slog.String("conn_id", connID),
		slog.String("player_id", string(player.ID)))

	text := greeting + "\n\n" + renderRoom(view)
	data := model.AuthData{
		Token:    token,
		Username: player.DisplayName,
		Role:     player.Role,
		Room:     &view,
	}
	return []model.Message{model.NewMessage(model.MessageAuthSuccess, text).WithData(data)}, nil
}

// release drops a player loaded for a login that did not complete, unless
// they are still playing on another connection
func (r *Router) release(ctx context.Context, playerID model.PlayerID) {
	inUse := func(id model.PlayerID) bool {
		_, ok := r.sessions.ConnectionFor(id)
		return ok
	}
	if err := r.players.Release(ctx, playerID, inUse); err != nil {
		r.logger.Warn("failed to release player after failed login",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
	}
}

func (r *Router) logout(ctx context.Context, req *Request) ([]model.Message, error) {
	if err := r.players.Flush(ctx, req.Player.ID); err != nil {
		return nil, err
	}
	r.sessions.Logout(req.ConnID)

	r.logger.Info("player logged out",
		slog.String("conn_id", req.ConnID),
		slog.String("player_id", string(req.Player.ID)))

	text := fmt.Sprintf("Goodbye, %s! Come back soon.\n\n%s", req.Player.DisplayName, WelcomeText)
	return []model.Message{model.NewMessage(model.MessageLogout, text)}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrPlayerNotFound) || errors.Is(err, model.ErrRoomNotFound)
}
