package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/services/session"
	"github.com/mcoot/wordcraft/internal/services/world"
)

// User-visible text for failures that are not the caller's fault
const (
	msgGenericError  = "Something went wrong. Please try again."
	msgHandlerPanic  = "Error executing command"
	msgNotLoggedIn   = "You must be logged in to use this command."
	msgNotPermitted  = "You are not permitted to use this command."
	msgEmptyCommand  = "Please enter a command. Type \"help\" for available commands."
	msgUnknownFormat = "Unknown command: '%s'. Type \"help\" for available commands."
)

// WelcomeText greets a fresh connection and explains how to log in
const WelcomeText = "Welcome to World of Wordcraft!\n" +
	"Type \"register <username> <password>\" to create an account, " +
	"or \"login <username> <password>\" to continue your adventure.\n" +
	"Type \"help\" for a list of commands."

// UserError is a failure whose text is safe to show the caller as-is
type UserError struct {
	Msg string
}

func (e *UserError) Error() string {
	return e.Msg
}

func userErrorf(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// Notifier reaches connections other than the caller's
type Notifier interface {
	Send(connID string, msg model.Message)
	Disconnect(connID string, code model.CloseCode, reason string)
}

// Request is one parsed command invocation
type Request struct {
	ConnID string
	Name   string   // canonical command name
	Args   []string // whitespace-separated arguments
	Rest   string   // argument text with inner spacing preserved

	// Set for commands that require a logged-in player. Both are working
	// copies read for this invocation only.
	Player *model.Player
	Room   *model.Room
	Roles  model.RoleSet
}

// Router parses raw input and dispatches it to command handlers
type Router struct {
	registry *Registry
	auth     *auth.Service
	players  *players.Service
	world    *world.Service
	sessions *session.Manager
	notifier Notifier
	logger   *slog.Logger
}

// NewRouter creates a router over the builtin command table
func NewRouter(
	authService *auth.Service,
	playerService *players.Service,
	worldService *world.Service,
	sessions *session.Manager,
	logger *slog.Logger,
) *Router {
	return &Router{
		registry: NewRegistry(Builtins()),
		auth:     authService,
		players:  playerService,
		world:    worldService,
		sessions: sessions,
		notifier: discardNotifier{},
		logger:   logger.With(slog.String("component", "router")),
	}
}

// SetNotifier attaches the connection manager. Call before serving.
func (r *Router) SetNotifier(n Notifier) {
	r.notifier = n
}

// Registry returns the command table
func (r *Router) Registry() *Registry {
	return r.registry
}

// Welcome is sent to every connection when it opens
func (r *Router) Welcome() model.Message {
	return model.NewMessage(model.MessageWelcome, WelcomeText)
}

// Route parses and executes one line of input from a connection
func (r *Router) Route(ctx context.Context, connID string, raw string) []model.Message {
	name, args, rest := parse(raw)
	if name == "" {
		return []model.Message{model.NewError(msgEmptyCommand)}
	}

	if dir, ok := model.ParseDirection(name); ok && len(args) == 0 {
		name, args, rest = "go", []string{string(dir)}, string(dir)
	}

	desc, ok := r.registry.Lookup(name)
	if !ok {
		return []model.Message{model.NewError(fmt.Sprintf(msgUnknownFormat, name))}
	}

	logger := r.logger.With(slog.String("conn_id", connID), slog.String("command", desc.Name))

	req := &Request{
		ConnID: connID,
		Name:   desc.Name,
		Args:   args,
		Rest:   rest,
		Roles:  r.sessions.RolesOf(connID),
	}

	if desc.Role != model.RoleNone {
		if !r.sessions.IsAuthenticated(connID) {
			return []model.Message{model.NewMessage(model.MessageAuthRequest, msgNotLoggedIn)}
		}
		if !req.Roles.Has(desc.Role) {
			logger.Info("permission denied", slog.String("required", string(desc.Role)))
			return []model.Message{model.NewError(msgNotPermitted)}
		}
	}

	if len(args) < desc.MinArgs {
		return []model.Message{model.NewError("Usage: " + desc.Usage)}
	}

	if desc.Role != model.RoleNone {
		if err := r.loadContext(ctx, req); err != nil {
			return []model.Message{r.errorMessage(logger, err)}
		}
	}

	msgs, err := r.invoke(ctx, logger, desc, req)
	if err != nil {
		return []model.Message{r.errorMessage(logger, err)}
	}
	return msgs
}

// loadContext reads the caller's player and the room they stand in
func (r *Router) loadContext(ctx context.Context, req *Request) error {
	sess, ok := r.sessions.Get(req.ConnID)
	if !ok || !sess.LoggedIn {
		return &UserError{Msg: msgNotLoggedIn}
	}

	player, err := r.players.Get(ctx, sess.PlayerID)
	if err != nil {
		return err
	}
	room, err := r.world.GetRoom(ctx, player.Location)
	if err != nil {
		return err
	}

	req.Player = player
	req.Room = room
	return nil
}

func (r *Router) invoke(ctx context.Context, logger *slog.Logger, desc *Descriptor, req *Request) (msgs []model.Message, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("command panicked", slog.Any("panic", rec))
			msgs, err = []model.Message{model.NewError(msgHandlerPanic)}, nil
		}
	}()
	return desc.Handler(r, ctx, req)
}

func (r *Router) errorMessage(logger *slog.Logger, err error) model.Message {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return model.NewError(userErr.Msg)
	}
	logger.Error("command failed", slog.String("error", err.Error()))
	return model.NewError(msgGenericError)
}

// parse splits a line into a lowercase command token and its arguments
func parse(raw string) (name string, args []string, rest string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", nil, ""
	}
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), nil, ""
	}
	rest = strings.TrimSpace(line[i:])
	return strings.ToLower(line[:i]), strings.Fields(rest), rest
}

type discardNotifier struct{}

func (discardNotifier) Send(string, model.Message)                 {}
func (discardNotifier) Disconnect(string, model.CloseCode, string) {}
