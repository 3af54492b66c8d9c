package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mcoot/wordcraft/internal/model"
)

// Handler executes a command on behalf of a connection. Returned messages go
// back to the caller; anything for other connections goes through the
// Router's Notifier.
type Handler func(r *Router, ctx context.Context, req *Request) ([]model.Message, error)

// Descriptor is the static definition of one command
type Descriptor struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Role        model.Role
	MinArgs     int
	Hidden      bool // omitted from help
	Handler     Handler
}

// Registry maps lowercase command names and aliases to descriptors.
// It is built once and never modified.
type Registry struct {
	byName  map[string]*Descriptor
	ordered []*Descriptor
}

// NewRegistry builds a registry, panicking on a malformed or duplicate entry
func NewRegistry(descriptors []Descriptor) *Registry {
	reg := &Registry{byName: make(map[string]*Descriptor)}
	for i := range descriptors {
		d := &descriptors[i]
		if d.Name == "" || d.Handler == nil {
			panic(fmt.Sprintf("command: descriptor %d missing name or handler", i))
		}
		if d.Role == "" {
			d.Role = model.RoleNone
		}
		for _, name := range append([]string{d.Name}, d.Aliases...) {
			key := strings.ToLower(name)
			if _, dup := reg.byName[key]; dup {
				panic(fmt.Sprintf("command: duplicate command name %q", key))
			}
			reg.byName[key] = d
		}
		reg.ordered = append(reg.ordered, d)
	}
	slices.SortFunc(reg.ordered, func(a, b *Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return reg
}

// Lookup resolves a command name or alias
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[strings.ToLower(name)]
	return d, ok
}

// Visible returns the commands the role set may run, sorted by name
func (r *Registry) Visible(roles model.RoleSet) []*Descriptor {
	var result []*Descriptor
	for _, d := range r.ordered {
		if !d.Hidden && roles.Has(d.Role) {
			result = append(result, d)
		}
	}
	return result
}

// Builtins is the full command table
func Builtins() []Descriptor {
	return []Descriptor{
		// Account
		{Name: "help", Usage: "help [command]", Description: "List commands or show how to use one", Role: model.RoleNone, Handler: (*Router).help},
		{Name: "register", Usage: "register <username> <password>", Description: "Create a new account", Role: model.RoleNone, MinArgs: 2, Handler: (*Router).register},
		{Name: "login", Usage: "login <username> <password>", Description: "Log in to your account", Role: model.RoleNone, MinArgs: 2, Handler: (*Router).login},
		{Name: "token_auth", Usage: "token_auth <token>", Description: "Resume a session with a saved token", Role: model.RoleNone, MinArgs: 1, Hidden: true, Handler: (*Router).tokenAuth},
		{Name: "logout", Usage: "logout", Description: "Log out of your account", Role: model.RolePlayer, Handler: (*Router).logout},

		// World
		{Name: "look", Aliases: []string{"l"}, Usage: "look", Description: "Look around your current location", Role: model.RolePlayer, Handler: (*Router).look},
		{Name: "go", Aliases: []string{"move"}, Usage: "go <direction>", Description: "Walk through an exit (n, s, e, w, u, d)", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).move},
		{Name: "inventory", Aliases: []string{"i", "inv"}, Usage: "inventory", Description: "List what you are carrying", Role: model.RolePlayer, Handler: (*Router).inventory},
		{Name: "inspect", Usage: "inspect <item>", Description: "Examine an item you are carrying", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).inspect},
		{Name: "take", Aliases: []string{"get"}, Usage: "take <item>", Description: "Pick up an item in the room", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).take},
		{Name: "drop", Usage: "drop <item>", Description: "Leave an item in the room", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).drop},
		{Name: "solve", Aliases: []string{"interact", "use"}, Usage: "solve <answer>", Description: "Answer the puzzle in the room", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).solve},
		{Name: "recall", Usage: "recall", Description: "Return to the starting room", Role: model.RolePlayer, Handler: (*Router).recall},

		// Chat
		{Name: "say", Usage: "say <message>", Description: "Speak to everyone in the room", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).say},
		{Name: "yell", Usage: "yell <message>", Description: "Shout to everyone online", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).yell},
		{Name: "tell", Usage: "tell <player> <message>", Description: "Whisper to one player", Role: model.RolePlayer, MinArgs: 2, Handler: (*Router).tell},
		{Name: "who", Usage: "who", Description: "List online players", Role: model.RolePlayer, Handler: (*Router).who},

		// Accessibility
		{Name: "highcontrast", Usage: "highcontrast <on|off>", Description: "Toggle the high contrast theme", Role: model.RoleNone, MinArgs: 1, Handler: (*Router).highContrast},
		{Name: "fontsize", Usage: "fontsize <1-1000>", Description: "Change the game text font size", Role: model.RoleNone, MinArgs: 1, Handler: (*Router).fontSize},
		{Name: "speech", Usage: "speech <on|off>", Description: "Toggle text-to-speech output", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).speech},
		{Name: "speech-rate", Usage: "speech-rate <0.1-10>", Description: "Change text-to-speech playback rate", Role: model.RolePlayer, MinArgs: 1, Handler: (*Router).speechRate},
		{Name: "speech-repeat", Usage: "speech-repeat", Description: "Repeat all visible game text aloud", Role: model.RolePlayer, Handler: (*Router).speechRepeat},
		{Name: "speech-stop", Usage: "speech-stop", Description: "Stop any ongoing text-to-speech", Role: model.RolePlayer, Handler: (*Router).speechStop},

		// Moderation
		{Name: "kick", Usage: "kick <player>", Description: "Disconnect a player", Role: model.RoleModerator, MinArgs: 1, Handler: (*Router).kick},
		{Name: "ban", Usage: "ban <player> [reason]", Description: "Ban a player and disconnect them", Role: model.RoleModerator, MinArgs: 1, Handler: (*Router).ban},
		{Name: "unban", Usage: "unban <player>", Description: "Lift a ban", Role: model.RoleModerator, MinArgs: 1, Handler: (*Router).unban},
		{Name: "describe", Aliases: []string{"edit_room_description"}, Usage: "describe <text>", Description: "Rewrite the current room's description", Role: model.RoleModerator, MinArgs: 1, Handler: (*Router).describe},

		// Administration
		{Name: "grant", Aliases: []string{"grant_role"}, Usage: "grant <player> <role>", Description: "Set a player's role", Role: model.RoleAdmin, MinArgs: 2, Handler: (*Router).grant},
		{Name: "teleport", Usage: "teleport <x> <y> <z>", Description: "Jump to any coordinate", Role: model.RoleAdmin, MinArgs: 3, Handler: (*Router).teleport},
		{Name: "spawn", Aliases: []string{"spawn_item"}, Usage: "spawn <item name>", Description: "Create an item in the room", Role: model.RoleAdmin, MinArgs: 1, Handler: (*Router).spawn},
	}
}
