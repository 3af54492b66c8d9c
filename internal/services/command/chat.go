package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/wordcraft/internal/model"
)

func chat(channel, from, text, line string) model.Message {
	return model.NewMessage(model.MessageChat, line).WithData(model.ChatData{
		Channel: channel,
		From:    from,
		Text:    text,
	})
}

func (r *Router) say(_ context.Context, req *Request) ([]model.Message, error) {
	from := req.Player.DisplayName
	r.broadcastRoom(req.Player.Location, req.Player.ID,
		chat("say", from, req.Rest, fmt.Sprintf("%s says: %s", from, req.Rest)))
	return []model.Message{chat("say", from, req.Rest, "You say: "+req.Rest)}, nil
}

func (r *Router) yell(_ context.Context, req *Request) ([]model.Message, error) {
	from := req.Player.DisplayName
	msg := chat("yell", from, req.Rest, fmt.Sprintf("%s yells: %s", from, req.Rest))
	for _, p := range r.players.Online() {
		if p.ID != req.Player.ID {
			r.sendToPlayer(p.ID, msg)
		}
	}
	return []model.Message{chat("yell", from, req.Rest, "You yell: "+req.Rest)}, nil
}

func (r *Router) tell(ctx context.Context, req *Request) ([]model.Message, error) {
	name := req.Args[0]
	text := strings.TrimSpace(strings.TrimPrefix(req.Rest, name))

	target, err := r.findPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	if target.ID == req.Player.ID {
		return nil, userErrorf("Talking to yourself again?")
	}

	from := req.Player.DisplayName
	if !r.sendToPlayer(target.ID, chat("tell", from, text, fmt.Sprintf("%s tells you: %s", from, text))) {
		return nil, userErrorf("%s is not online.", target.DisplayName)
	}
	return []model.Message{
		chat("tell", from, text, fmt.Sprintf("You tell %s: %s", target.DisplayName, text)),
	}, nil
}

func (r *Router) who(_ context.Context, _ *Request) ([]model.Message, error) {
	online := r.players.Online()
	names := make([]string, 0, len(online))
	for _, p := range online {
		name := p.DisplayName
		if p.Role == model.RoleModerator || p.Role == model.RoleAdmin {
			name += " [" + string(p.Role) + "]"
		}
		names = append(names, name)
	}
	text := fmt.Sprintf("Players online (%d): %s", len(names), strings.Join(names, ", "))
	return []model.Message{model.NewText(text)}, nil
}
