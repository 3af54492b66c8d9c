package response

import (
	"github.com/mcoot/wordcraft/internal/model"
)

// Player represents a player in API responses
type Player struct {
	Username    string           `json:"username"`
	DisplayName string           `json:"display_name"`
	Role        model.Role       `json:"role"`
	Location    model.Coordinate `json:"location"`
	Inventory   []string         `json:"inventory"`
	Online      bool             `json:"online"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player, online bool) Player {
	items := make([]string, 0, len(p.Inventory))
	for _, item := range p.Inventory {
		items = append(items, item.Name)
	}
	return Player{
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		Location:    p.Location,
		Inventory:   items,
		Online:      online,
	}
}

// TokenResponse is the response for the token endpoint
type TokenResponse struct {
	Token  string `json:"token"`
	Player Player `json:"player"`
}

// Status reports server load
type Status struct {
	Connections   int `json:"connections"`
	PlayersOnline int `json:"players_online"`
	RoomsCached   int `json:"rooms_cached"`
}

// WhoEntry is one online player in the who list
type WhoEntry struct {
	DisplayName string           `json:"display_name"`
	Role        model.Role       `json:"role"`
	Location    model.Coordinate `json:"location"`
}

// WhoResponse lists online players
type WhoResponse struct {
	Count   int        `json:"count"`
	Players []WhoEntry `json:"players"`
}
