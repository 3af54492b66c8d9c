package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout)
}

// NewOutputTo creates a new Output formatter writing to w
func NewOutputTo(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case TokenResult:
		o.printTokenResult(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case StatusResult:
		o.printStatus(v)
	case WhoResult:
		o.printWho(v)
	case GameMessage:
		o.printGameMessage(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Coordinate response type
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Player response type (matches API)
type Player struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Location    Coordinate `json:"location"`
	Inventory   []string   `json:"inventory"`
	Online      bool       `json:"online"`
}

// TokenResult is the response of the token endpoint
type TokenResult struct {
	Token  string `json:"token"`
	Player Player `json:"player"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// StatusResult response type
type StatusResult struct {
	Connections   int `json:"connections"`
	PlayersOnline int `json:"players_online"`
	RoomsCached   int `json:"rooms_cached"`
}

// WhoEntry is one online player
type WhoEntry struct {
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Location    Coordinate `json:"location"`
}

// WhoResult response type
type WhoResult struct {
	Count   int        `json:"count"`
	Players []WhoEntry `json:"players"`
}

// GameMessage is one message received over the game socket
type GameMessage struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (o *Output) printPlayer(p Player) {
	online := "no"
	if p.Online {
		online = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.Role)
	fmt.Fprintf(o.w, "Location: %s\n", p.Location)
	fmt.Fprintf(o.w, "Online: %s\n", online)
	if len(p.Inventory) > 0 {
		fmt.Fprintf(o.w, "Carrying: %s\n", strings.Join(p.Inventory, ", "))
	}
}

func (o *Output) printTokenResult(t TokenResult) {
	o.printPlayer(t.Player)
	fmt.Fprintf(o.w, "Token: %s\n", t.Token)
}

func (o *Output) printStatus(s StatusResult) {
	fmt.Fprintf(o.w, "Connections: %d\n", s.Connections)
	fmt.Fprintf(o.w, "Players online: %d\n", s.PlayersOnline)
	fmt.Fprintf(o.w, "Rooms cached: %d\n", s.RoomsCached)
}

func (o *Output) printWho(w WhoResult) {
	fmt.Fprintf(o.w, "Players online (%d):\n", w.Count)
	for _, p := range w.Players {
		role := ""
		if p.Role != "player" {
			role = " [" + p.Role + "]"
		}
		fmt.Fprintf(o.w, "  - %s%s at %s\n", p.DisplayName, role, p.Location)
	}
}

func (o *Output) printGameMessage(m GameMessage) {
	if m.Type == "error" {
		fmt.Fprintf(o.w, "! %s\n", m.Message)
		return
	}
	fmt.Fprintln(o.w, m.Message)
}
