package model

// MessageType identifies the variant of an outbound or inbound message
type MessageType string

const (
	MessageWelcome     MessageType = "welcome"
	MessageAuthRequest MessageType = "auth_request"
	MessageAuthSuccess MessageType = "auth_success"
	MessageError       MessageType = "error"
	MessageText        MessageType = "message" // generic game text
	MessageRoom        MessageType = "room"
	MessageInventory   MessageType = "inventory"
	MessageChat        MessageType = "chat"
	MessageTheme       MessageType = "theme"
	MessageFontSize    MessageType = "fontsize"
	MessageSpeech      MessageType = "speech"
	MessageLogout      MessageType = "logout"
	MessageKick        MessageType = "kick"
	MessageBan         MessageType = "ban"

	// Inbound only
	MessageCommand   MessageType = "command"
	MessageTokenAuth MessageType = "token_auth"
)

// Message is the envelope used in both directions on the wire.
// Data holds one of the payload types below, fixed per Type.
type Message struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
}

// RoomView is the payload of welcome, auth_success and room messages
type RoomView struct {
	Coordinate  Coordinate `json:"coordinate"`
	Description string     `json:"description"`
	Exits       []string   `json:"exits"`
	NPCs        []NPC      `json:"npcs"`
	Items       []string   `json:"items"`
	Puzzle      string     `json:"puzzle,omitempty"`
	Players     []string   `json:"players,omitempty"`
}

// AuthData is the payload of auth_success messages
type AuthData struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Room     *RoomView `json:"room,omitempty"`
}

// InventoryData is the payload of inventory messages
type InventoryData struct {
	Items []Item `json:"items"`
}

// ChatData is the payload of chat messages
type ChatData struct {
	Channel string `json:"channel"` // say, yell or tell
	From    string `json:"from"`
	Text    string `json:"text"`
}

// ThemeData is the payload of theme messages
type ThemeData struct {
	Theme string `json:"theme"`
}

// FontSizeData is the payload of fontsize messages
type FontSizeData struct {
	FontSize int `json:"fontSize"`
}

// SpeechData is the payload of speech messages
type SpeechData struct {
	Action  string  `json:"action"` // enable, disable, rate, repeat, stop
	Enabled bool    `json:"enabled,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
}

// BanData is the payload of ban messages
type BanData struct {
	Reason string `json:"reason"`
}

// NewMessage builds a message with no payload
func NewMessage(t MessageType, text string) Message {
	return Message{Type: t, Message: text}
}

// NewError builds a user-visible error message
func NewError(text string) Message {
	return Message{Type: MessageError, Message: text}
}

// NewText builds a generic game text message
func NewText(text string) Message {
	return Message{Type: MessageText, Message: text}
}

// WithData attaches a payload
func (m Message) WithData(data any) Message {
	m.Data = data
	return m
}
