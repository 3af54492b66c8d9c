package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrQuiet is returned by Next when nothing arrives before the timeout
var ErrQuiet = errors.New("no message before timeout")

// TokenStore keeps the token between sessions
type TokenStore interface {
	SaveToken(token string) error
	ClearToken() error
}

// Socket is a connection to the game
type Socket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial connects to the game and returns the server's welcome
func Dial(ctx context.Context, url string) (*Socket, GameMessage, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, GameMessage{}, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	s := &Socket{conn: conn}

	welcome, err := s.Next(10 * time.Second)
	if err != nil {
		_ = conn.Close()
		return nil, GameMessage{}, fmt.Errorf("no welcome from server: %w", err)
	}
	return s, welcome, nil
}

// Command sends one line of game input
func (s *Socket) Command(line string) error {
	return s.send("command", line)
}

// Resume sends a saved token in place of logging in
func (s *Socket) Resume(token string) error {
	return s.send("token_auth", token)
}

func (s *Socket) send(msgType, message string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(map[string]string{"type": msgType, "message": message})
}

// Next waits for the next message. A zero timeout waits indefinitely.
func (s *Socket) Next(timeout time.Duration) (GameMessage, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	_ = s.conn.SetReadDeadline(deadline)

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return GameMessage{}, ErrQuiet
		}
		return GameMessage{}, err
	}

	var msg GameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return GameMessage{}, fmt.Errorf("malformed message from server: %w", err)
	}
	return msg, nil
}

// Close says goodbye and closes the connection
func (s *Socket) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	return s.conn.Close()
}

// remember keeps the saved token in step with the session
func remember(tokens TokenStore, msg GameMessage) error {
	switch msg.Type {
	case "auth_success":
		var data struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Token == "" {
			return nil
		}
		return tokens.SaveToken(data.Token)
	case "logout", "ban":
		return tokens.ClearToken()
	}
	return nil
}

// closeError turns the server's close frame into a user-facing error.
// Normal closes are not errors.
func closeError(err error) error {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return err
	}
	if closeErr.Code == websocket.CloseNormalClosure {
		return nil
	}
	if closeErr.Text != "" {
		return fmt.Errorf("disconnected: %s (%d)", closeErr.Text, closeErr.Code)
	}
	return fmt.Errorf("disconnected (%d)", closeErr.Code)
}
