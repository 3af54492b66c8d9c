package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcraft/internal/factory"
	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/services/command"
)

// wireMessage mirrors model.Message with the payload left undecoded
type wireMessage struct {
	Type    model.MessageType `json:"type"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
}

type GatewaySuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	wsURL  string
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(http.HandlerFunc(s.app.Gateway.ServeWS))
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *GatewaySuite) TearDownTest() {
	s.server.Close()
}

// dial connects and consumes the welcome message
func (s *GatewaySuite) dial() *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	welcome := s.read(conn)
	s.Require().Equal(model.MessageWelcome, welcome.Type)
	return conn
}

func (s *GatewaySuite) send(conn *websocket.Conn, line string) {
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(line)))
}

func (s *GatewaySuite) read(conn *websocket.Conn) wireMessage {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)

	var msg wireMessage
	s.Require().NoError(json.Unmarshal(data, &msg))
	return msg
}

// readClose reads until the server's close frame and returns it
func (s *GatewaySuite) readClose(conn *websocket.Conn) *websocket.CloseError {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		s.Require().ErrorAs(err, &closeErr)
		return closeErr
	}
}

// register creates an account on a fresh connection and returns the token
func (s *GatewaySuite) register(username string) (*websocket.Conn, string) {
	conn := s.dial()
	s.send(conn, "register "+username+" password1")
	msg := s.read(conn)
	s.Require().Equal(model.MessageAuthSuccess, msg.Type, msg.Message)

	var data model.AuthData
	s.Require().NoError(json.Unmarshal(msg.Data, &data))
	return conn, data.Token
}

func (s *GatewaySuite) TestWelcomeOnConnect() {
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	s.Require().NoError(err)
	defer conn.Close()

	msg := s.read(conn)
	s.Equal(model.MessageWelcome, msg.Type)
	s.Equal(command.WelcomeText, msg.Message)
	s.Eventually(func() bool { return s.app.Gateway.Count() == 1 }, time.Second, 10*time.Millisecond)
	s.Equal(1, s.app.Sessions.Count())
}

func (s *GatewaySuite) TestRawLineIsRouted() {
	conn := s.dial()

	s.send(conn, "look")
	msg := s.read(conn)
	s.Equal(model.MessageAuthRequest, msg.Type)
}

func (s *GatewaySuite) TestJSONCommandIsRouted() {
	conn := s.dial()

	s.send(conn, `{"type":"command","message":"help look"}`)
	msg := s.read(conn)
	s.Equal(model.MessageText, msg.Type)
	s.Contains(msg.Message, "Usage: look")
}

func (s *GatewaySuite) TestUnknownFrameTypeIsIgnored() {
	conn := s.dial()

	s.send(conn, `{"type":"chat","message":"hello"}`)
	s.send(conn, "help")
	msg := s.read(conn)
	s.Contains(msg.Message, "Available commands:")
}

func (s *GatewaySuite) TestRegisterAndMove() {
	conn, token := s.register("alice")
	s.NotEmpty(token)

	s.send(conn, "north")
	msg := s.read(conn)
	s.Equal(model.MessageRoom, msg.Type)
	s.Contains(msg.Message, "A narrow hallway lit by torches.")
}

func (s *GatewaySuite) TestTokenAuthFrameResumesAccount() {
	first, token := s.register("alice")
	s.Require().NoError(first.Close())
	s.Eventually(func() bool { return s.app.Gateway.Count() == 0 }, time.Second, 10*time.Millisecond)

	conn := s.dial()
	s.send(conn, `{"type":"token_auth","message":"`+token+`"}`)
	msg := s.read(conn)
	s.Require().Equal(model.MessageAuthSuccess, msg.Type)

	var data model.AuthData
	s.Require().NoError(json.Unmarshal(msg.Data, &data))
	s.Equal("alice", data.Username)
	s.NotNil(data.Room)
}

func (s *GatewaySuite) TestRateLimitClosesConnection() {
	conn := s.dial()

	// The test clock is frozen, so every frame lands in the same window
	for range 6 {
		s.send(conn, "help")
	}
	for range 5 {
		msg := s.read(conn)
		s.Contains(msg.Message, "Available commands:")
	}

	msg := s.read(conn)
	s.Equal(model.MessageError, msg.Type)
	s.Equal("Rate limit exceeded. Please slow down.", msg.Message)

	closeErr := s.readClose(conn)
	s.Equal(int(model.CloseRateLimited), closeErr.Code)
	s.Equal("rate limit exceeded", closeErr.Text)
	s.Equal(0, s.app.RateLimiter.Tracked())
}

func (s *GatewaySuite) TestRateLimitWindowSlides() {
	conn := s.dial()

	for range 5 {
		s.send(conn, "help")
	}
	for range 5 {
		s.read(conn)
	}

	s.app.MockClock.Advance(time.Second)
	s.send(conn, "help")
	msg := s.read(conn)
	s.Contains(msg.Message, "Available commands:")
}

func (s *GatewaySuite) TestSecondLoginEvictsFirstConnection() {
	first, _ := s.register("alice")

	second := s.dial()
	s.send(second, "login alice password1")
	msg := s.read(second)
	s.Equal(model.MessageAuthSuccess, msg.Type)

	kicked := s.read(first)
	s.Equal(model.MessageKick, kicked.Type)
	s.Equal("You have logged in from another location.", kicked.Message)

	closeErr := s.readClose(first)
	s.Equal(int(model.CloseSessionReplaced), closeErr.Code)

	s.Eventually(func() bool { return s.app.Gateway.Count() == 1 }, time.Second, 10*time.Millisecond)
	s.Len(s.app.Sessions.Authenticated(), 1)
}

func (s *GatewaySuite) TestDisconnectSavesAndReleasesPlayer() {
	conn, _ := s.register("alice")
	s.send(conn, "take goldkey")
	s.Equal("You take the goldkey.", s.read(conn).Message)

	player, err := s.app.PlayerService.GetByUsername(context.Background(), "alice")
	s.Require().NoError(err)
	s.True(s.app.PlayerService.IsOnline(player.ID))

	s.Require().NoError(conn.Close())
	s.Eventually(func() bool {
		return !s.app.PlayerService.IsOnline(player.ID)
	}, time.Second, 10*time.Millisecond)

	stored, err := s.app.Storage.GetPlayer(context.Background(), player.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Inventory, 1)
	s.Equal("goldkey", stored.Inventory[0].Name)
	s.Equal(0, s.app.Sessions.Count())
	s.Equal(0, s.app.RateLimiter.Tracked())
}

func (s *GatewaySuite) TestBanClosesWithReason() {
	admin, _ := s.register(factory.TestAdmin)
	victim, _ := s.register("alice")

	s.send(admin, "ban alice spamming the hallway")
	s.Equal("Banned alice: spamming the hallway", s.read(admin).Message)

	msg := s.read(victim)
	s.Equal(model.MessageBan, msg.Type)
	var data model.BanData
	s.Require().NoError(json.Unmarshal(msg.Data, &data))
	s.Equal("spamming the hallway", data.Reason)

	closeErr := s.readClose(victim)
	s.Equal(int(model.CloseBanned), closeErr.Code)
	s.Equal("spamming the hallway", closeErr.Text)
}

func (s *GatewaySuite) TestKickClosesConnection() {
	admin, _ := s.register(factory.TestAdmin)
	victim, _ := s.register("alice")

	s.send(admin, "kick alice")
	s.Equal("Kicked alice.", s.read(admin).Message)

	s.Equal(model.MessageKick, s.read(victim).Type)
	s.Equal(int(model.CloseKicked), s.readClose(victim).Code)
}

func (s *GatewaySuite) TestSayReachesRoommate() {
	alice, _ := s.register("alice")
	bob, _ := s.register("bob")

	s.send(alice, "say hello there")
	s.Equal("You say: hello there", s.read(alice).Message)

	heard := s.read(bob)
	s.Equal(model.MessageChat, heard.Type)
	s.Equal("alice says: hello there", heard.Message)
}

func (s *GatewaySuite) TestShutdownClosesEverything() {
	conn, _ := s.register("alice")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Require().NoError(s.app.Gateway.Shutdown(ctx))

	closeErr := s.readClose(conn)
	s.Equal(int(model.CloseGoingAway), closeErr.Code)
	s.Equal("server shutting down", closeErr.Text)
	s.Equal(0, s.app.Gateway.Count())

	// New connections are refused while draining
	late, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	s.Require().NoError(err)
	defer late.Close()
	s.Equal(websocket.CloseTryAgainLater, s.readClose(late).Code)
}

func (s *GatewaySuite) TestUnknownConnectionIsIgnored() {
	s.NotPanics(func() {
		s.app.Gateway.Send("nobody", model.NewText("hello"))
		s.app.Gateway.Disconnect("nobody", model.CloseKicked, "bye")
	})
	s.Equal(0, s.app.Gateway.Count())
}
