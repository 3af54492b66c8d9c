package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordcraft/internal/dependencies/mocks"
	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.manager = NewManager(clk, testutil.NopLogger())
}

func (s *ManagerSuite) TestNewSessionIsUnauthenticated() {
	s.manager.CreateSession("conn-1")

	s.False(s.manager.IsAuthenticated("conn-1"))
	s.Empty(s.manager.RolesOf("conn-1"))
	sess, ok := s.manager.Get("conn-1")
	s.True(ok)
	s.Empty(sess.PlayerID)
}

func (s *ManagerSuite) TestAuthenticateBindsPlayer() {
	s.manager.CreateSession("conn-1")

	evicted, err := s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))
	s.Require().NoError(err)
	s.Empty(evicted)

	s.True(s.manager.IsAuthenticated("conn-1"))
	s.True(s.manager.RolesOf("conn-1").Has(model.RolePlayer))
	connID, ok := s.manager.ConnectionFor("player-1")
	s.True(ok)
	s.Equal("conn-1", connID)
}

func (s *ManagerSuite) TestAuthenticateUnknownConnection() {
	_, err := s.manager.Authenticate("ghost", "player-1", model.RolesFor(model.RolePlayer))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ManagerSuite) TestReauthenticateSameConnectionOverwrites() {
	s.manager.CreateSession("conn-1")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	evicted, err := s.manager.Authenticate("conn-1", "player-2", model.RolesFor(model.RoleAdmin))
	s.Require().NoError(err)
	s.Empty(evicted)

	_, ok := s.manager.ConnectionFor("player-1")
	s.False(ok)
	s.True(s.manager.RolesOf("conn-1").Has(model.RoleAdmin))
}

func (s *ManagerSuite) TestAuthenticateElsewhereEvictsOlderConnection() {
	s.manager.CreateSession("conn-1")
	s.manager.CreateSession("conn-2")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	evicted, err := s.manager.Authenticate("conn-2", "player-1", model.RolesFor(model.RolePlayer))
	s.Require().NoError(err)
	s.Equal("conn-1", evicted)

	s.False(s.manager.IsAuthenticated("conn-1"))
	connID, _ := s.manager.ConnectionFor("player-1")
	s.Equal("conn-2", connID)

	// Ending the evicted session must not unbind the new one
	_, bound := s.manager.EndSession("conn-1")
	s.False(bound)
	connID, _ = s.manager.ConnectionFor("player-1")
	s.Equal("conn-2", connID)
}

func (s *ManagerSuite) TestEndSessionReturnsBoundPlayer() {
	s.manager.CreateSession("conn-1")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	playerID, bound := s.manager.EndSession("conn-1")
	s.True(bound)
	s.Equal(model.PlayerID("player-1"), playerID)

	_, ok := s.manager.Get("conn-1")
	s.False(ok)
	_, ok = s.manager.ConnectionFor("player-1")
	s.False(ok)

	// Idempotent
	_, bound = s.manager.EndSession("conn-1")
	s.False(bound)
}

func (s *ManagerSuite) TestLogoutKeepsConnection() {
	s.manager.CreateSession("conn-1")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	playerID, bound := s.manager.Logout("conn-1")
	s.True(bound)
	s.Equal(model.PlayerID("player-1"), playerID)

	s.False(s.manager.IsAuthenticated("conn-1"))
	_, ok := s.manager.Get("conn-1")
	s.True(ok)
	s.Equal(1, s.manager.Count())
}

func (s *ManagerSuite) TestSetRolesUpdatesLiveSession() {
	s.manager.CreateSession("conn-1")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	s.manager.SetRoles("player-1", model.RolesFor(model.RoleModerator))
	s.True(s.manager.RolesOf("conn-1").Has(model.RoleModerator))

	// Unknown players are ignored
	s.manager.SetRoles("player-9", model.RolesFor(model.RoleAdmin))
}

func (s *ManagerSuite) TestRolesOfReturnsCopy() {
	s.manager.CreateSession("conn-1")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	roles := s.manager.RolesOf("conn-1")
	roles[model.RoleAdmin] = struct{}{}

	s.False(s.manager.RolesOf("conn-1").Has(model.RoleAdmin))
}

func (s *ManagerSuite) TestAuthenticatedListsLoggedInOnly() {
	s.manager.CreateSession("conn-1")
	s.manager.CreateSession("conn-2")
	_, _ = s.manager.Authenticate("conn-1", "player-1", model.RolesFor(model.RolePlayer))

	list := s.manager.Authenticated()
	s.Require().Len(list, 1)
	s.Equal("conn-1", list[0].ConnID)
}
