package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinateEncodingsShareKey(t *testing.T) {
	for _, raw := range []string{"1,-2,3", "(1, -2, 3)", "[1,-2,3]", " 1 -2 3 ", "1, -2,3"} {
		c, err := ParseCoordinate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "1,-2,3", c.Key(), raw)
	}
}

func TestParseCoordinateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "1,2", "a,b,c", "1,2,3,4"} {
		_, err := ParseCoordinate(raw)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, raw)
	}
}

func TestDirectionDeltas(t *testing.T) {
	assert.Equal(t, Coordinate{Y: 1}, Origin.Step(North))
	assert.Equal(t, Coordinate{Y: -1}, Origin.Step(South))
	assert.Equal(t, Coordinate{X: 1}, Origin.Step(East))
	assert.Equal(t, Coordinate{X: -1}, Origin.Step(West))
	assert.Equal(t, Coordinate{Z: 1}, Origin.Step(Up))
	assert.Equal(t, Coordinate{Z: -1}, Origin.Step(Down))

	dir, ok := ParseDirection("N")
	assert.True(t, ok)
	assert.Equal(t, North, dir)
	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}

func TestRolesForIsHierarchical(t *testing.T) {
	admin := RolesFor(RoleAdmin)
	assert.True(t, admin.Has(RolePlayer))
	assert.True(t, admin.Has(RoleModerator))
	assert.True(t, admin.Has(RoleAdmin))

	player := RolesFor(RolePlayer)
	assert.True(t, player.Has(RoleNone))
	assert.True(t, player.Has(RolePlayer))
	assert.False(t, player.Has(RoleModerator))

	assert.False(t, RoleSet{}.Has(RolePlayer))
}

func TestExitJSONForms(t *testing.T) {
	target := Coordinate{X: 5, Y: 5, Z: 0}
	room := Room{Exits: map[Direction]Exit{
		North: {},
		Down:  {Target: &target},
	}}

	data, err := json.Marshal(room.Exits)
	require.NoError(t, err)
	assert.JSONEq(t, `{"north":true,"down":"5,5,0"}`, string(data))

	var decoded map[Direction]Exit
	require.NoError(t, json.Unmarshal(data, &decoded))
	room.Exits = decoded

	next, ok := room.ExitTarget(North)
	assert.True(t, ok)
	assert.Equal(t, Coordinate{Y: 1}, next)
	next, ok = room.ExitTarget(Down)
	assert.True(t, ok)
	assert.Equal(t, target, next)
	_, ok = room.ExitTarget(East)
	assert.False(t, ok)
}

func TestRoomCloneIsIndependent(t *testing.T) {
	room := &Room{
		Items:   []Item{{Name: "Rusty Key"}, {Name: "Magic Gem"}},
		Puzzles: []Puzzle{{Type: "riddle", Solution: "friend"}},
		Exits:   map[Direction]Exit{North: {}},
	}

	cp := room.Clone()
	cp.RemoveItem(cp.FindItem("rusty key"))
	cp.ClearActivePuzzle()
	delete(cp.Exits, North)

	assert.Len(t, room.Items, 2)
	assert.Len(t, room.Puzzles, 1)
	assert.Contains(t, room.Exits, North)
	assert.Equal(t, []Item{{Name: "Magic Gem"}}, cp.Items)
	assert.Nil(t, cp.ActivePuzzle())
}
