package model

import "strings"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Role is a permission tier gating command execution
type Role string

const (
	RoleNone      Role = "none" // Anyone, including unauthenticated connections
	RolePlayer    Role = "player"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var roleRanks = map[Role]int{
	RoleNone:      0,
	RolePlayer:    1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ParseRole resolves a role name, case-insensitively
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleRanks[r]
	return r, ok
}

// RoleSet is the set of roles held by a session
type RoleSet map[Role]struct{}

// RolesFor expands a player's role into every role it implies.
// An admin holds moderator and player too.
func RolesFor(role Role) RoleSet {
	rank, ok := roleRanks[role]
	if !ok {
		rank = roleRanks[RolePlayer]
	}
	set := RoleSet{}
	for r, rr := range roleRanks {
		if r != RoleNone && rr <= rank {
			set[r] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set satisfies the required role
func (s RoleSet) Has(required Role) bool {
	if required == RoleNone || required == "" {
		return true
	}
	_, ok := s[required]
	return ok
}

// Player is the durable record for a registered user
type Player struct {
	ID           PlayerID   `json:"id"`
	Username     string     `json:"username"`     // canonical lowercase key
	DisplayName  string     `json:"display_name"` // original casing
	PasswordHash string     `json:"password_hash"`
	Location     Coordinate `json:"location"`
	Inventory    []Item     `json:"inventory"`
	Role         Role       `json:"role"`
	Banned       bool       `json:"banned"`
	BanReason    string     `json:"ban_reason,omitempty"`
}

// CanonicalUsername returns the case-insensitive key for a username
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Clone returns a deep copy safe to mutate independently
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Inventory != nil {
		cp.Inventory = make([]Item, len(p.Inventory))
		copy(cp.Inventory, p.Inventory)
	}
	return &cp
}

// FindItem returns the index of the first inventory item with the given name
func (p *Player) FindItem(name string) int {
	return findItem(p.Inventory, name)
}
