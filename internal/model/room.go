package model

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"
)

// Item is a portable object, owned by exactly one room or one inventory
type Item struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// NPC is a non-player character that lives in a room
type NPC struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Dialogue string `json:"dialogue"`
}

// Puzzle is a challenge that blocks nothing but rewards solving
type Puzzle struct {
	Type     string `json:"type"`
	Prompt   string `json:"prompt"`
	Solution string `json:"solution"`
}

// Exit marks a passage out of a room. Target is nil when the exit simply
// leads to the adjacent coordinate in its direction.
type Exit struct {
	Target *Coordinate
}

// MarshalJSON encodes a plain exit as true and a linked exit as "x,y,z"
func (e Exit) MarshalJSON() ([]byte, error) {
	if e.Target == nil {
		return []byte("true"), nil
	}
	return json.Marshal(e.Target.Key())
}

// UnmarshalJSON accepts either form written by MarshalJSON
func (e *Exit) UnmarshalJSON(data []byte) error {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		if !flag {
			return fmt.Errorf("exit flag must be true")
		}
		e.Target = nil
		return nil
	}

	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("exit must be true or a coordinate key: %w", err)
	}
	c, err := ParseCoordinate(key)
	if err != nil {
		return err
	}
	e.Target = &c
	return nil
}

// Room is the durable content stored at a coordinate
type Room struct {
	Coordinate  Coordinate         `json:"coordinate"`
	Description string             `json:"description"`
	Exits       map[Direction]Exit `json:"exits"`
	NPCs        []NPC              `json:"npcs"`
	Items       []Item             `json:"items"`
	Puzzles     []Puzzle           `json:"puzzles"`
}

// Clone returns a deep copy of the room. Working copies are mutated and
// persisted before they replace the cached value.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Exits != nil {
		cp.Exits = make(map[Direction]Exit, len(r.Exits))
		for dir, exit := range r.Exits {
			if exit.Target != nil {
				t := *exit.Target
				exit.Target = &t
			}
			cp.Exits[dir] = exit
		}
	}
	if r.NPCs != nil {
		cp.NPCs = make([]NPC, len(r.NPCs))
		copy(cp.NPCs, r.NPCs)
	}
	if r.Items != nil {
		cp.Items = make([]Item, len(r.Items))
		copy(cp.Items, r.Items)
	}
	if r.Puzzles != nil {
		cp.Puzzles = make([]Puzzle, len(r.Puzzles))
		copy(cp.Puzzles, r.Puzzles)
	}
	return &cp
}

// ExitTarget resolves where the exit in the given direction leads
func (r *Room) ExitTarget(dir Direction) (Coordinate, bool) {
	exit, ok := r.Exits[dir]
	if !ok {
		return Coordinate{}, false
	}
	if exit.Target != nil {
		return *exit.Target, true
	}
	return r.Coordinate.Step(dir), true
}

// ExitNames lists the room's exits in display order
func (r *Room) ExitNames() []string {
	names := make([]string, 0, len(r.Exits))
	for _, dir := range Directions {
		if _, ok := r.Exits[dir]; ok {
			names = append(names, string(dir))
		}
	}
	return names
}

// ActivePuzzle returns the puzzle currently awaiting a solution, if any
func (r *Room) ActivePuzzle() *Puzzle {
	if len(r.Puzzles) == 0 {
		return nil
	}
	return &r.Puzzles[0]
}

// ClearActivePuzzle removes the active puzzle once solved
func (r *Room) ClearActivePuzzle() {
	if len(r.Puzzles) > 0 {
		r.Puzzles = append(r.Puzzles[:0:0], r.Puzzles[1:]...)
	}
}

// FindItem returns the index of the first room item with the given name
func (r *Room) FindItem(name string) int {
	return findItem(r.Items, name)
}

// RemoveItem removes and returns the item at index i
func (r *Room) RemoveItem(i int) Item {
	item := r.Items[i]
	r.Items = append(r.Items[:i:i], r.Items[i+1:]...)
	return item
}

// SameName compares two names ignoring case
func SameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

func findItem(items []Item, name string) int {
	for i, item := range items {
		if SameName(item.Name, name) {
			return i
		}
	}
	return -1
}
