package generator

import "github.com/mcoot/wordcraft/internal/model"

var npcPool = []model.NPC{
	{Name: "Old Merchant", Dialogue: "I sell potions and rare items."},
	{Name: "Lost Scholar", Dialogue: "I seek ancient texts in these halls..."},
	{Name: "Wandering Mage", Dialogue: "The arcane arts are not to be trifled with."},
	{Name: "Gruff Dwarf", Dialogue: "Need something forged? I'm your dwarf."},
	{Name: "Mysterious Elf", Dialogue: "The shadows hold many secrets..."},
}

var itemPool = []model.Item{
	{Name: "Rusty Key", Description: "An old key covered in rust.", Category: "key"},
	{Name: "Health Potion", Description: "A red liquid that restores health.", Category: "consumable"},
	{Name: "Ancient Scroll", Description: "A weathered scroll with mysterious writing.", Category: "quest"},
	{Name: "Magic Gem", Description: "A glowing gem humming with power.", Category: "valuable"},
	{Name: "Broken Sword", Description: "A sword that has seen better days.", Category: "weapon"},
}

var puzzlePool = []model.Puzzle{
	{Type: "riddle", Prompt: "Speak friend and enter", Solution: "friend"},
	{Type: "combination", Prompt: "Find the sequence: Red, Blue, Green", Solution: "RGB"},
	{Type: "lock", Prompt: "This chest requires a specific key", Solution: "Rusty Key"},
	{Type: "pattern", Prompt: "Press the tiles in order of the stars", Solution: "1234"},
	{Type: "magic", Prompt: "Channel the correct element to open", Solution: "fire"},
}

// StartingRoom is the fixed room at the world origin
func StartingRoom() *model.Room {
	north := model.Coordinate{Y: 1}
	east := model.Coordinate{X: 1}
	west := model.Coordinate{X: -1}
	return &model.Room{
		Coordinate: model.Origin,
		Description: "Welcome to World of Wordcraft! You find yourself in a cozy stone chamber lit by glowing crystals. " +
			"A friendly tutorial guide stands nearby ready to help. " +
			"On the wall, you see glowing signs explaining basic commands like 'look' and 'help'.",
		Exits: map[model.Direction]model.Exit{
			model.North: {Target: &north},
			model.East:  {Target: &east},
			model.West:  {Target: &west},
		},
		NPCs: []model.NPC{{
			ID:       "tutorial_guide",
			Name:     "Tutorial Guide",
			Dialogue: "Welcome, traveller! Type 'help' to see what you can do, and 'look' to take in your surroundings.",
		}},
		Items: []model.Item{{
			ID:          "welcome_scroll",
			Name:        "Welcome Scroll",
			Description: "A scroll containing basic game commands and tips.",
			Category:    "quest",
		}},
		Puzzles: []model.Puzzle{},
	}
}
