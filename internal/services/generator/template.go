package generator

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/mcoot/wordcraft/internal/model"
)

var (
	placeWords = []string{"cavern", "hallway", "grotto", "library", "courtyard", "crypt", "workshop", "garden"}
	moodWords  = []string{"dusty", "echoing", "moss-covered", "candlelit", "frost-rimed", "quiet", "crumbling", "sunlit"}
	exitPairs  = [][2]model.Direction{
		{model.North, model.East},
		{model.South, model.West},
		{model.East, model.Up},
		{model.West, model.Down},
		{model.North, model.South},
		{model.East, model.West},
	}
)

// TemplateDescriber writes deterministic descriptions without a remote
// model. It is used when no API key is configured.
type TemplateDescriber struct{}

// NewTemplateDescriber creates a TemplateDescriber
func NewTemplateDescriber() *TemplateDescriber {
	return &TemplateDescriber{}
}

// Describe returns the same description for the same coordinate every time
func (TemplateDescriber) Describe(_ context.Context, coord model.Coordinate) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(coord.Key()))
	n := int(h.Sum32())

	place := placeWords[n%len(placeWords)]
	mood := moodWords[(n/len(placeWords))%len(moodWords)]
	exits := exitPairs[(n/(len(placeWords)*len(moodWords)))%len(exitPairs)]

	return fmt.Sprintf("You stand in a %s %s. Passages lead %s and %s.", mood, place, exits[0], exits[1]), nil
}
