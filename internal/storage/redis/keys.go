package redis

import (
	"fmt"

	"github.com/mcoot/wordcraft/internal/model"
)

// Key prefix for all world data
const keyPrefix = "wordcraft"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the canonical username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, model.CanonicalUsername(username))
}

// roomKey returns the Redis key for the Room at a coordinate
func roomKey(coord model.Coordinate) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, coord.Key())
}
