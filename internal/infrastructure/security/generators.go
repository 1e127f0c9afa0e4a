// Package security provides secure random generation utilities
package security

import (
	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string. Group and item IDs are ULIDs
// so that the id tiebreak in ordering follows creation order.
func GenerateULID() string {
	return ulid.Make().String()
}
