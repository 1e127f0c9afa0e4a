// Package ordering enforces total-order semantics for sibling entities
// sharing a scope key, independent of what the siblings represent.
package ordering

import (
	"errors"
	"fmt"
	"sort"
)

// Validation errors surfaced verbatim to callers; no mutation is ever
// attempted after either is returned.
var (
	ErrScopeMismatch = errors.New("item does not belong to scope")
	ErrDuplicateItem = errors.New("duplicate item in batch")
)

// Orderable is any entity that carries an externally assigned order and
// a stable identity. Order values need not be contiguous; ties break by
// identity ascending so that no two distinct entities compare equal.
type Orderable interface {
	OrderKey() int
	IdentityKey() string
}

// Compare returns a negative, zero, or positive value ordering a before
// b. Primary key is the order value ascending, secondary key the
// identity ascending. Zero is only possible for the same entity.
func Compare(a, b Orderable) int {
	// Explicit comparisons rather than subtraction: order values span the
	// full int range, and a difference can overflow and flip sign.
	switch {
	case a.OrderKey() < b.OrderKey():
		return -1
	case a.OrderKey() > b.OrderKey():
		return 1
	}
	switch {
	case a.IdentityKey() < b.IdentityKey():
		return -1
	case a.IdentityKey() > b.IdentityKey():
		return 1
	default:
		return 0
	}
}

// Sort orders items in place per Compare. The sort is stable, though
// Compare already defines a strict weak ordering over distinct entities.
func Sort[T Orderable](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(items[i], items[j]) < 0
	})
}

// Pair assigns a new order value to one item within a reorder batch.
type Pair struct {
	ItemID   string `json:"id"`
	NewOrder int    `json:"order"`
}

// ValidateBatch checks a reorder batch against the true owners of its
// items. owners maps item ID to owning scope ID for every item the
// caller could locate; an item missing from owners, or owned by a
// different scope, fails with ErrScopeMismatch. An item ID appearing
// twice fails with ErrDuplicateItem. Partial batches are legal: items
// omitted from the batch simply retain their prior order.
//
// Validation is pure; persistence is the reorder transaction's job.
func ValidateBatch(scopeID string, pairs []Pair, owners map[string]string) error {
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p.ItemID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, p.ItemID)
		}
		seen[p.ItemID] = struct{}{}

		owner, ok := owners[p.ItemID]
		if !ok {
			return fmt.Errorf("%w: %s is not a member of %s", ErrScopeMismatch, p.ItemID, scopeID)
		}
		if owner != scopeID {
			return fmt.Errorf("%w: %s belongs to %s, not %s", ErrScopeMismatch, p.ItemID, owner, scopeID)
		}
	}
	return nil
}
