package display

import "github.com/brightframe/rotator-go/internal/domain/ordering"

// OrderKey implements ordering.Orderable.
func (i *ContentItem) OrderKey() int { return i.Order }

// IdentityKey implements ordering.Orderable.
func (i *ContentItem) IdentityKey() string { return i.ID }

// ActiveItems returns the group's active items sorted by order then id.
// An empty result is the signal the resolver's fallback chain reacts to,
// never an error.
func (g *ContentGroup) ActiveItems() []*ContentItem {
	active := make([]*ContentItem, 0, len(g.Items))
	for _, item := range g.Items {
		if item.IsActive {
			active = append(active, item)
		}
	}
	ordering.Sort(active)
	return active
}

// IsEligible reports whether the group can be shown: administratively
// active AND at least one live item. A group that is active but has no
// live items is not eligible.
func (g *ContentGroup) IsEligible() bool {
	return g.IsActive && len(g.ActiveItems()) > 0
}
