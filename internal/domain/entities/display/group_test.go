package display

import "testing"

func TestActiveItemsFiltersAndSorts(t *testing.T) {
	group := &ContentGroup{
		ID:       "group-1",
		IsActive: true,
		Items: []*ContentItem{
			{ID: "A", GroupID: "group-1", Order: 3, IsActive: true},
			{ID: "C", GroupID: "group-1", Order: 1, IsActive: true},
			{ID: "B", GroupID: "group-1", Order: 1, IsActive: true},
			{ID: "D", GroupID: "group-1", Order: 0, IsActive: false},
		},
	}

	items := group.ActiveItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 active items, got %d", len(items))
	}
	if items[0].ID != "B" || items[1].ID != "C" || items[2].ID != "A" {
		t.Fatalf("expected B, C, A, got %s, %s, %s", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestActiveItemsEmptyGroup(t *testing.T) {
	group := &ContentGroup{ID: "group-1", IsActive: true}

	items := group.ActiveItems()
	if items == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name     string
		group    *ContentGroup
		eligible bool
	}{
		{
			name: "active group with live item",
			group: &ContentGroup{
				IsActive: true,
				Items:    []*ContentItem{{ID: "A", IsActive: true}},
			},
			eligible: true,
		},
		{
			name: "inactive group with live item",
			group: &ContentGroup{
				IsActive: false,
				Items:    []*ContentItem{{ID: "A", IsActive: true}},
			},
			eligible: false,
		},
		{
			// Administratively active but nothing live to show. This
			// distinction is what drives fallback.
			name: "active group with only deactivated items",
			group: &ContentGroup{
				IsActive: true,
				Items:    []*ContentItem{{ID: "A", IsActive: false}},
			},
			eligible: false,
		},
		{
			name:     "active group with zero items",
			group:    &ContentGroup{IsActive: true},
			eligible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.group.IsEligible(); got != tt.eligible {
				t.Fatalf("expected eligible=%t, got %t", tt.eligible, got)
			}
		})
	}
}

func TestResolutionEmpty(t *testing.T) {
	var nilRes *Resolution
	if !nilRes.Empty() {
		t.Fatalf("nil resolution should be empty")
	}
	if !(&Resolution{}).Empty() {
		t.Fatalf("resolution without group should be empty")
	}
	res := &Resolution{Group: &ContentGroup{ID: "g"}}
	if res.Empty() {
		t.Fatalf("resolution with group should not be empty")
	}
}
