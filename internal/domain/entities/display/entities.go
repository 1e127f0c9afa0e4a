// Package display defines the core domain entities for slot resolution
// and ordered content rotation.
package display

import (
	"encoding/json"
	"errors"
)

// Sentinel errors for the display domain. Handlers map these to HTTP
// status codes at the presentation boundary.
var (
	ErrSlotNotFound   = errors.New("slot not found")
	ErrCyclicFallback = errors.New("cyclic fallback")
	ErrGroupNotFound  = errors.New("content group not found")
	ErrItemNotFound   = errors.New("content item not found")
	ErrGroupProtected = errors.New("content group is protected from deletion")
)

// PlayMode controls whether the display client advances items on a timer.
type PlayMode string

const (
	PlayModeManual PlayMode = "MANUAL"
	PlayModeAuto   PlayMode = "AUTO"
)

// AnimationType names the client-side transition between items.
type AnimationType string

const (
	AnimationFade   AnimationType = "FADE"
	AnimationSlide  AnimationType = "SLIDE"
	AnimationZoom   AnimationType = "ZOOM"
	AnimationFlip   AnimationType = "FLIP"
	AnimationBounce AnimationType = "BOUNCE"
)

// Dimension is a width/height pair in pixels.
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BreakpointDimensions carries per-breakpoint render dimensions.
type BreakpointDimensions struct {
	Desktop Dimension `json:"desktop"`
	Tablet  Dimension `json:"tablet"`
	Mobile  Dimension `json:"mobile"`
}

// RotationPolicy is timing/animation metadata consumed by the display
// client. The server stores and returns it but never interprets it; when
// PlayMode is MANUAL, DisplayDurationMs is advisory only.
type RotationPolicy struct {
	PlayMode             PlayMode             `json:"playMode"`
	DisplayDurationMs    int                  `json:"displayDurationMs"`
	TransitionDurationMs int                  `json:"transitionDurationMs"`
	AnimationType        AnimationType        `json:"animationType"`
	Dimensions           BreakpointDimensions `json:"dimensions"`
}

// ContentItem is one orderable entry in a group. Payload is an opaque
// blob owned by the rendering client; the engine's invariants never
// depend on its contents. Counters are mutated only through the
// statistics recorder's atomic increments.
type ContentItem struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"groupId"`
	Order      int             `json:"order"`
	IsActive   bool            `json:"isActive"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ViewCount  int64           `json:"viewCount"`
	ClickCount int64           `json:"clickCount"`
}

// ContentGroup is an activatable, orderable collection of items sharing
// one rotation policy.
type ContentGroup struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	IsActive       bool           `json:"isActive"`
	Deletable      bool           `json:"deletable"`
	UsageType      string         `json:"usageType"`
	RotationPolicy RotationPolicy `json:"rotationPolicy"`
	Items          []*ContentItem `json:"items,omitempty"`
}

// Slot maps a stable external position token to a primary group and an
// optional fallback group. Priority disambiguates competing slots on the
// caller's side only, lower value preferred; the resolver does not
// interpret it beyond tie-breaking.
type Slot struct {
	PositionToken   string  `json:"positionToken"`
	PrimaryGroupID  string  `json:"primaryGroupId"`
	FallbackGroupID *string `json:"fallbackGroupId,omitempty"`
	Priority        int     `json:"priority"`
}

// Resolution is the outcome of resolving a position token. A nil Group
// means "nothing to show" and is a normal, cacheable outcome, not an
// error.
type Resolution struct {
	Group          *ContentGroup   `json:"group"`
	Items          []*ContentItem  `json:"items,omitempty"`
	RotationPolicy *RotationPolicy `json:"rotationPolicy,omitempty"`
}

// Empty reports whether the resolution carries no eligible group.
func (r *Resolution) Empty() bool {
	return r == nil || r.Group == nil
}
