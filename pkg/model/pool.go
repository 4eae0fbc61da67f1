package model

import (
	"strings"
	"time"
)

type Kind string

const (
	KindRoom      Kind = "room"
	KindTransport Kind = "transport"
	KindDining    Kind = "dining"
	KindActivity  Kind = "activity"
)

// Kinds lists every pool kind in report order.
var Kinds = []Kind{KindRoom, KindTransport, KindDining, KindActivity}

func (k Kind) Valid() bool {
	switch k {
	case KindRoom, KindTransport, KindDining, KindActivity:
		return true
	}
	return false
}

// ParseKind accepts the singular kind names as well as the plural collection
// names used by the inventory UI ("rooms", "activities").
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "room", "rooms":
		return KindRoom, true
	case "transport", "transports":
		return KindTransport, true
	case "dining", "dinings":
		return KindDining, true
	case "activity", "activities":
		return KindActivity, true
	}
	return "", false
}

type Pool struct {
	ID         string         `json:"id" bson:"id"`
	Kind       Kind           `json:"kind" bson:"kind"`
	Label      string         `json:"label" bson:"label"`
	Capacity   int            `json:"capacity" bson:"capacity"`
	Used       int            `json:"used" bson:"used"`
	Available  int            `json:"available" bson:"available"`
	Attributes map[string]any `json:"attributes,omitempty" bson:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updated_at"`
}

type PoolInput struct {
	Kind       string         `json:"kind" validate:"required,pool_kind"`
	Label      string         `json:"label" validate:"required,nonblank,max=120"`
	Capacity   *int           `json:"capacity" validate:"required,min=0,max=1000000"`
	Attributes map[string]any `json:"attributes,omitempty" validate:"omitempty,max=32"`
}

type AllocationInput struct {
	Delta *int `json:"delta" validate:"required,min=-1000000,max=1000000"`
}

// AllocationEvent describes one applied delta. Negative deltas book units,
// positive deltas release them.
type AllocationEvent struct {
	PoolID             string    `json:"poolId"`
	Delta              int       `json:"delta"`
	ResultingAvailable int       `json:"resultingAvailable"`
	Timestamp          time.Time `json:"timestamp"`
}

type AllocationResult struct {
	Event  AllocationEvent `json:"event"`
	Pool   Pool            `json:"pool"`
	Alerts []Alert         `json:"alerts"`
}
