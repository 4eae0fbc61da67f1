package model

import "time"

// Scope is one event's inventory namespace. Pools, alerts and guests are
// owned by exactly one scope.
type Scope struct {
	ID        string    `json:"eventId" bson:"id" validate:"required,scope_id"`
	Name      string    `json:"eventName" bson:"name" validate:"required,nonblank,max=200"`
	Date      string    `json:"eventDate,omitempty" bson:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type KindSummary struct {
	Pools     int `json:"pools"`
	Total     int `json:"total"`
	Used      int `json:"used"`
	Available int `json:"available"`
}
