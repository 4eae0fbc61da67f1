package model

import "time"

type Guest struct {
	ID                   int64     `json:"id" bson:"id" validate:"min=0,max=9007199254740991"`
	Name                 string    `json:"name" bson:"name" validate:"required,nonblank,max=200"`
	Email                string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone                string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=32"`
	RoomPreference       string    `json:"roomPreference,omitempty" bson:"room_preference,omitempty" validate:"omitempty,max=120"`
	DietaryRequirements  []string  `json:"dietaryRequirements" bson:"dietary_requirements" validate:"max=50,dive,max=100"`
	SpecialNeeds         []string  `json:"specialNeeds" bson:"special_needs" validate:"max=50,dive,max=200"`
	WheelchairAccessible bool      `json:"wheelchairAccessible" bson:"wheelchair_accessible"`
	MobilityAssistance   bool      `json:"mobilityAssistance" bson:"mobility_assistance"`
	HighFloor            bool      `json:"highFloor" bson:"high_floor"`
	GroundFloor          bool      `json:"groundFloor" bson:"ground_floor"`
	QuietRoom            bool      `json:"quietRoom" bson:"quiet_room"`
	Notes                string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updated_at"`
}

type SpecialNeedsSummary struct {
	WheelchairAccessible int `json:"wheelchairAccessible"`
	MobilityAssistance   int `json:"mobilityAssistance"`
	TotalGuests          int `json:"totalGuests"`
	WithSpecialNeeds     int `json:"withSpecialNeeds"`
}

type GuestReport struct {
	TotalGuests         int                 `json:"totalGuests"`
	DietarySummary      map[string]int      `json:"dietarySummary"`
	SpecialNeedsSummary SpecialNeedsSummary `json:"specialNeedsSummary"`
	GuestsList          []Guest             `json:"guestsList"`
	GeneratedAt         time.Time           `json:"generatedAt"`
}
