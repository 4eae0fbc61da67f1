package model

import "time"

type AlertType string

const (
	AlertCapacityCritical AlertType = "capacity_critical"
	AlertCapacityWarning  AlertType = "capacity_warning"
	AlertGuestAdded       AlertType = "guest_added"
	AlertPreferenceUpdate AlertType = "preference_update"
	AlertGuestRemoved     AlertType = "guest_removed"
)

type Alert struct {
	ID         string    `json:"id" bson:"id"`
	Type       AlertType `json:"type" bson:"type"`
	Title      string    `json:"title" bson:"title"`
	Message    string    `json:"message" bson:"message"`
	Resource   string    `json:"resource,omitempty" bson:"resource,omitempty"`
	ResourceID string    `json:"resourceId,omitempty" bson:"resource_id,omitempty"`
	GuestName  string    `json:"guestName,omitempty" bson:"guest_name,omitempty"`
	CreatedAt  time.Time `json:"timestamp" bson:"created_at"`
}
