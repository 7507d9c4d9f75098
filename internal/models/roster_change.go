package models

import (
	"time"

	"gorm.io/datatypes"
)

// Roster change actions.
const (
	RosterActionSignup     = "signup"
	RosterActionUnregister = "unregister"
)

// RosterChange is an append-only audit entry for a signup or unregistration.
type RosterChange struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Activity      string            `gorm:"size:128;not null;index" json:"activity"`
	Email         string            `gorm:"size:255;not null" json:"email"`
	Action        string            `gorm:"size:32;not null" json:"action"`
	CorrelationID string            `gorm:"size:64" json:"correlation_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}
