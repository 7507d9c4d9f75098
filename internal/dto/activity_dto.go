package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/noah-isme/mergington-api/internal/models"
)

// ActivityResponse is the public view of one activity, keyed by name in listings.
type ActivityResponse struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// NewActivityResponse maps the activity model to its response view.
func NewActivityResponse(activity models.Activity) ActivityResponse {
	participants := activity.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityResponse{
		Description:     activity.Description,
		Schedule:        activity.Schedule,
		MaxParticipants: activity.MaxParticipants,
		Participants:    participants,
	}
}

// ActivityCatalogResponse maps activity names to their details. It encodes as a
// JSON object whose keys follow catalog order.
type ActivityCatalogResponse struct {
	names []string
	items map[string]ActivityResponse
}

// NewActivityCatalogResponse builds the listing in the order given.
func NewActivityCatalogResponse(activities []models.Activity) ActivityCatalogResponse {
	catalog := ActivityCatalogResponse{
		names: make([]string, 0, len(activities)),
		items: make(map[string]ActivityResponse, len(activities)),
	}
	for _, activity := range activities {
		if _, exists := catalog.items[activity.Name]; !exists {
			catalog.names = append(catalog.names, activity.Name)
		}
		catalog.items[activity.Name] = NewActivityResponse(activity)
	}
	return catalog
}

// Names returns activity names in catalog order.
func (r ActivityCatalogResponse) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the entry for name.
func (r ActivityCatalogResponse) Get(name string) (ActivityResponse, bool) {
	item, ok := r.items[name]
	return item, ok
}

// Len returns the number of activities.
func (r ActivityCatalogResponse) Len() int {
	return len(r.names)
}

// MarshalJSON writes the catalog as an ordered JSON object.
func (r ActivityCatalogResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.items[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SignupRequest identifies a roster change request.
type SignupRequest struct {
	Activity string `validate:"required"`
	Email    string `validate:"required"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a fixed error detail string.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RosterChangeResponse is one audit entry in an activity's history.
type RosterChangeResponse struct {
	ID            uint                   `json:"id"`
	Email         string                 `json:"email"`
	Action        string                 `json:"action"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NewRosterChangeResponse maps the audit model to its response view.
func NewRosterChangeResponse(change models.RosterChange) RosterChangeResponse {
	return RosterChangeResponse{
		ID:            change.ID,
		Email:         change.Email,
		Action:        change.Action,
		CorrelationID: change.CorrelationID,
		Metadata:      change.Metadata,
		CreatedAt:     change.CreatedAt,
	}
}

// ActivityHistoryResponse lists roster changes for one activity, newest first.
type ActivityHistoryResponse struct {
	Activity string                 `json:"activity"`
	Items    []RosterChangeResponse `json:"items"`
}
