package models

// Activity is an extracurricular offering with its participant roster.
type Activity struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants" validate:"gte=1"`
	Participants    []string `json:"participants" validate:"dive,required"`
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	for _, participant := range a.Participants {
		if participant == email {
			return true
		}
	}
	return false
}

// Clone returns a copy whose roster does not alias the receiver's.
func (a Activity) Clone() Activity {
	clone := a
	clone.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return clone
}
