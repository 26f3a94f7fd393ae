package models

import "time"

// Event is owned by the organizer who created it.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	OrganizerID  string    `json:"organizer"`
	ImageKey     string    `json:"imageKey,omitempty"`
	Participants []string  `json:"participants"`
	Tasks        []string  `json:"tasks"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID is in e.Participants.
func (e *Event) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
