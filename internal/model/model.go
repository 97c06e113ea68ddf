// Package model defines the core domain types for the event RSVP system.
package model

import "time"

// Event represents an event with a fixed seat capacity. Name, date and
// capacity are fixed at creation; registrations are tracked separately by
// the rsvp ledger, never embedded here.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// Rsvp represents one admitted registration. The (EventID, UserID) pair is
// unique: at most one registration per user per event.
type Rsvp struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventView is the read-side projection of an event, including the
// registration counters derived from the ledger.
type EventView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Date          time.Time `json:"date"`
	Capacity      int       `json:"capacity"`
	RsvpCount     int       `json:"rsvp_count"`
	IsFull        bool      `json:"is_full"`
	HasUserRsvped bool      `json:"has_user_rsvped"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Capacity int       `json:"capacity"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
