package domain

import (
	"slices"
	"time"
)

// Event represents a bookable event created by an organizer. Date and Time
// are kept as the strings the client submitted ("2006-01-02" and "15:04");
// StartsAt combines them when ordering or deciding whether an event is still
// upcoming.
type Event struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	Capacity        int       `json:"capacity"`
	Price           float64   `json:"price"`
	OrganizerID     int64     `json:"organizer_id"`
	OrganizerName   string    `json:"organizer_name"`
	Registrations   int       `json:"registrations"`
	RegisteredUsers []int64   `json:"registered_users"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// IsUpcoming is derived from the wall clock at query time and is never
	// persisted.
	IsUpcoming bool `json:"is_upcoming,omitempty"`
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// StartsAt parses the event's date and time into a single timestamp. Events
// with an unparseable date sort to the zero time, which keeps them at the
// front of ascending listings instead of failing the whole query.
func (e *Event) StartsAt() time.Time {
	if e.Time != "" {
		if ts, err := time.Parse(dateTimeLayout, e.Date+" "+e.Time); err == nil {
			return ts
		}
	}
	ts, err := time.Parse(dateLayout, e.Date)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Upcoming reports whether the event starts after the given instant.
func (e *Event) Upcoming(now time.Time) bool {
	return now.Before(e.StartsAt())
}

// IsFull reports whether no seats remain.
func (e *Event) IsFull() bool {
	return e.Registrations >= e.Capacity
}

// HasRegisteredUser reports whether the user id is already on the attendee list.
func (e *Event) HasRegisteredUser(userID int64) bool {
	return slices.Contains(e.RegisteredUsers, userID)
}

// EventStats aggregates counts across the whole event collection.
type EventStats struct {
	TotalEvents        int            `json:"total_events"`
	UpcomingEvents     int            `json:"upcoming_events"`
	TotalRegistrations int            `json:"total_registrations"`
	Categories         map[string]int `json:"categories"`
}
