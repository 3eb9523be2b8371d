package domain

import (
	"slices"
	"strings"
	"time"
)

// User represents an account in the system. The password field holds the
// encoded hash produced by the password collaborator; the store persists it
// verbatim and never inspects it.
type User struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Password         string    `json:"password"`
	RegisteredEvents []int64   `json:"registered_events"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. Emails are stored
// normalized so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasRegisteredEvent reports whether the user already holds the given event id.
func (u *User) HasRegisteredEvent(eventID int64) bool {
	return slices.Contains(u.RegisteredEvents, eventID)
}
