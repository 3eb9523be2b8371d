package domain

import "context"

// UserUpdate describes a partial user update. Nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
}

// EventUpdate describes a partial event update. Nil fields are left
// untouched. The registration counter and attendee list are intentionally
// absent: they move together only through RegisterUser and UnregisterUser.
type EventUpdate struct {
	Title       *string
	Category    *string
	Date        *string
	Time        *string
	Location    *string
	Description *string
	Capacity    *int
	Price       *float64
}

// UserRepository is the contract the HTTP layer programs against for users.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, id int64) error
	AddRegisteredEvent(ctx context.Context, userID, eventID int64) error
	RemoveRegisteredEvent(ctx context.Context, userID, eventID int64) error
	ValidatePassword(ctx context.Context, id int64, plain string) bool
	ChangePassword(ctx context.Context, id int64, newPlain string) error
}

// EventRepository is the contract the HTTP layer programs against for events.
type EventRepository interface {
	Create(ctx context.Context, event Event) (*Event, error)
	FindByID(ctx context.Context, id int64) (*Event, error)
	FindAll(ctx context.Context) ([]Event, error)
	FindByCategory(ctx context.Context, category string) ([]Event, error)
	Search(ctx context.Context, term string) ([]Event, error)
	Update(ctx context.Context, id int64, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id int64) error
	RegisterUser(ctx context.Context, eventID, userID int64) (*Event, error)
	UnregisterUser(ctx context.Context, eventID, userID int64) (*Event, error)
	GetUpcomingEvents(ctx context.Context, limit int) ([]Event, error)
	GetPopularEvents(ctx context.Context, limit int) ([]Event, error)
	GetEventsByOrganizer(ctx context.Context, organizerID int64) ([]Event, error)
	GetEventStats(ctx context.Context) (*EventStats, error)
}
