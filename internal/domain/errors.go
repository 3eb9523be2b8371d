package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures. The HTTP layer maps them onto
// status codes; the stores never translate them.
var (
	// ErrNotFound is returned when an operation targets a record that does
	// not exist in the collection.
	ErrNotFound = errors.New("requested resource not found")

	// ErrUserAlreadyExists indicates a sign-up attempt failed because the
	// email address is already present in the system.
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// ErrInvalidCredentials indicates a sign-in attempt failed due to an
	// incorrect email or password combination.
	ErrInvalidCredentials = errors.New("invalid credentials provided")

	// ErrEventFull is returned when a registration would exceed the event's
	// capacity.
	ErrEventFull = errors.New("event has reached its capacity")

	// ErrAlreadyRegistered is returned when the same user registers twice
	// for the same event.
	ErrAlreadyRegistered = errors.New("user already registered for this event")

	// ErrNotRegistered is returned when cancelling a registration that does
	// not exist.
	ErrNotRegistered = errors.New("user is not registered for this event")
)
