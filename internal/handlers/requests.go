package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement
// Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the payload for rotating a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,max=50"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string  `json:"time" validate:"required,datetime=15:04"`
	Location    string  `json:"location" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Capacity    int     `json:"capacity" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// UpdateEventRequest is the payload for a partial event update. Absent
// fields are left untouched.
type UpdateEventRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Category    *string  `json:"category" validate:"omitempty,max=50"`
	Date        *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        *string  `json:"time" validate:"omitempty,datetime=15:04"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Capacity    *int     `json:"capacity" validate:"omitempty,gt=0"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}
