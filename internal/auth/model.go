// File: internal/auth/model.go
package auth

import (
	"sipaling_preloved_client/internal/transport"
)

// User is the domain model of the logged-in account.
type User struct {
	ID              int
	Name            string
	Username        *string
	Email           string
	PhoneNumber     *string
	Gender          *string
	ProfileImageURL *string
}

// --- Wire DTOs ---

// UserDTO is the wire shape of a user as the backend sends it.
type UserDTO struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Username        *string `json:"username,omitempty"`
	Email           string  `json:"email"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	ProfileImageURL *string `json:"profile_image,omitempty"`
}

// ToDomain maps the wire user to the domain model. Pure function of the DTO.
func (d UserDTO) ToDomain() User {
	return User{
		ID:              d.ID,
		Name:            d.Name,
		Username:        d.Username,
		Email:           d.Email,
		PhoneNumber:     d.PhoneNumber,
		Gender:          d.Gender,
		ProfileImageURL: d.ProfileImageURL,
	}
}

// authPayloadDTO is the data payload of login and register responses.
type authPayloadDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// --- Request DTOs ---

// LoginRequest defines the credentials for email/password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest defines the fields for account creation.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	PhoneNumber          string `json:"phone_number" validate:"omitempty,max=20"`
}

// UpdateProfileRequest defines a profile edit. A non-nil Image makes the
// call multipart with a POST + _method=PUT override.
type UpdateProfileRequest struct {
	Name        string  `validate:"required,max=100"`
	Username    *string `validate:"omitempty,max=50"`
	PhoneNumber *string `validate:"omitempty,max=20"`
	Gender      *string `validate:"omitempty,oneof=male female"`
	Image       *transport.FilePart
}

// formFields flattens the request into multipart string parts.
func (r UpdateProfileRequest) formFields() map[string]string {
	fields := map[string]string{"name": r.Name}
	if r.Username != nil {
		fields["username"] = *r.Username
	}
	if r.PhoneNumber != nil {
		fields["phone_number"] = *r.PhoneNumber
	}
	if r.Gender != nil {
		fields["gender"] = *r.Gender
	}
	return fields
}
