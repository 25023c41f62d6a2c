package model

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Name         string    `json:"name" bson:"name"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// MissingProfileFields lists the profile fields a user must fill in before
// booking. An empty result means the profile is complete.
func (u *User) MissingProfileFields() []string {
	var missing []string
	if strings.TrimSpace(u.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(u.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(u.Address) == "" {
		missing = append(missing, "address")
	}
	return missing
}

func (u *User) ProfileComplete() bool {
	return len(u.MissingProfileFields()) == 0
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Profile is the user view returned by the users API.
type Profile struct {
	*User
	ProfileComplete bool `json:"profileComplete"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *Profile  `json:"user"`
}

type ProfileUpdate struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Address *string `json:"address,omitempty" validate:"omitempty,min=3,max=300"`
}
