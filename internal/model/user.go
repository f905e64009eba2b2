package model

import "time"

// User types.
const (
	UserTypeClient     = "client"
	UserTypeFreelancer = "freelancer"
	UserTypeBusiness   = "business"
	UserTypeAdmin      = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	UserType     string    `json:"user_type"` // client / freelancer / business / admin
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
