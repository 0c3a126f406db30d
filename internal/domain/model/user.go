package model

import (
	"time"
)

type Role string

const (
	RoleApplicant Role = "APPLICANT" // participant
	RoleIndustry  Role = "INDUSTRY"  // organizer
)

func (r Role) Valid() bool {
	return r == RoleApplicant || r == RoleIndustry
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Caller is the identity resolved from a bearer token.
type Caller struct {
	UserID string
	Email  string
	Role   Role
}
