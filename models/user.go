package models

import "time"

type User struct {
	ID           int       `json:"id"`
	FullName     string    `json:"full_name"`
	DisplayName  *string   `json:"display_name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	ClubID       *int      `json:"club_id,omitempty"`
	VerifiedRank *string   `json:"verified_rank,omitempty"`
	AvatarKey    *string   `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Roles recognized by the authorization middleware.
const (
	RolePlayer    = "player"
	RoleClubAdmin = "club_admin"
	RoleAdmin     = "admin"
)
