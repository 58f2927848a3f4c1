package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationWithdrawn RegistrationStatus = "withdrawn"
)

type Registration struct {
	ID           int                `json:"id"`
	TournamentID int                `json:"tournament_id"`
	UserID       int                `json:"user_id"`
	Status       RegistrationStatus `json:"status"`
	Seed         *int               `json:"seed,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`

	User *User `json:"user,omitempty"`
}
