package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	ClubID      *int             `json:"club_id,omitempty"`
	OrganizerID int              `json:"organizer_id"`
	// BracketSize is the declared SABO draw size: 16 or 32.
	BracketSize int              `json:"bracket_size"`
	RegDate     time.Time        `json:"reg_date"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Status      TournamentStatus `json:"status"`
	ChampionID  *int             `json:"champion_id,omitempty"`
	BannerKey   *string          `json:"-"`
	BannerURL   *string          `json:"banner_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`

	// Optional related entities, loaded on demand.
	Organizer     *User          `json:"organizer,omitempty"`
	Club          *Club          `json:"club,omitempty"`
	Registrations []Registration `json:"registrations,omitempty"`
	Matches       []SaboMatch    `json:"matches,omitempty"`
}
