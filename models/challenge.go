package models

import "time"

type ChallengeStatus string

const (
	ChallengeOpen      ChallengeStatus = "open"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeDeclined  ChallengeStatus = "declined"
	ChallengeExpired   ChallengeStatus = "expired"
)

// Challenge is a direct one-off money/points game between two players,
// outside of any tournament bracket.
type Challenge struct {
	ID           int             `json:"id"`
	RoomCode     string          `json:"room_code"`
	ChallengerID int             `json:"challenger_id"`
	OpponentID   *int            `json:"opponent_id,omitempty"`
	ClubID       *int            `json:"club_id,omitempty"`
	RaceTo       int             `json:"race_to"`
	SpaStake     int             `json:"spa_stake"`
	Status       ChallengeStatus `json:"status"`
	WinnerID     *int            `json:"winner_id,omitempty"`
	ScoreA       *int            `json:"score_a,omitempty"`
	ScoreB       *int            `json:"score_b,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
}
