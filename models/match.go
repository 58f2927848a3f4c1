package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusReady     MatchStatus = "ready"
	MatchStatusCompleted MatchStatus = "completed"
)

// SaboMatch is one game of a SABO bracket. Player slots stay nil until the
// feeder matches complete; scores and winner/loser are set on completion.
type SaboMatch struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	RoundNumber  int         `json:"round_number"`
	MatchNumber  int         `json:"match_number"`
	BracketType  string      `json:"bracket_type"`
	Player1ID    *int        `json:"player1_id,omitempty"`
	Player2ID    *int        `json:"player2_id,omitempty"`
	ScorePlayer1 *int        `json:"score_player1,omitempty"`
	ScorePlayer2 *int        `json:"score_player2,omitempty"`
	Status       MatchStatus `json:"status"`
	WinnerID     *int        `json:"winner_id,omitempty"`
	LoserID      *int        `json:"loser_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Player1 *User `json:"player1,omitempty"`
	Player2 *User `json:"player2,omitempty"`
}

// IsReady reports whether both slots are filled and the match has not been scored.
func (m *SaboMatch) IsReady() bool {
	return m.Player1ID != nil && m.Player2ID != nil && m.Status != MatchStatusCompleted
}
