package models

import "time"

// PlayerRanking is one row of the SPA/ELO leaderboard.
type PlayerRanking struct {
	UserID      int       `json:"user_id"`
	EloRating   int       `json:"elo_rating"`
	SpaPoints   int       `json:"spa_points"`
	Rank        string    `json:"rank"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	WinStreak   int       `json:"win_streak"`
	UpdatedAt   time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}
