package sabo

import (
	"fmt"

	"github.com/saboarena/sabo-platform/models"
)

// ValidationResult reports every structural discrepancy found in a bracket.
// Validation never fails hard: callers log the errors and keep rendering.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateStructure checks an organized match set against the fixed topology
// of its declared draw size: total count, per-stage counts, per-round counts
// and round gaps. One human-readable error is reported per discrepancy.
func ValidateStructure(o *Organized, size Size) ValidationResult {
	var errs []string

	expectedTotal := TotalMatches16
	if size == Size32 {
		expectedTotal = TotalMatches32
	}
	if total := o.Total(); total != expectedTotal {
		errs = append(errs, fmt.Sprintf("expected %d matches, found %d", expectedTotal, total))
	}

	for _, stage := range Structure(size) {
		bucket := o.Bucket(stage.Bracket)
		if len(bucket) == 0 {
			errs = append(errs, fmt.Sprintf("%s stage is missing", stage.Bracket))
			continue
		}
		if len(bucket) != stage.Total() {
			errs = append(errs, fmt.Sprintf("%s should have %d matches, found %d", stage.Bracket, stage.Total(), len(bucket)))
		}

		byRound := make(map[int]int)
		for _, m := range bucket {
			byRound[m.RoundNumber]++
		}
		for _, r := range stage.Rounds {
			switch got := byRound[r.Round]; {
			case got == 0:
				errs = append(errs, fmt.Sprintf("%s round %d is missing", stage.Bracket, r.Round))
			case got != r.Matches:
				errs = append(errs, fmt.Sprintf("%s round %d should have %d matches, found %d", stage.Bracket, r.Round, r.Matches, got))
			}
			delete(byRound, r.Round)
		}
		for round, count := range byRound {
			errs = append(errs, fmt.Sprintf("%s contains %d matches in unexpected round %d", stage.Bracket, count, round))
		}
	}

	for _, m := range o.Unrecognized {
		errs = append(errs, fmt.Sprintf("match %d has unrecognized bracket type %q", m.ID, m.BracketType))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateCompleted checks the terminal-state invariants of a single match:
// a completed match must carry both scores, a winner distinct from the loser,
// and a strictly higher score for the winner. Ties are never a valid state.
func ValidateCompleted(m *models.SaboMatch) error {
	if m.Status != models.MatchStatusCompleted {
		return nil
	}
	if m.WinnerID == nil || m.LoserID == nil {
		return fmt.Errorf("completed match %d is missing winner or loser", m.ID)
	}
	if *m.WinnerID == *m.LoserID {
		return fmt.Errorf("completed match %d has identical winner and loser", m.ID)
	}
	if m.ScorePlayer1 == nil || m.ScorePlayer2 == nil {
		return fmt.Errorf("completed match %d is missing scores", m.ID)
	}
	winnerScore, loserScore := *m.ScorePlayer1, *m.ScorePlayer2
	if m.Player2ID != nil && *m.WinnerID == *m.Player2ID {
		winnerScore, loserScore = loserScore, winnerScore
	}
	if winnerScore <= loserScore {
		return fmt.Errorf("completed match %d has winner score %d not above loser score %d", m.ID, winnerScore, loserScore)
	}
	return nil
}
