package sabo

import (
	"fmt"

	"github.com/saboarena/sabo-platform/models"
)

// Generate builds the complete fixed-topology match set for a declared draw
// size. Winners round 1 is seeded from the player list in the order given
// (callers decide seeding or shuffling); every later match starts with empty
// slots and pending status. For a 32 draw the first 16 players form group A,
// the rest group B.
func Generate(tournamentID int, size Size, playerIDs []int) ([]*models.SaboMatch, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("unsupported SABO draw size %d", size)
	}
	if len(playerIDs) != int(size) {
		return nil, fmt.Errorf("exactly %d players required for a SABO-%d draw, got %d", size, size, len(playerIDs))
	}

	var matches []*models.SaboMatch
	for _, stage := range Structure(size) {
		seeds := seedsForStage(stage.Bracket, size, playerIDs)
		for _, r := range stage.Rounds {
			for n := 1; n <= r.Matches; n++ {
				matchNumber := n
				// The second group final is numbered 2 across both groups;
				// the numbering comes from the production schema.
				if r.Round == RoundGroupFinal2 {
					matchNumber = 2
				}
				m := &models.SaboMatch{
					TournamentID: tournamentID,
					BracketType:  string(stage.Bracket),
					RoundNumber:  r.Round,
					MatchNumber:  matchNumber,
					Status:       models.MatchStatusPending,
				}
				if seeds != nil && r.Round == RoundWinners1 {
					p1 := seeds[(n-1)*2]
					p2 := seeds[(n-1)*2+1]
					m.Player1ID = &p1
					m.Player2ID = &p2
					m.Status = models.MatchStatusReady
				}
				matches = append(matches, m)
			}
		}
	}
	return matches, nil
}

// seedsForStage returns the 16 players feeding a winners stage, or nil for
// stages that are populated by advancement.
func seedsForStage(bt BracketType, size Size, playerIDs []int) []int {
	switch {
	case size == Size16 && bt == BracketWinners:
		return playerIDs
	case size == Size32 && bt == BracketGroupAWinners:
		return playerIDs[:16]
	case size == Size32 && bt == BracketGroupBWinners:
		return playerIDs[16:32]
	default:
		return nil
	}
}
