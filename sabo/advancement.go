package sabo

import "github.com/saboarena/sabo-platform/models"

// Slot names a player position inside a match.
type Slot string

const (
	SlotPlayer1 Slot = "player1"
	SlotPlayer2 Slot = "player2"
)

// Coord addresses one match inside the fixed topology.
type Coord struct {
	Bracket BracketType
	Round   int
	Match   int
}

// Destination is a slot of a downstream match.
type Destination struct {
	Coord
	Slot Slot
}

// rule holds the advancement destinations of one match. A nil destination
// means elimination (for the loser) or the champion spot (for the winner of
// the last match).
type rule struct {
	winner *Destination
	loser  *Destination
}

// SlotAssignment instructs the caller to place a player into a slot of a
// specific downstream match. The resolver only computes assignments; writing
// them is the match service's job.
type SlotAssignment struct {
	TargetMatchID int   `json:"target_match_id"`
	Target        Coord `json:"target"`
	Slot          Slot  `json:"slot"`
	PlayerID      int   `json:"player_id"`
}

func dest(bt BracketType, round, match int, slot Slot) *Destination {
	return &Destination{Coord: Coord{Bracket: bt, Round: round, Match: match}, Slot: slot}
}

// topology16 enumerates the destination of every one of the 27 matches of a
// 16-player draw. The branch structure is format-specific data, not a
// formula: round 1 losers drop to branch A, round 2 losers to branch B,
// round 3 losers are out (they lost to a semifinalist). Branch A's champion
// meets the first winners finalist, branch B's champion the second.
var topology16 = map[Coord]rule{
	// Winners round 1: winners pair up into round 2, losers seed branch A.
	{BracketWinners, 1, 1}: {winner: dest(BracketWinners, 2, 1, SlotPlayer1), loser: dest(BracketLosersA, 101, 1, SlotPlayer1)},
	{BracketWinners, 1, 2}: {winner: dest(BracketWinners, 2, 1, SlotPlayer2), loser: dest(BracketLosersA, 101, 1, SlotPlayer2)},
	{BracketWinners, 1, 3}: {winner: dest(BracketWinners, 2, 2, SlotPlayer1), loser: dest(BracketLosersA, 101, 2, SlotPlayer1)},
	{BracketWinners, 1, 4}: {winner: dest(BracketWinners, 2, 2, SlotPlayer2), loser: dest(BracketLosersA, 101, 2, SlotPlayer2)},
	{BracketWinners, 1, 5}: {winner: dest(BracketWinners, 2, 3, SlotPlayer1), loser: dest(BracketLosersA, 101, 3, SlotPlayer1)},
	{BracketWinners, 1, 6}: {winner: dest(BracketWinners, 2, 3, SlotPlayer2), loser: dest(BracketLosersA, 101, 3, SlotPlayer2)},
	{BracketWinners, 1, 7}: {winner: dest(BracketWinners, 2, 4, SlotPlayer1), loser: dest(BracketLosersA, 101, 4, SlotPlayer1)},
	{BracketWinners, 1, 8}: {winner: dest(BracketWinners, 2, 4, SlotPlayer2), loser: dest(BracketLosersA, 101, 4, SlotPlayer2)},

	// Winners round 2: losers seed branch B.
	{BracketWinners, 2, 1}: {winner: dest(BracketWinners, 3, 1, SlotPlayer1), loser: dest(BracketLosersB, 201, 1, SlotPlayer1)},
	{BracketWinners, 2, 2}: {winner: dest(BracketWinners, 3, 1, SlotPlayer2), loser: dest(BracketLosersB, 201, 1, SlotPlayer2)},
	{BracketWinners, 2, 3}: {winner: dest(BracketWinners, 3, 2, SlotPlayer1), loser: dest(BracketLosersB, 201, 2, SlotPlayer1)},
	{BracketWinners, 2, 4}: {winner: dest(BracketWinners, 3, 2, SlotPlayer2), loser: dest(BracketLosersB, 201, 2, SlotPlayer2)},

	// Winners round 3: the two finalists take the first slot of each
	// semifinal; losers are eliminated.
	{BracketWinners, 3, 1}: {winner: dest(BracketSemifinals, 250, 1, SlotPlayer1)},
	{BracketWinners, 3, 2}: {winner: dest(BracketSemifinals, 250, 2, SlotPlayer1)},

	// Losers branch A, rounds 101-103.
	{BracketLosersA, 101, 1}: {winner: dest(BracketLosersA, 102, 1, SlotPlayer1)},
	{BracketLosersA, 101, 2}: {winner: dest(BracketLosersA, 102, 1, SlotPlayer2)},
	{BracketLosersA, 101, 3}: {winner: dest(BracketLosersA, 102, 2, SlotPlayer1)},
	{BracketLosersA, 101, 4}: {winner: dest(BracketLosersA, 102, 2, SlotPlayer2)},
	{BracketLosersA, 102, 1}: {winner: dest(BracketLosersA, 103, 1, SlotPlayer1)},
	{BracketLosersA, 102, 2}: {winner: dest(BracketLosersA, 103, 1, SlotPlayer2)},
	{BracketLosersA, 103, 1}: {winner: dest(BracketSemifinals, 250, 1, SlotPlayer2)},

	// Losers branch B, rounds 201-202.
	{BracketLosersB, 201, 1}: {winner: dest(BracketLosersB, 202, 1, SlotPlayer1)},
	{BracketLosersB, 201, 2}: {winner: dest(BracketLosersB, 202, 1, SlotPlayer2)},
	{BracketLosersB, 202, 1}: {winner: dest(BracketSemifinals, 250, 2, SlotPlayer2)},

	// Semifinals feed the final; the final is terminal.
	{BracketSemifinals, 250, 1}: {winner: dest(BracketFinal, 300, 1, SlotPlayer1)},
	{BracketSemifinals, 250, 2}: {winner: dest(BracketFinal, 300, 1, SlotPlayer2)},
	{BracketFinal, 300, 1}:      {},
}

// groupBrackets is the stage naming of one 16-player group inside a 32 draw.
type groupBrackets struct {
	winners, losersA, losersB, final BracketType
}

var (
	groupA = groupBrackets{BracketGroupAWinners, BracketGroupALosersA, BracketGroupALosersB, BracketGroupAFinal}
	groupB = groupBrackets{BracketGroupBWinners, BracketGroupBLosersA, BracketGroupBLosersB, BracketGroupBFinal}
)

// addGroupTopology enumerates the in-group destinations of a 32-player group.
// A group plays like a 16 draw except that the post-winners convergence is a
// pair of group finals (rounds 250/251) instead of semifinals, producing the
// two cross-bracket qualifiers.
func addGroupTopology(t map[Coord]rule, g groupBrackets) {
	for n := 1; n <= 8; n++ {
		next := (n + 1) / 2
		slot := slotForMatchNumber(n)
		t[Coord{g.winners, 1, n}] = rule{
			winner: dest(g.winners, 2, next, slot),
			loser:  dest(g.losersA, 101, next, slot),
		}
	}
	for n := 1; n <= 4; n++ {
		next := (n + 1) / 2
		slot := slotForMatchNumber(n)
		t[Coord{g.winners, 2, n}] = rule{
			winner: dest(g.winners, 3, next, slot),
			loser:  dest(g.losersB, 201, next, slot),
		}
		t[Coord{g.losersA, 101, n}] = rule{winner: dest(g.losersA, 102, next, slot)}
	}
	t[Coord{g.winners, 3, 1}] = rule{winner: dest(g.final, RoundGroupFinal1, 1, SlotPlayer1)}
	t[Coord{g.winners, 3, 2}] = rule{winner: dest(g.final, RoundGroupFinal2, 2, SlotPlayer1)}

	t[Coord{g.losersA, 102, 1}] = rule{winner: dest(g.losersA, 103, 1, SlotPlayer1)}
	t[Coord{g.losersA, 102, 2}] = rule{winner: dest(g.losersA, 103, 1, SlotPlayer2)}
	t[Coord{g.losersA, 103, 1}] = rule{winner: dest(g.final, RoundGroupFinal1, 1, SlotPlayer2)}

	t[Coord{g.losersB, 201, 1}] = rule{winner: dest(g.losersB, 202, 1, SlotPlayer1)}
	t[Coord{g.losersB, 201, 2}] = rule{winner: dest(g.losersB, 202, 1, SlotPlayer2)}
	t[Coord{g.losersB, 202, 1}] = rule{winner: dest(g.final, RoundGroupFinal2, 2, SlotPlayer2)}
}

// topology32: two groups plus the cross bracket. Cross semifinal 1 pits the
// group A winner against the group B runner-up, semifinal 2 the reverse.
var topology32 = func() map[Coord]rule {
	t := make(map[Coord]rule, TotalMatches32)
	addGroupTopology(t, groupA)
	addGroupTopology(t, groupB)

	t[Coord{BracketGroupAFinal, RoundGroupFinal1, 1}] = rule{winner: dest(BracketCrossSemis, RoundCrossSemis, 1, SlotPlayer1)}
	t[Coord{BracketGroupAFinal, RoundGroupFinal2, 2}] = rule{winner: dest(BracketCrossSemis, RoundCrossSemis, 2, SlotPlayer2)}
	t[Coord{BracketGroupBFinal, RoundGroupFinal1, 1}] = rule{winner: dest(BracketCrossSemis, RoundCrossSemis, 2, SlotPlayer1)}
	t[Coord{BracketGroupBFinal, RoundGroupFinal2, 2}] = rule{winner: dest(BracketCrossSemis, RoundCrossSemis, 1, SlotPlayer2)}

	t[Coord{BracketCrossSemis, RoundCrossSemis, 1}] = rule{winner: dest(BracketCrossFinal, RoundCrossFinal, 1, SlotPlayer1)}
	t[Coord{BracketCrossSemis, RoundCrossSemis, 2}] = rule{winner: dest(BracketCrossFinal, RoundCrossFinal, 1, SlotPlayer2)}
	t[Coord{BracketCrossFinal, RoundCrossFinal, 1}] = rule{}
	return t
}()

func slotForMatchNumber(n int) Slot {
	if n%2 == 1 {
		return SlotPlayer1
	}
	return SlotPlayer2
}

func topology(size Size) map[Coord]rule {
	if size == Size32 {
		return topology32
	}
	return topology16
}

// Resolve computes the slot assignments triggered by a completed match: where
// the winner advances and, for winners-bracket matches, where the loser
// drops. Terminal matches, matches without a recorded winner and matches
// outside the topology yield an empty set, never an error. Targets that are
// missing from the snapshot are skipped; the structure validator reports
// those separately.
func Resolve(m *models.SaboMatch, o *Organized) []SlotAssignment {
	if m == nil || m.WinnerID == nil {
		return nil
	}
	r, ok := topology(o.Size)[Coord{BracketType(m.BracketType), m.RoundNumber, m.MatchNumber}]
	if !ok {
		return nil
	}

	var out []SlotAssignment
	if r.winner != nil {
		if target := o.Find(r.winner.Bracket, r.winner.Round, r.winner.Match); target != nil {
			out = append(out, SlotAssignment{
				TargetMatchID: target.ID,
				Target:        r.winner.Coord,
				Slot:          r.winner.Slot,
				PlayerID:      *m.WinnerID,
			})
		}
	}
	if r.loser != nil && m.LoserID != nil {
		if target := o.Find(r.loser.Bracket, r.loser.Round, r.loser.Match); target != nil {
			out = append(out, SlotAssignment{
				TargetMatchID: target.ID,
				Target:        r.loser.Coord,
				Slot:          r.loser.Slot,
				PlayerID:      *m.LoserID,
			})
		}
	}
	return out
}

// IsChampionMatch reports whether the match decides the tournament.
func IsChampionMatch(m *models.SaboMatch, size Size) bool {
	bt := BracketType(m.BracketType)
	if size == Size32 {
		return bt == BracketCrossFinal && m.RoundNumber == RoundCrossFinal
	}
	return bt == BracketFinal && m.RoundNumber == RoundFinal
}
