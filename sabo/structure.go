// Package sabo implements the SABO double-elimination bracket format used by
// the platform: a fixed topology for 16 or 32 players with two losers
// branches feeding separate semifinal slots.
//
// Round numbering is inherited from the production database and is part of
// the format: winners rounds are 1-3, losers branch A is 101-103, losers
// branch B is 201-202, semifinals are round 250 and the final is round 300.
// The 32-player variant runs two independent 16-player groups whose group
// finals sit on rounds 250/251, then converges in cross-bracket semifinals
// (round 350) and a cross final (round 400).
package sabo

// BracketType names the stage a match belongs to.
type BracketType string

const (
	BracketWinners    BracketType = "winners"
	BracketLosersA    BracketType = "losers_a"
	BracketLosersB    BracketType = "losers_b"
	BracketSemifinals BracketType = "semifinals"
	BracketFinal      BracketType = "final"

	BracketGroupAWinners BracketType = "group_a_winners"
	BracketGroupALosersA BracketType = "group_a_losers_a"
	BracketGroupALosersB BracketType = "group_a_losers_b"
	BracketGroupAFinal   BracketType = "group_a_final"
	BracketGroupBWinners BracketType = "group_b_winners"
	BracketGroupBLosersA BracketType = "group_b_losers_a"
	BracketGroupBLosersB BracketType = "group_b_losers_b"
	BracketGroupBFinal   BracketType = "group_b_final"
	BracketCrossSemis    BracketType = "cross_semifinals"
	BracketCrossFinal    BracketType = "cross_final"
)

// Size is the declared draw size of a SABO tournament.
type Size int

const (
	Size16 Size = 16
	Size32 Size = 32
)

// Valid reports whether the size is one of the supported SABO draws.
func (s Size) Valid() bool {
	return s == Size16 || s == Size32
}

// Round numbers fixed by the format.
const (
	RoundWinners1 = 1
	RoundWinners2 = 2
	RoundWinners3 = 3

	RoundLosersA1 = 101
	RoundLosersA2 = 102
	RoundLosersA3 = 103

	RoundLosersB1 = 201
	RoundLosersB2 = 202

	RoundSemifinals  = 250
	RoundFinal       = 300
	RoundGroupFinal1 = 250
	RoundGroupFinal2 = 251
	RoundCrossSemis  = 350
	RoundCrossFinal  = 400
)

// RoundSpec is the expected number of matches in one round of a stage.
type RoundSpec struct {
	Round   int
	Matches int
}

// StageSpec is the expected shape of one bracket stage.
type StageSpec struct {
	Bracket BracketType
	Rounds  []RoundSpec
}

// Total returns the number of matches the stage must contain.
func (s StageSpec) Total() int {
	n := 0
	for _, r := range s.Rounds {
		n += r.Matches
	}
	return n
}

// TotalMatches16 and TotalMatches32 are the fixed match counts per draw.
const (
	TotalMatches16 = 27
	TotalMatches32 = 55
)

var structure16 = []StageSpec{
	{Bracket: BracketWinners, Rounds: []RoundSpec{{RoundWinners1, 8}, {RoundWinners2, 4}, {RoundWinners3, 2}}},
	{Bracket: BracketLosersA, Rounds: []RoundSpec{{RoundLosersA1, 4}, {RoundLosersA2, 2}, {RoundLosersA3, 1}}},
	{Bracket: BracketLosersB, Rounds: []RoundSpec{{RoundLosersB1, 2}, {RoundLosersB2, 1}}},
	{Bracket: BracketSemifinals, Rounds: []RoundSpec{{RoundSemifinals, 2}}},
	{Bracket: BracketFinal, Rounds: []RoundSpec{{RoundFinal, 1}}},
}

var structure32 = []StageSpec{
	{Bracket: BracketGroupAWinners, Rounds: []RoundSpec{{RoundWinners1, 8}, {RoundWinners2, 4}, {RoundWinners3, 2}}},
	{Bracket: BracketGroupALosersA, Rounds: []RoundSpec{{RoundLosersA1, 4}, {RoundLosersA2, 2}, {RoundLosersA3, 1}}},
	{Bracket: BracketGroupALosersB, Rounds: []RoundSpec{{RoundLosersB1, 2}, {RoundLosersB2, 1}}},
	{Bracket: BracketGroupAFinal, Rounds: []RoundSpec{{RoundGroupFinal1, 1}, {RoundGroupFinal2, 1}}},
	{Bracket: BracketGroupBWinners, Rounds: []RoundSpec{{RoundWinners1, 8}, {RoundWinners2, 4}, {RoundWinners3, 2}}},
	{Bracket: BracketGroupBLosersA, Rounds: []RoundSpec{{RoundLosersA1, 4}, {RoundLosersA2, 2}, {RoundLosersA3, 1}}},
	{Bracket: BracketGroupBLosersB, Rounds: []RoundSpec{{RoundLosersB1, 2}, {RoundLosersB2, 1}}},
	{Bracket: BracketGroupBFinal, Rounds: []RoundSpec{{RoundGroupFinal1, 1}, {RoundGroupFinal2, 1}}},
	{Bracket: BracketCrossSemis, Rounds: []RoundSpec{{RoundCrossSemis, 2}}},
	{Bracket: BracketCrossFinal, Rounds: []RoundSpec{{RoundCrossFinal, 1}}},
}

// Structure returns the expected stage layout for a draw size.
// The returned slice must not be mutated.
func Structure(size Size) []StageSpec {
	switch size {
	case Size32:
		return structure32
	default:
		return structure16
	}
}

// Brackets returns the recognized bracket types for a draw size, in display order.
func Brackets(size Size) []BracketType {
	specs := Structure(size)
	out := make([]BracketType, len(specs))
	for i, s := range specs {
		out[i] = s.Bracket
	}
	return out
}
