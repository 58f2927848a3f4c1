package sabo

import (
	"fmt"
	"math"
)

// StageProgress is the completed/total match count of one stage.
type StageProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (p StageProgress) done() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// StageBreakdown groups progress per bracket stage. For the 32-player draw
// the two groups are folded together per stage and GroupFinals is set;
// Semifinals/Final then refer to the cross-bracket stages.
type StageBreakdown struct {
	Winners     StageProgress  `json:"winners"`
	LosersA     StageProgress  `json:"losers_a"`
	LosersB     StageProgress  `json:"losers_b"`
	Semifinals  StageProgress  `json:"semifinals"`
	Final       StageProgress  `json:"final"`
	GroupFinals *StageProgress `json:"group_finals,omitempty"`
}

// TournamentProgress is a derived view over the bracket snapshot. It is
// recomputed on every read and never mutated directly.
type TournamentProgress struct {
	TotalMatches       int            `json:"total_matches"`
	CompletedMatches   int            `json:"completed_matches"`
	ProgressPercentage int            `json:"progress_percentage"`
	CurrentStage       string         `json:"current_stage"`
	StageBreakdown     StageBreakdown `json:"stage_breakdown"`
	NextActions        []string       `json:"next_actions"`
}

// Progress computes completion metrics and the user-facing stage label for a
// bracket snapshot.
func Progress(o *Organized) TournamentProgress {
	breakdown := buildBreakdown(o)

	total := o.Total()
	completed := completedCount(o.All()) + completedCount(o.Unrecognized)

	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return TournamentProgress{
		TotalMatches:       total,
		CompletedMatches:   completed,
		ProgressPercentage: pct,
		CurrentStage:       currentStage(o, breakdown),
		StageBreakdown:     breakdown,
		NextActions:        nextActions(o, breakdown),
	}
}

func buildBreakdown(o *Organized) StageBreakdown {
	if o.Size == Size32 {
		gf := stageOf(o, BracketGroupAFinal, BracketGroupBFinal)
		return StageBreakdown{
			Winners:     stageOf(o, BracketGroupAWinners, BracketGroupBWinners),
			LosersA:     stageOf(o, BracketGroupALosersA, BracketGroupBLosersA),
			LosersB:     stageOf(o, BracketGroupALosersB, BracketGroupBLosersB),
			Semifinals:  stageOf(o, BracketCrossSemis),
			Final:       stageOf(o, BracketCrossFinal),
			GroupFinals: &gf,
		}
	}
	return StageBreakdown{
		Winners:    stageOf(o, BracketWinners),
		LosersA:    stageOf(o, BracketLosersA),
		LosersB:    stageOf(o, BracketLosersB),
		Semifinals: stageOf(o, BracketSemifinals),
		Final:      stageOf(o, BracketFinal),
	}
}

func stageOf(o *Organized, brackets ...BracketType) StageProgress {
	var p StageProgress
	for _, bt := range brackets {
		bucket := o.Bucket(bt)
		p.Total += len(bucket)
		p.Completed += completedCount(bucket)
	}
	return p
}

// currentStage derives the user-facing stage label through a fixed precedence
// chain. The order of the checks is part of the product behavior and must not
// be rearranged. "Grand Final" labels the stage after the semifinals: once
// both semifinals are done the final is the active match.
func currentStage(o *Organized, b StageBreakdown) string {
	if o.Total() == 0 {
		return "Not Started"
	}

	switch {
	case b.Final.done():
		return "Tournament Complete"
	case b.Semifinals.done():
		return "Grand Final"
	case o.Size == Size32 && b.GroupFinals != nil && b.GroupFinals.done():
		return "Cross Semifinals"
	case b.Winners.done():
		switch {
		case !b.LosersA.done():
			return "Losers Branch A"
		case !b.LosersB.done():
			return "Losers Branch B"
		case o.Size == Size32:
			return "Group Finals"
		default:
			return "Semifinals"
		}
	default:
		return winnersRoundLabel(o)
	}
}

func winnersRoundLabel(o *Organized) string {
	winners := []BracketType{BracketWinners}
	if o.Size == Size32 {
		winners = []BracketType{BracketGroupAWinners, BracketGroupBWinners}
	}
	for _, round := range []int{RoundWinners1, RoundWinners2, RoundWinners3} {
		for _, bt := range winners {
			matches := o.Round(bt, round)
			if completedCount(matches) < len(matches) {
				return fmt.Sprintf("Winners Round %d", round)
			}
		}
	}
	return "Winners Round 3"
}

// nextActions lists advisory follow-ups: one per match currently ready for a
// score, plus a stage-level hint. Purely informational.
func nextActions(o *Organized, b StageBreakdown) []string {
	var actions []string

	switch {
	case b.Final.done():
		// Nothing left to do.
	case b.Semifinals.done():
		actions = append(actions, "Complete the Grand Final")
	case b.Winners.done() && b.LosersA.done() && b.LosersB.done() && o.Size == Size16:
		actions = append(actions, "Start Semifinals (4 finalists)")
	}

	for _, m := range o.ReadyMatches() {
		actions = append(actions, fmt.Sprintf("Submit score for %s round %d match %d",
			StageLabel(BracketType(m.BracketType)), m.RoundNumber, m.MatchNumber))
	}
	return actions
}

// StageLabel is the display name of a bracket stage.
func StageLabel(bt BracketType) string {
	switch bt {
	case BracketWinners, BracketGroupAWinners, BracketGroupBWinners:
		return "Winners"
	case BracketLosersA, BracketGroupALosersA, BracketGroupBLosersA:
		return "Losers Branch A"
	case BracketLosersB, BracketGroupALosersB, BracketGroupBLosersB:
		return "Losers Branch B"
	case BracketSemifinals:
		return "Semifinals"
	case BracketFinal:
		return "Final"
	case BracketGroupAFinal:
		return "Group A Final"
	case BracketGroupBFinal:
		return "Group B Final"
	case BracketCrossSemis:
		return "Cross Semifinals"
	case BracketCrossFinal:
		return "Cross Final"
	default:
		return string(bt)
	}
}
