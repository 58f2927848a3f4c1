package sabo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
)

func completeMatch(m *models.SaboMatch) {
	p1, p2 := 1, 2
	s1, s2 := 9, 7
	if m.Player1ID == nil {
		m.Player1ID = &p1
	}
	if m.Player2ID == nil {
		m.Player2ID = &p2
	}
	m.ScorePlayer1 = &s1
	m.ScorePlayer2 = &s2
	m.WinnerID = m.Player1ID
	m.LoserID = m.Player2ID
	m.Status = models.MatchStatusCompleted
}

func completeWhere(matches []*models.SaboMatch, pred func(*models.SaboMatch) bool) {
	for _, m := range matches {
		if pred(m) {
			completeMatch(m)
		}
	}
}

func TestProgressEmptyBracket(t *testing.T) {
	p := Progress(Organize(nil, Size16))
	assert.Zero(t, p.TotalMatches)
	assert.Zero(t, p.ProgressPercentage)
	assert.Equal(t, "Not Started", p.CurrentStage)
}

func TestProgressFreshBracket(t *testing.T) {
	matches := generateFor(t, Size16)
	p := Progress(Organize(matches, Size16))

	assert.Equal(t, TotalMatches16, p.TotalMatches)
	assert.Zero(t, p.CompletedMatches)
	assert.Zero(t, p.ProgressPercentage)
	assert.Equal(t, "Winners Round 1", p.CurrentStage)
	assert.NotEmpty(t, p.NextActions)
}

func TestProgressWinnersRoundTwo(t *testing.T) {
	matches := generateFor(t, Size16)
	completeWhere(matches, func(m *models.SaboMatch) bool {
		return BracketType(m.BracketType) == BracketWinners && m.RoundNumber == RoundWinners1
	})

	p := Progress(Organize(matches, Size16))
	assert.Equal(t, "Winners Round 2", p.CurrentStage)
	assert.Equal(t, 8, p.CompletedMatches)
	assert.Equal(t, 30, p.ProgressPercentage) // 8/27 rounded
}

func TestProgressLosersBranchA(t *testing.T) {
	matches := generateFor(t, Size16)
	completeWhere(matches, func(m *models.SaboMatch) bool {
		return BracketType(m.BracketType) == BracketWinners
	})

	p := Progress(Organize(matches, Size16))
	assert.Equal(t, "Losers Branch A", p.CurrentStage)
}

func TestProgressSemifinalsStage(t *testing.T) {
	matches := generateFor(t, Size16)
	completeWhere(matches, func(m *models.SaboMatch) bool {
		bt := BracketType(m.BracketType)
		return bt == BracketWinners || bt == BracketLosersA || bt == BracketLosersB
	})

	p := Progress(Organize(matches, Size16))
	assert.Equal(t, "Semifinals", p.CurrentStage)
	assert.Contains(t, p.NextActions, "Start Semifinals (4 finalists)")
}

func TestProgressGrandFinal(t *testing.T) {
	matches := generateFor(t, Size16)
	completeWhere(matches, func(m *models.SaboMatch) bool {
		return BracketType(m.BracketType) != BracketFinal
	})

	p := Progress(Organize(matches, Size16))
	assert.Equal(t, "Grand Final", p.CurrentStage)
	assert.Contains(t, p.NextActions, "Complete the Grand Final")
}

func TestProgressTournamentComplete(t *testing.T) {
	matches := generateFor(t, Size16)
	completeWhere(matches, func(*models.SaboMatch) bool { return true })

	p := Progress(Organize(matches, Size16))
	assert.Equal(t, "Tournament Complete", p.CurrentStage)
	assert.Equal(t, 100, p.ProgressPercentage)
	assert.Equal(t, TotalMatches16, p.CompletedMatches)
}

func TestProgressThirtyTwoStages(t *testing.T) {
	matches := generateFor(t, Size32)

	p := Progress(Organize(matches, Size32))
	require.Equal(t, TotalMatches32, p.TotalMatches)
	assert.Equal(t, "Winners Round 1", p.CurrentStage)
	require.NotNil(t, p.StageBreakdown.GroupFinals)
	assert.Equal(t, 4, p.StageBreakdown.GroupFinals.Total)

	completeWhere(matches, func(m *models.SaboMatch) bool {
		bt := BracketType(m.BracketType)
		return bt != BracketCrossSemis && bt != BracketCrossFinal
	})
	p = Progress(Organize(matches, Size32))
	assert.Equal(t, "Cross Semifinals", p.CurrentStage)

	completeWhere(matches, func(m *models.SaboMatch) bool {
		return BracketType(m.BracketType) == BracketCrossSemis
	})
	p = Progress(Organize(matches, Size32))
	assert.Equal(t, "Grand Final", p.CurrentStage)

	completeWhere(matches, func(*models.SaboMatch) bool { return true })
	p = Progress(Organize(matches, Size32))
	assert.Equal(t, "Tournament Complete", p.CurrentStage)
	assert.Equal(t, 100, p.ProgressPercentage)
}
