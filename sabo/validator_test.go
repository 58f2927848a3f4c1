package sabo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
)

func generateFor(t *testing.T, size Size) []*models.SaboMatch {
	t.Helper()
	matches, err := Generate(1, size, playerList(int(size)))
	require.NoError(t, err)
	return matches
}

func TestValidateStructureAcceptsGeneratedBrackets(t *testing.T) {
	for _, size := range []Size{Size16, Size32} {
		o := Organize(generateFor(t, size), size)
		result := ValidateStructure(o, size)
		assert.True(t, result.Valid, "size %d: %v", size, result.Errors)
		assert.Empty(t, result.Errors)
	}
}

func TestValidateStructureReportsMissingFinal(t *testing.T) {
	matches := generateFor(t, Size16)
	var withoutFinal []*models.SaboMatch
	for _, m := range matches {
		if BracketType(m.BracketType) != BracketFinal {
			withoutFinal = append(withoutFinal, m)
		}
	}

	result := ValidateStructure(Organize(withoutFinal, Size16), Size16)
	require.False(t, result.Valid)

	found := false
	for _, msg := range result.Errors {
		if strings.Contains(msg, "final") {
			found = true
		}
	}
	assert.True(t, found, "expected an error mentioning the final, got %v", result.Errors)
}

func TestValidateStructureReportsWrongRoundCounts(t *testing.T) {
	matches := generateFor(t, Size16)
	// Drop one winners round 1 match.
	var trimmed []*models.SaboMatch
	for _, m := range matches {
		if m.RoundNumber == RoundWinners1 && m.MatchNumber == 8 {
			continue
		}
		trimmed = append(trimmed, m)
	}

	result := ValidateStructure(Organize(trimmed, Size16), Size16)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "expected 27 matches, found 26")
}

func TestValidateStructureReportsUnrecognizedBracket(t *testing.T) {
	matches := generateFor(t, Size16)
	matches[0].BracketType = "group_c_winners"

	result := ValidateStructure(Organize(matches, Size16), Size16)
	require.False(t, result.Valid)

	found := false
	for _, msg := range result.Errors {
		if strings.Contains(msg, "unrecognized bracket type") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateCompleted(t *testing.T) {
	p1, p2 := 1, 2
	s1, s2 := 9, 7

	valid := &models.SaboMatch{
		ID: 1, Status: models.MatchStatusCompleted,
		Player1ID: &p1, Player2ID: &p2,
		ScorePlayer1: &s1, ScorePlayer2: &s2,
		WinnerID: &p1, LoserID: &p2,
	}
	assert.NoError(t, ValidateCompleted(valid))

	// Winner recorded in the second slot with the higher score.
	flipped := &models.SaboMatch{
		ID: 2, Status: models.MatchStatusCompleted,
		Player1ID: &p1, Player2ID: &p2,
		ScorePlayer1: &s2, ScorePlayer2: &s1,
		WinnerID: &p2, LoserID: &p1,
	}
	assert.NoError(t, ValidateCompleted(flipped))

	missingWinner := &models.SaboMatch{
		ID: 3, Status: models.MatchStatusCompleted,
		ScorePlayer1: &s1, ScorePlayer2: &s2,
	}
	assert.Error(t, ValidateCompleted(missingWinner))

	tie := 5
	tied := &models.SaboMatch{
		ID: 4, Status: models.MatchStatusCompleted,
		Player1ID: &p1, Player2ID: &p2,
		ScorePlayer1: &tie, ScorePlayer2: &tie,
		WinnerID: &p1, LoserID: &p2,
	}
	assert.Error(t, ValidateCompleted(tied))

	pending := &models.SaboMatch{ID: 5, Status: models.MatchStatusPending}
	assert.NoError(t, ValidateCompleted(pending))
}
