package sabo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
)

func playerList(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestGenerateSixteen(t *testing.T) {
	matches, err := Generate(7, Size16, playerList(16))
	require.NoError(t, err)
	require.Len(t, matches, TotalMatches16)

	o := Organize(matches, Size16)
	assert.Len(t, o.Bucket(BracketWinners), 14)
	assert.Len(t, o.Bucket(BracketLosersA), 7)
	assert.Len(t, o.Bucket(BracketLosersB), 3)
	assert.Len(t, o.Bucket(BracketSemifinals), 2)
	assert.Len(t, o.Bucket(BracketFinal), 1)
	assert.Empty(t, o.Unrecognized)

	for _, m := range matches {
		assert.Equal(t, 7, m.TournamentID)
		if m.RoundNumber == RoundWinners1 {
			require.NotNil(t, m.Player1ID)
			require.NotNil(t, m.Player2ID)
			assert.Equal(t, models.MatchStatusReady, m.Status)
		} else {
			assert.Nil(t, m.Player1ID)
			assert.Nil(t, m.Player2ID)
			assert.Equal(t, models.MatchStatusPending, m.Status)
		}
	}

	first := o.Find(BracketWinners, RoundWinners1, 1)
	require.NotNil(t, first)
	assert.Equal(t, 1, *first.Player1ID)
	assert.Equal(t, 2, *first.Player2ID)

	last := o.Find(BracketWinners, RoundWinners1, 8)
	require.NotNil(t, last)
	assert.Equal(t, 15, *last.Player1ID)
	assert.Equal(t, 16, *last.Player2ID)
}

func TestGenerateThirtyTwo(t *testing.T) {
	matches, err := Generate(3, Size32, playerList(32))
	require.NoError(t, err)
	require.Len(t, matches, TotalMatches32)

	o := Organize(matches, Size32)
	assert.Len(t, o.Bucket(BracketGroupAWinners), 14)
	assert.Len(t, o.Bucket(BracketGroupBWinners), 14)
	assert.Len(t, o.Bucket(BracketGroupAFinal), 2)
	assert.Len(t, o.Bucket(BracketGroupBFinal), 2)
	assert.Len(t, o.Bucket(BracketCrossSemis), 2)
	assert.Len(t, o.Bucket(BracketCrossFinal), 1)

	// First 16 players seed group A, the rest group B.
	a1 := o.Find(BracketGroupAWinners, RoundWinners1, 1)
	require.NotNil(t, a1)
	assert.Equal(t, 1, *a1.Player1ID)
	b1 := o.Find(BracketGroupBWinners, RoundWinners1, 1)
	require.NotNil(t, b1)
	assert.Equal(t, 17, *b1.Player1ID)

	// The second group final keeps match number 2.
	require.NotNil(t, o.Find(BracketGroupAFinal, RoundGroupFinal1, 1))
	require.NotNil(t, o.Find(BracketGroupAFinal, RoundGroupFinal2, 2))
	require.NotNil(t, o.Find(BracketGroupBFinal, RoundGroupFinal2, 2))
}

// The storage key for a match is (tournament, bracket_type, round, match):
// a 32 draw reuses every (round, match) pair across its two groups, so the
// bracket type has to disambiguate or the insert of the second group fails.
func TestGenerateCoordinatesUniquePerBracket(t *testing.T) {
	type coord struct {
		bracket string
		round   int
		match   int
	}

	for _, size := range []Size{Size16, Size32} {
		matches, err := Generate(1, size, playerList(int(size)))
		require.NoError(t, err)

		seen := make(map[coord]bool, len(matches))
		for _, m := range matches {
			key := coord{m.BracketType, m.RoundNumber, m.MatchNumber}
			assert.False(t, seen[key], "size %d: duplicate coordinate %+v", size, key)
			seen[key] = true
		}
		assert.Len(t, seen, len(matches))
	}

	// Without the bracket type, group A and group B collide on every round.
	matches, err := Generate(1, Size32, playerList(32))
	require.NoError(t, err)
	bare := make(map[[2]int]int, len(matches))
	for _, m := range matches {
		bare[[2]int{m.RoundNumber, m.MatchNumber}]++
	}
	collisions := 0
	for _, count := range bare {
		if count > 1 {
			collisions++
		}
	}
	assert.Positive(t, collisions)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(1, Size(8), playerList(8))
	assert.Error(t, err)

	_, err = Generate(1, Size16, playerList(15))
	assert.Error(t, err)

	_, err = Generate(1, Size32, playerList(16))
	assert.Error(t, err)
}
