package sabo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
)

func TestOrganizeSortsWithinBuckets(t *testing.T) {
	matches := []*models.SaboMatch{
		{ID: 1, BracketType: string(BracketWinners), RoundNumber: 2, MatchNumber: 1},
		{ID: 2, BracketType: string(BracketWinners), RoundNumber: 1, MatchNumber: 3},
		{ID: 3, BracketType: string(BracketWinners), RoundNumber: 1, MatchNumber: 1},
		{ID: 4, BracketType: string(BracketLosersA), RoundNumber: 101, MatchNumber: 2},
	}

	o := Organize(matches, Size16)

	winners := o.Bucket(BracketWinners)
	require.Len(t, winners, 3)
	assert.Equal(t, 3, winners[0].ID)
	assert.Equal(t, 2, winners[1].ID)
	assert.Equal(t, 1, winners[2].ID)
	assert.Len(t, o.Bucket(BracketLosersA), 1)
}

func TestOrganizeKeepsUnrecognizedMatches(t *testing.T) {
	matches := []*models.SaboMatch{
		{ID: 1, BracketType: string(BracketWinners), RoundNumber: 1, MatchNumber: 1},
		{ID: 2, BracketType: "quarterfinals", RoundNumber: 1, MatchNumber: 1},
		{ID: 3, BracketType: string(BracketCrossFinal), RoundNumber: 400, MatchNumber: 1},
	}

	o := Organize(matches, Size16)

	require.Len(t, o.Unrecognized, 2)
	assert.Equal(t, 3, o.Total())
	assert.Len(t, o.All(), 1)
}

func TestReadyMatches(t *testing.T) {
	p1, p2 := 10, 20
	matches := []*models.SaboMatch{
		{ID: 1, BracketType: string(BracketWinners), RoundNumber: 1, MatchNumber: 1,
			Player1ID: &p1, Player2ID: &p2, Status: models.MatchStatusReady},
		{ID: 2, BracketType: string(BracketWinners), RoundNumber: 1, MatchNumber: 2,
			Player1ID: &p1, Status: models.MatchStatusPending},
		{ID: 3, BracketType: string(BracketWinners), RoundNumber: 1, MatchNumber: 3,
			Player1ID: &p1, Player2ID: &p2, Status: models.MatchStatusCompleted},
	}

	o := Organize(matches, Size16)
	ready := o.ReadyMatches()
	require.Len(t, ready, 1)
	assert.Equal(t, 1, ready[0].ID)
}

func TestFindMissesGracefully(t *testing.T) {
	o := Organize(nil, Size16)
	assert.Nil(t, o.Find(BracketFinal, RoundFinal, 1))
	assert.Zero(t, o.Total())
}
