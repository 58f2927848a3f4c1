package sabo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
)

func decide(m *models.SaboMatch, winnerID, loserID int) *models.SaboMatch {
	s1, s2 := 9, 7
	m.WinnerID = &winnerID
	m.LoserID = &loserID
	m.ScorePlayer1 = &s1
	m.ScorePlayer2 = &s2
	m.Status = models.MatchStatusCompleted
	return m
}

func TestResolveWinnersRoundOne(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)

	m := o.Find(BracketWinners, RoundWinners1, 1)
	require.NotNil(t, m)
	decide(m, *m.Player1ID, *m.Player2ID)

	assignments := Resolve(m, o)
	require.Len(t, assignments, 2)

	winnerTarget := o.Find(BracketWinners, RoundWinners2, 1)
	loserTarget := o.Find(BracketLosersA, RoundLosersA1, 1)

	assert.Equal(t, winnerTarget.ID, assignments[0].TargetMatchID)
	assert.Equal(t, SlotPlayer1, assignments[0].Slot)
	assert.Equal(t, *m.WinnerID, assignments[0].PlayerID)

	assert.Equal(t, loserTarget.ID, assignments[1].TargetMatchID)
	assert.Equal(t, SlotPlayer1, assignments[1].Slot)
	assert.Equal(t, *m.LoserID, assignments[1].PlayerID)
}

func TestResolveEvenMatchNumbersTakeSecondSlot(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)

	m := o.Find(BracketWinners, RoundWinners1, 2)
	require.NotNil(t, m)
	decide(m, *m.Player1ID, *m.Player2ID)

	assignments := Resolve(m, o)
	require.Len(t, assignments, 2)
	assert.Equal(t, SlotPlayer2, assignments[0].Slot)
	assert.Equal(t, SlotPlayer2, assignments[1].Slot)
}

func TestResolveWinnersRoundTwoDropsToBranchB(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)

	m := o.Find(BracketWinners, RoundWinners2, 3)
	require.NotNil(t, m)
	decide(m, 30, 40)

	assignments := Resolve(m, o)
	require.Len(t, assignments, 2)
	assert.Equal(t, Coord{BracketWinners, RoundWinners3, 2}, assignments[0].Target)
	assert.Equal(t, Coord{BracketLosersB, RoundLosersB1, 2}, assignments[1].Target)
}

func TestResolveWinnersRoundThreeLoserEliminated(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)

	m := o.Find(BracketWinners, RoundWinners3, 1)
	require.NotNil(t, m)
	decide(m, 30, 40)

	assignments := Resolve(m, o)
	require.Len(t, assignments, 1)
	assert.Equal(t, Coord{BracketSemifinals, RoundSemifinals, 1}, assignments[0].Target)
	assert.Equal(t, SlotPlayer1, assignments[0].Slot)
}

func TestResolveBranchChampionsFillSemifinalSecondSlots(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)

	la := o.Find(BracketLosersA, RoundLosersA3, 1)
	require.NotNil(t, la)
	decide(la, 50, 60)
	assignments := Resolve(la, o)
	require.Len(t, assignments, 1)
	assert.Equal(t, Coord{BracketSemifinals, RoundSemifinals, 1}, assignments[0].Target)
	assert.Equal(t, SlotPlayer2, assignments[0].Slot)

	lb := o.Find(BracketLosersB, RoundLosersB2, 1)
	require.NotNil(t, lb)
	decide(lb, 70, 80)
	assignments = Resolve(lb, o)
	require.Len(t, assignments, 1)
	assert.Equal(t, Coord{BracketSemifinals, RoundSemifinals, 2}, assignments[0].Target)
	assert.Equal(t, SlotPlayer2, assignments[0].Slot)
}

func TestResolveFinalIsTerminal(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)

	final := o.Find(BracketFinal, RoundFinal, 1)
	require.NotNil(t, final)
	decide(final, 1, 2)

	assert.Empty(t, Resolve(final, o))
	assert.True(t, IsChampionMatch(final, Size16))
}

func TestResolveWithoutWinnerReturnsNothing(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)
	m := o.Find(BracketWinners, RoundWinners1, 1)
	require.NotNil(t, m)
	assert.Empty(t, Resolve(m, o))
}

func TestResolveUnknownBracketReturnsNothing(t *testing.T) {
	o := Organize(generateFor(t, Size16), Size16)
	w := 1
	m := &models.SaboMatch{BracketType: "group_c_winners", RoundNumber: 1, MatchNumber: 1, WinnerID: &w}
	assert.Empty(t, Resolve(m, o))
}

func TestResolveCrossBracketPairing(t *testing.T) {
	o := Organize(generateFor(t, Size32), Size32)

	// Group A winner of group final 1 meets group B's second qualifier.
	agf1 := o.Find(BracketGroupAFinal, RoundGroupFinal1, 1)
	require.NotNil(t, agf1)
	decide(agf1, 100, 101)
	assignments := Resolve(agf1, o)
	require.Len(t, assignments, 1)
	assert.Equal(t, Coord{BracketCrossSemis, RoundCrossSemis, 1}, assignments[0].Target)
	assert.Equal(t, SlotPlayer1, assignments[0].Slot)

	bgf2 := o.Find(BracketGroupBFinal, RoundGroupFinal2, 2)
	require.NotNil(t, bgf2)
	decide(bgf2, 200, 201)
	assignments = Resolve(bgf2, o)
	require.Len(t, assignments, 1)
	assert.Equal(t, Coord{BracketCrossSemis, RoundCrossSemis, 1}, assignments[0].Target)
	assert.Equal(t, SlotPlayer2, assignments[0].Slot)

	crossFinal := o.Find(BracketCrossFinal, RoundCrossFinal, 1)
	require.NotNil(t, crossFinal)
	decide(crossFinal, 100, 200)
	assert.Empty(t, Resolve(crossFinal, o))
	assert.True(t, IsChampionMatch(crossFinal, Size32))
	assert.False(t, IsChampionMatch(agf1, Size32))
}
