package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/repositories"
)

func TestCalculateEloEqualRatings(t *testing.T) {
	change := CalculateElo(1000, 1000)

	assert.InDelta(t, 0.5, change.ExpectedScore, 0.001)
	assert.Equal(t, 20, change.WinnerChange) // K=40 at 1000, half the K
	assert.Equal(t, -20, change.LoserChange)
}

func TestCalculateEloUpsetPaysMore(t *testing.T) {
	upset := CalculateElo(1000, 1800)
	expected := CalculateElo(1800, 1000)

	assert.Greater(t, upset.WinnerChange, expected.WinnerChange)
	assert.Less(t, upset.ExpectedScore, 0.5)
	assert.Greater(t, expected.ExpectedScore, 0.5)
}

func TestKFactorTiers(t *testing.T) {
	assert.Equal(t, 40, KFactorForRating(900))
	assert.Equal(t, 40, KFactorForRating(1000))
	assert.Equal(t, 35, KFactorForRating(1300))
	assert.Equal(t, 32, KFactorForRating(1900))
	assert.Equal(t, 28, KFactorForRating(2100))
	assert.Equal(t, 24, KFactorForRating(2500))
	assert.Equal(t, 20, KFactorForRating(2900))
	assert.Equal(t, 16, KFactorForRating(3500))
	// Out-of-range ratings clamp to the edge tiers.
	assert.Equal(t, 40, KFactorForRating(500))
	assert.Equal(t, 16, KFactorForRating(12000))
}

func TestRankForRating(t *testing.T) {
	assert.Equal(t, "K", RankForRating(850))
	assert.Equal(t, "K+", RankForRating(DefaultEloRating))
	assert.Equal(t, "H", RankForRating(1650))
	assert.Equal(t, "E+", RankForRating(3200))
	assert.Equal(t, "K", RankForRating(100))
}

func TestMatchSpaPoints(t *testing.T) {
	assert.Equal(t, 10, MatchSpaPoints(false, false))
	assert.Equal(t, 15, MatchSpaPoints(true, false))
	assert.Equal(t, 20, MatchSpaPoints(false, true))
	assert.Equal(t, 30, MatchSpaPoints(true, true))
}

func TestStreakSpaBonus(t *testing.T) {
	assert.Zero(t, StreakSpaBonus(0))
	assert.Zero(t, StreakSpaBonus(2))
	assert.Equal(t, 5, StreakSpaBonus(3))
	assert.Equal(t, 15, StreakSpaBonus(5))
}

func TestUpsetSpaBonus(t *testing.T) {
	assert.Zero(t, UpsetSpaBonus(1000, 1000))
	assert.Zero(t, UpsetSpaBonus(1000, 1199))
	assert.Equal(t, 25, UpsetSpaBonus(1000, 1200))
	assert.Zero(t, UpsetSpaBonus(1500, 1000))
}

func TestPlacementSpaPoints(t *testing.T) {
	assert.Equal(t, 2000, PlacementSpaPoints(16, 1))
	assert.Equal(t, 1200, PlacementSpaPoints(16, 2))
	assert.Equal(t, 800, PlacementSpaPoints(16, 3))
	// Positions between table keys collapse to the next lower key.
	assert.Equal(t, 800, PlacementSpaPoints(16, 4))
	assert.Equal(t, 400, PlacementSpaPoints(16, 5))
	assert.Equal(t, 200, PlacementSpaPoints(16, 16))

	assert.Equal(t, 4000, PlacementSpaPoints(32, 1))
	assert.Equal(t, 2400, PlacementSpaPoints(32, 2))
	assert.Equal(t, 200, PlacementSpaPoints(32, 17))

	assert.Zero(t, PlacementSpaPoints(16, 0))
}

type stubExecutor struct{}

func (stubExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (stubExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (stubExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

type fakeRankingRepo struct {
	rows map[int]*models.PlayerRanking

	lockedIDs  []int
	lockedWith []repositories.SQLExecutor
	upserts    []models.PlayerRanking
	spaAwards  map[int]int
}

func (f *fakeRankingRepo) GetByUser(ctx context.Context, userID int) (*models.PlayerRanking, error) {
	ranking, ok := f.rows[userID]
	if !ok {
		return nil, repositories.ErrRankingNotFound
	}
	cp := *ranking
	return &cp, nil
}

func (f *fakeRankingRepo) GetByUserForUpdate(ctx context.Context, exec repositories.SQLExecutor, userID int) (*models.PlayerRanking, error) {
	f.lockedIDs = append(f.lockedIDs, userID)
	f.lockedWith = append(f.lockedWith, exec)
	return f.GetByUser(ctx, userID)
}

func (f *fakeRankingRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, ranking *models.PlayerRanking) error {
	f.upserts = append(f.upserts, *ranking)
	return nil
}

func (f *fakeRankingRepo) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerRanking, error) {
	return nil, nil
}

func (f *fakeRankingRepo) AddSpaPoints(ctx context.Context, exec repositories.SQLExecutor, userID int, points int) error {
	if f.spaAwards == nil {
		f.spaAwards = make(map[int]int)
	}
	f.spaAwards[userID] += points
	return nil
}

// Both rows must be read through the caller's executor, lowest user id first,
// so concurrent matches sharing a player serialize on the row lock instead of
// overwriting each other's update.
func TestApplyMatchResultReadsThroughTransaction(t *testing.T) {
	repo := &fakeRankingRepo{rows: map[int]*models.PlayerRanking{
		5: {UserID: 5, EloRating: 1000, Rank: "K+", WinStreak: 2},
		3: {UserID: 3, EloRating: 1000, Rank: "K+"},
	}}
	svc := NewRankingService(repo, &fakeUserRepo{})
	exec := &stubExecutor{}

	err := svc.ApplyMatchResult(context.Background(), exec, 5, 3, true)
	require.NoError(t, err)

	require.Equal(t, []int{3, 5}, repo.lockedIDs)
	for _, got := range repo.lockedWith {
		assert.Same(t, exec, got)
	}

	byID := make(map[int]models.PlayerRanking)
	for _, u := range repo.upserts {
		byID[u.UserID] = u
	}
	winner, loser := byID[5], byID[3]

	assert.Equal(t, 1020, winner.EloRating)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 3, winner.WinStreak)
	assert.Equal(t, 35, winner.SpaPoints) // 30 match points + streak bonus
	assert.Equal(t, "K+", winner.Rank)

	assert.Equal(t, 980, loser.EloRating)
	assert.Equal(t, 1, loser.Losses)
	assert.Zero(t, loser.WinStreak)
	assert.Equal(t, 20, loser.SpaPoints)
	assert.Equal(t, "K", loser.Rank)
}

func TestApplyMatchResultDefaultsUnrankedPlayers(t *testing.T) {
	repo := &fakeRankingRepo{rows: map[int]*models.PlayerRanking{}}
	svc := NewRankingService(repo, &fakeUserRepo{})

	err := svc.ApplyMatchResult(context.Background(), &stubExecutor{}, 1, 2, false)
	require.NoError(t, err)

	require.Len(t, repo.upserts, 2)
	for _, u := range repo.upserts {
		assert.NotZero(t, u.EloRating)
	}
}
