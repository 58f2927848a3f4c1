package services

import (
	"context"
	"fmt"
	"math"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/repositories"
)

// RankTier maps an ELO range to a display rank. Ranks follow the pool-hall
// ladder K (beginner) through E+ (grandmaster).
type RankTier struct {
	Rank      string
	MinRating int
	MaxRating int
	KFactor   int
}

var rankTiers = []RankTier{
	{"K", 800, 999, 40},
	{"K+", 1000, 1199, 40},
	{"I", 1200, 1399, 35},
	{"I+", 1400, 1599, 35},
	{"H", 1600, 1799, 32},
	{"H+", 1800, 1999, 32},
	{"G", 2000, 2199, 28},
	{"G+", 2200, 2399, 28},
	{"F", 2400, 2599, 24},
	{"F+", 2600, 2799, 24},
	{"E", 2800, 2999, 20},
	{"E+", 3000, 9999, 16},
}

// DefaultEloRating is the rating assigned to a player's first ranked game.
const DefaultEloRating = 1000

// SPA point configuration. Base points per match with a win multiplier;
// tournament placements pay out of a fixed prize table per format.
const (
	SpaBasePointsPerMatch  = 10
	SpaWinBonusMultiplier  = 1.5
	SpaTournamentMultiplier = 2.0

	// Hot-streak and upset bonuses, paid on top of the match points.
	spaStreakThreshold = 3
	spaStreakBonus     = 5
	spaUpsetGap        = 200
	spaUpsetBonus      = 25
)

// spaPrizeTableDE16 pays SPA points by final placement in a 16-player SABO
// draw. Positions between table keys collapse to the next lower key.
var spaPrizeTableDE16 = map[int]int{
	1: 2000, // champion
	2: 1200, // runner-up
	3: 800,  // semifinalists
	5: 400,  // quarterfinalists
	9: 200,  // round of 16
}

// spaPrizeTableDE32 doubles the DE16 structure for a 32-player draw.
var spaPrizeTableDE32 = map[int]int{
	1:  4000,
	2:  2400,
	3:  1600,
	5:  800,
	9:  400,
	17: 200,
}

// EloChange is the rating delta of one ranked match.
type EloChange struct {
	WinnerChange  int     `json:"winner_change"`
	LoserChange   int     `json:"loser_change"`
	ExpectedScore float64 `json:"expected_score"`
}

// CalculateElo computes the rating change for a decided match. The expected
// score uses the standard logistic curve; the K-factor comes from the
// winner's/loser's own tier so low-ranked players move faster.
func CalculateElo(winnerRating, loserRating int) EloChange {
	expected := 1.0 / (1.0 + math.Pow(10, float64(loserRating-winnerRating)/400))

	winnerK := float64(KFactorForRating(winnerRating))
	loserK := float64(KFactorForRating(loserRating))

	return EloChange{
		WinnerChange:  int(math.Round(winnerK * (1 - expected))),
		LoserChange:   -int(math.Round(loserK * (1 - expected))),
		ExpectedScore: expected,
	}
}

// KFactorForRating returns the K-factor of the tier the rating falls in.
func KFactorForRating(rating int) int {
	for _, tier := range rankTiers {
		if rating >= tier.MinRating && rating <= tier.MaxRating {
			return tier.KFactor
		}
	}
	if rating < rankTiers[0].MinRating {
		return rankTiers[0].KFactor
	}
	return rankTiers[len(rankTiers)-1].KFactor
}

// RankForRating returns the display rank of a rating.
func RankForRating(rating int) string {
	for _, tier := range rankTiers {
		if rating >= tier.MinRating && rating <= tier.MaxRating {
			return tier.Rank
		}
	}
	if rating < rankTiers[0].MinRating {
		return rankTiers[0].Rank
	}
	return rankTiers[len(rankTiers)-1].Rank
}

// MatchSpaPoints returns the SPA points awarded for playing one match.
// Winners earn the win multiplier; tournament matches pay double.
func MatchSpaPoints(won bool, tournamentMatch bool) int {
	points := float64(SpaBasePointsPerMatch)
	if won {
		points *= SpaWinBonusMultiplier
	}
	if tournamentMatch {
		points *= SpaTournamentMultiplier
	}
	return int(math.Round(points))
}

// StreakSpaBonus pays extra SPA points once a win streak reaches the hot
// threshold, scaling with the streak length.
func StreakSpaBonus(winStreak int) int {
	if winStreak < spaStreakThreshold {
		return 0
	}
	return spaStreakBonus * (winStreak - spaStreakThreshold + 1)
}

// UpsetSpaBonus rewards beating a player rated well above the winner.
func UpsetSpaBonus(winnerRating, loserRating int) int {
	if loserRating-winnerRating < spaUpsetGap {
		return 0
	}
	return spaUpsetBonus
}

// PlacementSpaPoints returns the tournament prize for a final placement.
func PlacementSpaPoints(size int, position int) int {
	table := spaPrizeTableDE16
	if size == 32 {
		table = spaPrizeTableDE32
	}
	if position < 1 {
		return 0
	}
	best := 0
	bestKey := 0
	for key, points := range table {
		if key <= position && key > bestKey {
			bestKey = key
			best = points
		}
	}
	return best
}

type RankingService interface {
	GetPlayerRanking(ctx context.Context, userID int) (*models.PlayerRanking, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.PlayerRanking, error)
	// ApplyMatchResult updates both players' ELO, SPA points and streaks
	// inside the caller's transaction.
	ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, winnerID, loserID int, tournamentMatch bool) error
	AwardSpaPoints(ctx context.Context, exec repositories.SQLExecutor, userID int, points int) error
}

type rankingService struct {
	rankingRepo repositories.RankingRepository
	userRepo    repositories.UserRepository
}

func NewRankingService(rankingRepo repositories.RankingRepository, userRepo repositories.UserRepository) RankingService {
	return &rankingService{rankingRepo: rankingRepo, userRepo: userRepo}
}

func (s *rankingService) GetPlayerRanking(ctx context.Context, userID int) (*models.PlayerRanking, error) {
	ranking, err := s.rankingRepo.GetByUser(ctx, userID)
	if err != nil {
		if err == repositories.ErrRankingNotFound {
			// A player without ranked games sits at the default rating.
			return &models.PlayerRanking{
				UserID:    userID,
				EloRating: DefaultEloRating,
				Rank:      RankForRating(DefaultEloRating),
			}, nil
		}
		return nil, fmt.Errorf("failed to load ranking for user %d: %w", userID, err)
	}
	return ranking, nil
}

func (s *rankingService) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerRanking, error) {
	rankings, err := s.rankingRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	users, err := s.userRepo.ListByIDs(ctx, rankingUserIDs(rankings))
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard users: %w", err)
	}
	byID := make(map[int]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, ranking := range rankings {
		ranking.User = byID[ranking.UserID]
	}
	return rankings, nil
}

func (s *rankingService) ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, winnerID, loserID int, tournamentMatch bool) error {
	// Both rows are read locked inside the caller's transaction, in ascending
	// user id order so two in-flight matches sharing a player serialize
	// without deadlocking.
	rankings := make(map[int]*models.PlayerRanking, 2)
	for _, id := range orderedPair(winnerID, loserID) {
		ranking, err := s.loadOrDefaultForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		rankings[id] = ranking
	}
	winner, loser := rankings[winnerID], rankings[loserID]

	change := CalculateElo(winner.EloRating, loser.EloRating)
	upsetBonus := UpsetSpaBonus(winner.EloRating, loser.EloRating)

	winner.EloRating += change.WinnerChange
	winner.Wins++
	if winner.WinStreak < 0 {
		winner.WinStreak = 0
	}
	winner.WinStreak++
	winner.SpaPoints += MatchSpaPoints(true, tournamentMatch) + StreakSpaBonus(winner.WinStreak) + upsetBonus
	winner.Rank = RankForRating(winner.EloRating)

	loser.EloRating += change.LoserChange
	if loser.EloRating < rankTiers[0].MinRating {
		loser.EloRating = rankTiers[0].MinRating
	}
	loser.SpaPoints += MatchSpaPoints(false, tournamentMatch)
	loser.Losses++
	loser.WinStreak = 0
	loser.Rank = RankForRating(loser.EloRating)

	if err := s.rankingRepo.Upsert(ctx, exec, winner); err != nil {
		return err
	}
	return s.rankingRepo.Upsert(ctx, exec, loser)
}

func (s *rankingService) AwardSpaPoints(ctx context.Context, exec repositories.SQLExecutor, userID int, points int) error {
	return s.rankingRepo.AddSpaPoints(ctx, exec, userID, points)
}

func (s *rankingService) loadOrDefaultForUpdate(ctx context.Context, exec repositories.SQLExecutor, userID int) (*models.PlayerRanking, error) {
	ranking, err := s.rankingRepo.GetByUserForUpdate(ctx, exec, userID)
	if err != nil {
		if err == repositories.ErrRankingNotFound {
			return &models.PlayerRanking{
				UserID:    userID,
				EloRating: DefaultEloRating,
				Rank:      RankForRating(DefaultEloRating),
			}, nil
		}
		return nil, fmt.Errorf("failed to load ranking for user %d: %w", userID, err)
	}
	return ranking, nil
}

func orderedPair(a, b int) [2]int {
	if b < a {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}

func rankingUserIDs(rankings []*models.PlayerRanking) []int {
	ids := make([]int, 0, len(rankings))
	for _, r := range rankings {
		ids = append(ids, r.UserID)
	}
	return ids
}
