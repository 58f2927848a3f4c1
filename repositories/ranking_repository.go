package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saboarena/sabo-platform/models"
)

var ErrRankingNotFound = errors.New("player ranking not found")

type RankingRepository interface {
	GetByUser(ctx context.Context, userID int) (*models.PlayerRanking, error)
	// GetByUserForUpdate reads the row through the caller's transaction and
	// locks it until commit, so concurrent matches sharing a player serialize
	// instead of overwriting each other's rating update.
	GetByUserForUpdate(ctx context.Context, exec SQLExecutor, userID int) (*models.PlayerRanking, error)
	Upsert(ctx context.Context, exec SQLExecutor, ranking *models.PlayerRanking) error
	Leaderboard(ctx context.Context, limit int) ([]*models.PlayerRanking, error)
	AddSpaPoints(ctx context.Context, exec SQLExecutor, userID int, points int) error
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

const rankingColumns = `user_id, elo_rating, spa_points, rank, wins, losses, win_streak, updated_at`

func (r *postgresRankingRepository) GetByUser(ctx context.Context, userID int) (*models.PlayerRanking, error) {
	query := `SELECT ` + rankingColumns + ` FROM player_rankings WHERE user_id = $1`
	return r.scanRanking(r.db.QueryRowContext(ctx, query, userID), userID)
}

func (r *postgresRankingRepository) GetByUserForUpdate(ctx context.Context, exec SQLExecutor, userID int) (*models.PlayerRanking, error) {
	query := `SELECT ` + rankingColumns + ` FROM player_rankings WHERE user_id = $1 FOR UPDATE`
	return r.scanRanking(exec.QueryRowContext(ctx, query, userID), userID)
}

func (r *postgresRankingRepository) scanRanking(row *sql.Row, userID int) (*models.PlayerRanking, error) {
	ranking := &models.PlayerRanking{}
	err := row.Scan(
		&ranking.UserID, &ranking.EloRating, &ranking.SpaPoints, &ranking.Rank,
		&ranking.Wins, &ranking.Losses, &ranking.WinStreak, &ranking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, fmt.Errorf("failed to scan ranking for user %d: %w", userID, err)
	}
	return ranking, nil
}

func (r *postgresRankingRepository) Upsert(ctx context.Context, exec SQLExecutor, ranking *models.PlayerRanking) error {
	query := `
		INSERT INTO player_rankings (user_id, elo_rating, spa_points, rank, wins, losses, win_streak, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			elo_rating = EXCLUDED.elo_rating,
			spa_points = EXCLUDED.spa_points,
			rank = EXCLUDED.rank,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			win_streak = EXCLUDED.win_streak,
			updated_at = NOW()`

	_, err := exec.ExecContext(ctx, query,
		ranking.UserID, ranking.EloRating, ranking.SpaPoints, ranking.Rank,
		ranking.Wins, ranking.Losses, ranking.WinStreak)
	if err != nil {
		return fmt.Errorf("failed to upsert ranking for user %d: %w", ranking.UserID, err)
	}
	return nil
}

func (r *postgresRankingRepository) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerRanking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT user_id, elo_rating, spa_points, rank, wins, losses, win_streak, updated_at
		FROM player_rankings
		ORDER BY spa_points DESC, elo_rating DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	rankings := make([]*models.PlayerRanking, 0, limit)
	for rows.Next() {
		ranking := &models.PlayerRanking{}
		if err := rows.Scan(
			&ranking.UserID, &ranking.EloRating, &ranking.SpaPoints, &ranking.Rank,
			&ranking.Wins, &ranking.Losses, &ranking.WinStreak, &ranking.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		rankings = append(rankings, ranking)
	}
	return rankings, rows.Err()
}

func (r *postgresRankingRepository) AddSpaPoints(ctx context.Context, exec SQLExecutor, userID int, points int) error {
	query := `
		INSERT INTO player_rankings (user_id, spa_points, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			spa_points = player_rankings.spa_points + EXCLUDED.spa_points,
			updated_at = NOW()`

	if _, err := exec.ExecContext(ctx, query, userID, points); err != nil {
		return fmt.Errorf("failed to add SPA points for user %d: %w", userID, err)
	}
	return nil
}
