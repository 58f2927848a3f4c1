package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saboarena/sabo-platform/models"
)

var ErrChallengeNotFound = errors.New("challenge not found")

type ChallengeRepository interface {
	Create(ctx context.Context, c *models.Challenge) error
	GetByID(ctx context.Context, id int) (*models.Challenge, error)
	GetByRoomCode(ctx context.Context, roomCode string) (*models.Challenge, error)
	ListOpen(ctx context.Context, clubID *int) ([]*models.Challenge, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Challenge, error)
	Accept(ctx context.Context, id int, opponentID int) error
	Complete(ctx context.Context, exec SQLExecutor, c *models.Challenge) error
	UpdateStatus(ctx context.Context, id int, status models.ChallengeStatus) error
}

type postgresChallengeRepository struct {
	db *sql.DB
}

func NewPostgresChallengeRepository(db *sql.DB) ChallengeRepository {
	return &postgresChallengeRepository{db: db}
}

const challengeColumns = `
	id, room_code, challenger_id, opponent_id, club_id, race_to, spa_stake,
	status, winner_id, score_a, score_b, expires_at, created_at`

func (r *postgresChallengeRepository) Create(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO challenges (room_code, challenger_id, opponent_id, club_id, race_to, spa_stake, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		c.RoomCode, c.ChallengerID, c.OpponentID, c.ClubID, c.RaceTo, c.SpaStake, c.Status, c.ExpiresAt,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *postgresChallengeRepository) GetByID(ctx context.Context, id int) (*models.Challenge, error) {
	return r.getOne(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
}

func (r *postgresChallengeRepository) GetByRoomCode(ctx context.Context, roomCode string) (*models.Challenge, error) {
	return r.getOne(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE room_code = $1`, roomCode)
}

func (r *postgresChallengeRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Challenge, error) {
	c := &models.Challenge{}
	err := scanChallenge(r.db.QueryRowContext(ctx, query, arg), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to scan challenge: %w", err)
	}
	return c, nil
}

func (r *postgresChallengeRepository) ListOpen(ctx context.Context, clubID *int) ([]*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE status = 'open' AND expires_at > NOW()`
	args := []interface{}{}
	if clubID != nil {
		query += ` AND club_id = $1`
		args = append(args, *clubID)
	}
	query += ` ORDER BY created_at DESC`
	return r.list(ctx, query, args...)
}

func (r *postgresChallengeRepository) ListByUser(ctx context.Context, userID int) ([]*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + `
		FROM challenges
		WHERE challenger_id = $1 OR opponent_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresChallengeRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Challenge, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	challenges := make([]*models.Challenge, 0)
	for rows.Next() {
		c := &models.Challenge{}
		if err := scanChallenge(rows, c); err != nil {
			return nil, fmt.Errorf("failed to scan challenge row: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// Accept fills the opponent slot. Guarded on open status so two players
// cannot accept the same challenge.
func (r *postgresChallengeRepository) Accept(ctx context.Context, id int, opponentID int) error {
	query := `
		UPDATE challenges SET opponent_id = $1, status = 'accepted'
		WHERE id = $2 AND status = 'open' AND expires_at > NOW()`

	result, err := r.db.ExecContext(ctx, query, opponentID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChallengeNotFound)
}

func (r *postgresChallengeRepository) Complete(ctx context.Context, exec SQLExecutor, c *models.Challenge) error {
	query := `
		UPDATE challenges SET status = 'completed', winner_id = $1, score_a = $2, score_b = $3
		WHERE id = $4 AND status = 'accepted'`

	result, err := exec.ExecContext(ctx, query, c.WinnerID, c.ScoreA, c.ScoreB, c.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChallengeNotFound)
}

func (r *postgresChallengeRepository) UpdateStatus(ctx context.Context, id int, status models.ChallengeStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE challenges SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChallengeNotFound)
}

func scanChallenge(row rowScanner, c *models.Challenge) error {
	return row.Scan(
		&c.ID, &c.RoomCode, &c.ChallengerID, &c.OpponentID, &c.ClubID,
		&c.RaceTo, &c.SpaStake, &c.Status, &c.WinnerID, &c.ScoreA, &c.ScoreB,
		&c.ExpiresAt, &c.CreatedAt,
	)
}
