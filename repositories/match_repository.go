package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/saboarena/sabo-platform/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	ErrMatchPlayerInvalid     = errors.New("match references an unknown player")
	ErrMatchDuplicateSlot     = errors.New("match number already taken within this round")
)

type SaboMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.SaboMatch) error
	GetByID(ctx context.Context, id int) (*models.SaboMatch, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error)
	CompleteMatch(ctx context.Context, exec SQLExecutor, m *models.SaboMatch) error
	AssignPlayerSlot(ctx context.Context, exec SQLExecutor, matchID int, slot string, playerID int) error
	MarkReady(ctx context.Context, exec SQLExecutor, matchID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresSaboMatchRepository struct {
	db *sql.DB
}

func NewPostgresSaboMatchRepository(db *sql.DB) SaboMatchRepository {
	return &postgresSaboMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, round_number, match_number, bracket_type,
	player1_id, player2_id, score_player1, score_player2,
	status, winner_id, loser_id, created_at, updated_at`

func (r *postgresSaboMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.SaboMatch) error {
	query := `
		INSERT INTO sabo_matches
			(tournament_id, round_number, match_number, bracket_type,
			 player1_id, player2_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.RoundNumber,
		match.MatchNumber,
		match.BracketType,
		match.Player1ID,
		match.Player2ID,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	return r.handleMatchError(err)
}

func (r *postgresSaboMatchRepository) GetByID(ctx context.Context, id int) (*models.SaboMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM sabo_matches WHERE id = $1`

	match := &models.SaboMatch{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresSaboMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error) {
	query := `SELECT ` + matchColumns + `
		FROM sabo_matches
		WHERE tournament_id = $1
		ORDER BY round_number ASC, match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.SaboMatch, 0)
	for rows.Next() {
		match := &models.SaboMatch{}
		if scanErr := scanMatch(rows, match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// CompleteMatch persists scores, winner, loser and completed status in one
// statement. Only non-completed matches are updated, so a concurrent second
// submission for the same match loses cleanly.
func (r *postgresSaboMatchRepository) CompleteMatch(ctx context.Context, exec SQLExecutor, m *models.SaboMatch) error {
	query := `
		UPDATE sabo_matches
		SET score_player1 = $1, score_player2 = $2, status = $3,
		    winner_id = $4, loser_id = $5, updated_at = NOW()
		WHERE id = $6 AND status <> 'completed'`

	result, err := exec.ExecContext(ctx, query,
		m.ScorePlayer1, m.ScorePlayer2, models.MatchStatusCompleted, m.WinnerID, m.LoserID, m.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresSaboMatchRepository) AssignPlayerSlot(ctx context.Context, exec SQLExecutor, matchID int, slot string, playerID int) error {
	var query string
	switch slot {
	case "player1":
		query = `UPDATE sabo_matches SET player1_id = $1, updated_at = NOW() WHERE id = $2`
	case "player2":
		query = `UPDATE sabo_matches SET player2_id = $1, updated_at = NOW() WHERE id = $2`
	default:
		return fmt.Errorf("unknown player slot %q", slot)
	}

	result, err := exec.ExecContext(ctx, query, playerID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresSaboMatchRepository) MarkReady(ctx context.Context, exec SQLExecutor, matchID int) error {
	query := `
		UPDATE sabo_matches SET status = 'ready', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		  AND player1_id IS NOT NULL AND player2_id IS NOT NULL`

	if _, err := exec.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("failed to mark match %d ready: %w", matchID, err)
	}
	return nil
}

// DeleteByTournament removes every match of a tournament. Used only by the
// bracket repair flow before regeneration.
func (r *postgresSaboMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	result, err := exec.ExecContext(ctx, `DELETE FROM sabo_matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner, m *models.SaboMatch) error {
	return row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.RoundNumber,
		&m.MatchNumber,
		&m.BracketType,
		&m.Player1ID,
		&m.Player2ID,
		&m.ScorePlayer1,
		&m.ScorePlayer2,
		&m.Status,
		&m.WinnerID,
		&m.LoserID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (r *postgresSaboMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "sabo_matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "sabo_matches_player1_id_fkey", "sabo_matches_player2_id_fkey",
			"sabo_matches_winner_id_fkey", "sabo_matches_loser_id_fkey":
			return ErrMatchPlayerInvalid
		case "sabo_matches_tournament_bracket_round_match_key":
			return ErrMatchDuplicateSlot
		}
	}
	return err
}
