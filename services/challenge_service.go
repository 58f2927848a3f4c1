package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/repositories"
)

const challengeTTL = 24 * time.Hour

type CreateChallengeInput struct {
	OpponentID *int `json:"opponent_id"`
	ClubID     *int `json:"club_id"`
	RaceTo     int  `json:"race_to"`
	SpaStake   int  `json:"spa_stake"`
}

type ChallengeResultInput struct {
	ScoreA int `json:"score_a"`
	ScoreB int `json:"score_b"`
}

type ChallengeService interface {
	Create(ctx context.Context, challengerID int, input CreateChallengeInput) (*models.Challenge, error)
	GetByRoomCode(ctx context.Context, roomCode string) (*models.Challenge, error)
	ListOpen(ctx context.Context, clubID *int) ([]*models.Challenge, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Challenge, error)
	Accept(ctx context.Context, challengeID int, opponentID int) (*models.Challenge, error)
	Decline(ctx context.Context, challengeID int, actorID int) error
	// SubmitResult records the race outcome, settles the SPA stake and
	// applies the ELO update in one transaction.
	SubmitResult(ctx context.Context, challengeID int, actorID int, input ChallengeResultInput) (*models.Challenge, error)
}

type challengeService struct {
	db            *sql.DB
	challengeRepo repositories.ChallengeRepository
	ranking       RankingService
	logger        *slog.Logger
}

func NewChallengeService(db *sql.DB, challengeRepo repositories.ChallengeRepository, ranking RankingService, logger *slog.Logger) ChallengeService {
	return &challengeService{db: db, challengeRepo: challengeRepo, ranking: ranking, logger: logger}
}

func (s *challengeService) Create(ctx context.Context, challengerID int, input CreateChallengeInput) (*models.Challenge, error) {
	if input.RaceTo < 1 {
		return nil, fmt.Errorf("%w: race_to must be at least 1", ErrValidationFailed)
	}
	if input.SpaStake < 0 {
		return nil, fmt.Errorf("%w: spa_stake cannot be negative", ErrValidationFailed)
	}
	if input.SpaStake > 0 {
		ranking, err := s.ranking.GetPlayerRanking(ctx, challengerID)
		if err != nil {
			return nil, err
		}
		if ranking.SpaPoints < input.SpaStake {
			return nil, ErrInsufficientSpaBalance
		}
	}

	challenge := &models.Challenge{
		RoomCode:     newRoomCode(),
		ChallengerID: challengerID,
		OpponentID:   input.OpponentID,
		ClubID:       input.ClubID,
		RaceTo:       input.RaceTo,
		SpaStake:     input.SpaStake,
		Status:       models.ChallengeOpen,
		ExpiresAt:    time.Now().Add(challengeTTL),
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.Info("challenge created",
		slog.Int("challenge_id", challenge.ID),
		slog.Int("challenger_id", challengerID),
		slog.Int("spa_stake", input.SpaStake))
	return challenge, nil
}

func (s *challengeService) GetByRoomCode(ctx context.Context, roomCode string) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.GetByRoomCode(ctx, strings.ToUpper(strings.TrimSpace(roomCode)))
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge by room code: %w", err)
	}
	return challenge, nil
}

func (s *challengeService) ListOpen(ctx context.Context, clubID *int) ([]*models.Challenge, error) {
	challenges, err := s.challengeRepo.ListOpen(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open challenges: %w", err)
	}
	return challenges, nil
}

func (s *challengeService) ListByUser(ctx context.Context, userID int) ([]*models.Challenge, error) {
	challenges, err := s.challengeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges for user %d: %w", userID, err)
	}
	return challenges, nil
}

func (s *challengeService) Accept(ctx context.Context, challengeID int, opponentID int) (*models.Challenge, error) {
	challenge, err := s.load(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != models.ChallengeOpen || challenge.ExpiresAt.Before(time.Now()) {
		return nil, ErrChallengeNotOpen
	}
	if challenge.ChallengerID == opponentID {
		return nil, ErrChallengeSelfAccept
	}
	// A directed challenge can only be taken by its addressee.
	if challenge.OpponentID != nil && *challenge.OpponentID != opponentID {
		return nil, ErrForbiddenOperation
	}
	if challenge.SpaStake > 0 {
		ranking, err := s.ranking.GetPlayerRanking(ctx, opponentID)
		if err != nil {
			return nil, err
		}
		if ranking.SpaPoints < challenge.SpaStake {
			return nil, ErrInsufficientSpaBalance
		}
	}

	if err := s.challengeRepo.Accept(ctx, challengeID, opponentID); err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotOpen
		}
		return nil, fmt.Errorf("failed to accept challenge %d: %w", challengeID, err)
	}

	challenge.OpponentID = &opponentID
	challenge.Status = models.ChallengeAccepted
	return challenge, nil
}

func (s *challengeService) Decline(ctx context.Context, challengeID int, actorID int) error {
	challenge, err := s.load(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge.ChallengerID != actorID {
		return ErrForbiddenOperation
	}
	if challenge.Status != models.ChallengeOpen {
		return ErrChallengeNotOpen
	}
	return s.challengeRepo.UpdateStatus(ctx, challengeID, models.ChallengeDeclined)
}

func (s *challengeService) SubmitResult(ctx context.Context, challengeID int, actorID int, input ChallengeResultInput) (*models.Challenge, error) {
	challenge, err := s.load(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != models.ChallengeAccepted || challenge.OpponentID == nil {
		return nil, ErrChallengeNotAccepted
	}
	if actorID != challenge.ChallengerID && actorID != *challenge.OpponentID {
		return nil, ErrPlayerNotInMatch
	}
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, ErrNegativeScore
	}
	if input.ScoreA == input.ScoreB {
		return nil, ErrTieNotPermitted
	}
	// Race-to scoring: exactly one side reaches the target.
	if input.ScoreA != challenge.RaceTo && input.ScoreB != challenge.RaceTo {
		return nil, fmt.Errorf("%w: one score must equal race_to (%d)", ErrValidationFailed, challenge.RaceTo)
	}

	winnerID, loserID := challenge.ChallengerID, *challenge.OpponentID
	if input.ScoreB > input.ScoreA {
		winnerID, loserID = loserID, winnerID
	}
	challenge.WinnerID = &winnerID
	challenge.ScoreA = &input.ScoreA
	challenge.ScoreB = &input.ScoreB
	challenge.Status = models.ChallengeCompleted

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.challengeRepo.Complete(ctx, tx, challenge); err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotAccepted
		}
		return nil, fmt.Errorf("failed to complete challenge %d: %w", challengeID, err)
	}
	if err := s.ranking.ApplyMatchResult(ctx, tx, winnerID, loserID, false); err != nil {
		return nil, fmt.Errorf("failed to apply ranking update: %w", err)
	}
	if challenge.SpaStake > 0 {
		if err := s.ranking.AwardSpaPoints(ctx, tx, winnerID, challenge.SpaStake); err != nil {
			return nil, fmt.Errorf("failed to credit stake: %w", err)
		}
		if err := s.ranking.AwardSpaPoints(ctx, tx, loserID, -challenge.SpaStake); err != nil {
			return nil, fmt.Errorf("failed to debit stake: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit challenge result: %w", err)
	}

	s.logger.Info("challenge completed",
		slog.Int("challenge_id", challengeID),
		slog.Int("winner_id", winnerID),
		slog.Int("spa_stake", challenge.SpaStake))
	return challenge, nil
}

func (s *challengeService) load(ctx context.Context, challengeID int) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge %d: %w", challengeID, err)
	}
	return challenge, nil
}

// newRoomCode returns a short shareable code, uppercased for readability.
func newRoomCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
