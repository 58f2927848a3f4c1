package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/realtime"
	"github.com/saboarena/sabo-platform/repositories"
	"github.com/saboarena/sabo-platform/sabo"
)

// FullTournamentData bundles everything a tournament page needs in one
// response: the tournament itself, its registrations and the bracket view.
type FullTournamentData struct {
	Tournament    *models.Tournament     `json:"tournament"`
	Registrations []*models.Registration `json:"registrations"`
	Bracket       *BracketView           `json:"bracket,omitempty"`
	MatchCount    int                    `json:"match_count"`
}

type BracketService interface {
	// GenerateBracket seeds the full fixed match set from the confirmed
	// registrations and activates the tournament.
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error)
	// RepairBracket discards every match and regenerates from scratch.
	// Completed results are lost; this is an organizer-only recovery tool.
	RepairBracket(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error)
	GetFullTournamentData(ctx context.Context, tournamentID int) (*FullTournamentData, error)
}

type bracketService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.SaboMatchRepository
	matchService     MatchService
	hub              *realtime.Hub
	logger           *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.SaboMatchRepository,
	matchService MatchService,
	hub *realtime.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		matchService:     matchService,
		hub:              hub,
		logger:           logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing matches: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrBracketAlreadyExists
	}

	return s.generate(ctx, tournament)
}

func (s *bracketService) RepairBracket(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.generateWith(ctx, tournament, func(ctx context.Context, tx *sql.Tx) error {
		deleted, err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		s.logger.Warn("bracket repair discarded matches",
			slog.Int("tournament_id", tournamentID),
			slog.Int("deleted", deleted))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *bracketService) generate(ctx context.Context, tournament *models.Tournament) ([]*models.SaboMatch, error) {
	return s.generateWith(ctx, tournament, nil)
}

// generateWith seeds players from the confirmed registrations (seed order,
// then registration order) and inserts the complete fixed match set in one
// transaction. The prepare hook runs first inside the same transaction.
func (s *bracketService) generateWith(ctx context.Context, tournament *models.Tournament, prepare func(context.Context, *sql.Tx) error) ([]*models.SaboMatch, error) {
	size := sabo.Size(tournament.BracketSize)
	if !size.Valid() {
		return nil, ErrInvalidBracketSize
	}

	confirmed := models.RegistrationConfirmed
	regs, err := s.registrationRepo.ListByTournament(ctx, tournament.ID, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournament.ID, err)
	}
	if len(regs) < int(size) {
		return nil, ErrNotEnoughParticipants
	}

	playerIDs := make([]int, 0, int(size))
	for _, reg := range regs[:int(size)] {
		playerIDs = append(playerIDs, reg.UserID)
	}

	matches, err := sabo.Generate(tournament.ID, size, playerIDs)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if prepare != nil {
		if err := prepare(ctx, tx); err != nil {
			return nil, err
		}
	}
	for _, m := range matches {
		if err := s.matchRepo.Create(ctx, tx, m); err != nil {
			return nil, fmt.Errorf("failed to insert %s round %d match %d: %w",
				m.BracketType, m.RoundNumber, m.MatchNumber, err)
		}
	}
	// Record the draw order on the registrations that made the cut.
	for i, reg := range regs[:int(size)] {
		if err := s.registrationRepo.UpdateSeed(ctx, tx, reg.ID, i+1); err != nil {
			return nil, fmt.Errorf("failed to record seed for registration %d: %w", reg.ID, err)
		}
	}
	if tournament.Status != models.StatusActive {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.StatusActive); err != nil {
			return nil, fmt.Errorf("failed to activate tournament %d: %w", tournament.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket generation: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournament.ID), realtime.Event{
			Type:    realtime.EventBracketUpdated,
			Payload: map[string]interface{}{"tournament_id": tournament.ID, "matches": len(matches)},
		})
	}
	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("size", int(size)),
		slog.Int("matches", len(matches)))

	return matches, nil
}

// GetFullTournamentData loads tournament, registrations and bracket
// concurrently.
func (s *bracketService) GetFullTournamentData(ctx context.Context, tournamentID int) (*FullTournamentData, error) {
	data := &FullTournamentData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tournament, err := s.loadTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		data.Tournament = tournament
		return nil
	})
	g.Go(func() error {
		regs, err := s.registrationRepo.ListByTournament(gctx, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to list registrations: %w", err)
		}
		data.Registrations = regs
		return nil
	})
	g.Go(func() error {
		bracket, err := s.matchService.GetBracket(gctx, tournamentID)
		if err != nil {
			if errors.Is(err, ErrTournamentNotFound) {
				return err
			}
			// A tournament without a generated bracket is still viewable.
			return nil
		}
		data.Bracket = bracket
		data.MatchCount = bracket.Progress.TotalMatches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *bracketService) loadTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}
