package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/repositories"
)

type CreateTournamentRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ClubID      *int      `json:"club_id"`
	BracketSize int       `json:"bracket_size"`
	RegDate     time.Time `json:"reg_date"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, req CreateTournamentRequest) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	Register(ctx context.Context, tournamentID, userID int) (*models.Registration, error)
	ListRegistrations(ctx context.Context, tournamentID int) ([]*models.Registration, error)
	ConfirmRegistration(ctx context.Context, registrationID int) error
	WithdrawRegistration(ctx context.Context, registrationID int, userID int) error
	// AutoUpdateTournamentStatusesByDates advances soon -> registration and
	// registration -> active for tournaments whose dates have passed. Called
	// by the background scheduler.
	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	userRepo         repositories.UserRepository
	logger           *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, req CreateTournamentRequest) (*models.Tournament, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if req.BracketSize != 16 && req.BracketSize != 32 {
		return nil, ErrInvalidBracketSize
	}
	if !req.RegDate.Before(req.StartDate) {
		return nil, ErrTournamentInvalidRegDate
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, ErrTournamentInvalidDateRange
	}

	status := models.StatusSoon
	if !req.RegDate.After(time.Now()) {
		status = models.StatusRegistration
	}

	tournament := &models.Tournament{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ClubID:      req.ClubID,
		OrganizerID: organizerID,
		BracketSize: req.BracketSize,
		RegDate:     req.RegDate,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("organizer_id", organizerID),
		slog.Int("bracket_size", tournament.BracketSize))
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// validTransitions enumerates the allowed manual status moves. Completion
// happens through the score flow, never through this endpoint.
var validTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusSoon:         {models.StatusRegistration, models.StatusCanceled},
	models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
	models.StatusActive:       {models.StatusCanceled},
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range validTransitions[tournament.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrTournamentInvalidStatusTransition
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	s.logger.Info("tournament status updated",
		slog.Int("tournament_id", id),
		slog.String("from", string(tournament.Status)),
		slog.String("to", string(status)))
	return nil
}

func (s *tournamentService) Register(ctx context.Context, tournamentID, userID int) (*models.Registration, error) {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}

	count, err := s.registrationRepo.CountByTournament(ctx, tournamentID, models.RegistrationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= tournament.BracketSize {
		return nil, ErrTournamentFull
	}

	reg := &models.Registration{
		TournamentID: tournamentID,
		UserID:       userID,
		Status:       models.RegistrationPending,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

func (s *tournamentService) ListRegistrations(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	regs, err := s.registrationRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	if err := s.attachUsers(ctx, regs); err != nil {
		s.logger.Warn("failed to attach registration users",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	return regs, nil
}

func (s *tournamentService) ConfirmRegistration(ctx context.Context, registrationID int) error {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load registration %d: %w", registrationID, err)
	}

	tournament, err := s.GetByID(ctx, reg.TournamentID)
	if err != nil {
		return err
	}
	count, err := s.registrationRepo.CountByTournament(ctx, reg.TournamentID, models.RegistrationConfirmed)
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= tournament.BracketSize {
		return ErrTournamentFull
	}
	return s.registrationRepo.UpdateStatus(ctx, registrationID, models.RegistrationConfirmed)
}

func (s *tournamentService) WithdrawRegistration(ctx context.Context, registrationID int, userID int) error {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load registration %d: %w", registrationID, err)
	}
	if reg.UserID != userID {
		return ErrForbiddenOperation
	}
	tournament, err := s.GetByID(ctx, reg.TournamentID)
	if err != nil {
		return err
	}
	if tournament.Status == models.StatusActive || tournament.Status == models.StatusCompleted {
		return ErrTournamentNotActive
	}
	return s.registrationRepo.UpdateStatus(ctx, registrationID, models.RegistrationWithdrawn)
}

func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	now := time.Now()
	due, err := s.tournamentRepo.ListDueForStatusUpdate(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due tournaments: %w", err)
	}

	for _, t := range due {
		var next models.TournamentStatus
		switch {
		case t.Status == models.StatusSoon && !t.RegDate.After(now):
			next = models.StatusRegistration
		case t.Status == models.StatusRegistration && !t.StartDate.After(now):
			next = models.StatusActive
		default:
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to auto-update tournament status",
				slog.Int("tournament_id", t.ID),
				slog.String("to", string(next)),
				slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament status auto-updated",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)))
	}
	return nil
}

func (s *tournamentService) attachUsers(ctx context.Context, regs []*models.Registration) error {
	ids := make([]int, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.UserID)
	}
	if len(ids) == 0 {
		return nil
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, reg := range regs {
		reg.User = byID[reg.UserID]
	}
	return nil
}
