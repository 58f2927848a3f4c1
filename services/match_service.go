package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/realtime"
	"github.com/saboarena/sabo-platform/repositories"
	"github.com/saboarena/sabo-platform/sabo"
)

// ScoreSubmission is the payload of a score entry for a ready match.
type ScoreSubmission struct {
	MatchID      int  `json:"match_id"`
	ScorePlayer1 *int `json:"score_player1"`
	ScorePlayer2 *int `json:"score_player2"`
	SubmittedBy  int  `json:"-"`
}

// ScoreResult reports the outcome of a score submission, including the slot
// assignments the advancement cascade applied.
type ScoreResult struct {
	Success            bool                  `json:"success"`
	Match              *models.SaboMatch     `json:"match"`
	Assignments        []sabo.SlotAssignment `json:"assignments,omitempty"`
	TournamentAdvanced bool                  `json:"tournament_advanced"`
	ChampionID         *int                  `json:"champion_id,omitempty"`
}

// BracketView is the organized snapshot returned to bracket pages, with the
// structural validation attached. Invalid structure does not block the view.
type BracketView struct {
	Size       sabo.Size                           `json:"size"`
	Stages     map[sabo.BracketType][]*models.SaboMatch `json:"stages"`
	Validation sabo.ValidationResult               `json:"validation"`
	Progress   sabo.TournamentProgress             `json:"progress"`
}

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	GetProgress(ctx context.Context, tournamentID int) (*sabo.TournamentProgress, error)
	SubmitScore(ctx context.Context, sub ScoreSubmission) (*ScoreResult, error)
	CompleteTournament(ctx context.Context, tournamentID int) (*ScoreResult, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.SaboMatchRepository
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	ranking        RankingService
	hub            *realtime.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.SaboMatchRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	ranking RankingService,
	hub *realtime.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		ranking:        ranking,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	if err := s.attachPlayers(ctx, matches); err != nil {
		// Player details are display sugar; the match list stays usable.
		s.logger.Warn("failed to attach player details", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	return matches, nil
}

func (s *matchService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	size := sabo.Size(tournament.BracketSize)
	organized := sabo.Organize(matches, size)
	validation := sabo.ValidateStructure(organized, size)
	if !validation.Valid {
		// Structural problems degrade gracefully: log for an admin, keep serving.
		s.logger.Warn("bracket structure validation failed",
			slog.Int("tournament_id", tournamentID),
			slog.Any("errors", validation.Errors))
	}

	stages := make(map[sabo.BracketType][]*models.SaboMatch)
	for _, bt := range sabo.Brackets(size) {
		stages[bt] = organized.Bucket(bt)
	}
	return &BracketView{
		Size:       size,
		Stages:     stages,
		Validation: validation,
		Progress:   sabo.Progress(organized),
	}, nil
}

func (s *matchService) GetProgress(ctx context.Context, tournamentID int) (*sabo.TournamentProgress, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	progress := sabo.Progress(sabo.Organize(matches, sabo.Size(tournament.BracketSize)))
	return &progress, nil
}

// SubmitScore validates a score entry locally, then persists the result and
// cascades advancement in a single transaction: complete the match, place
// winner and loser into their destination slots, flip filled matches to
// ready, update both players' rankings and, on the deciding match, crown the
// champion. Validation failures never touch the database.
func (s *matchService) SubmitScore(ctx context.Context, sub ScoreSubmission) (*ScoreResult, error) {
	match, err := s.matchRepo.GetByID(ctx, sub.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", sub.MatchID, err)
	}

	if err := validateScoreSubmission(match, sub); err != nil {
		return nil, err
	}

	tournament, err := s.loadTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	size := sabo.Size(tournament.BracketSize)

	score1, score2 := *sub.ScorePlayer1, *sub.ScorePlayer2
	winnerID, loserID := *match.Player1ID, *match.Player2ID
	if score2 > score1 {
		winnerID, loserID = loserID, winnerID
	}
	match.ScorePlayer1 = &score1
	match.ScorePlayer2 = &score2
	match.WinnerID = &winnerID
	match.LoserID = &loserID
	match.Status = models.MatchStatusCompleted

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.CompleteMatch(ctx, tx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			// The guarded update matched no row: someone else scored first.
			return nil, ErrMatchAlreadyScored
		}
		return nil, fmt.Errorf("failed to complete match %d: %w", match.ID, err)
	}

	// Resolve destinations against the current snapshot and apply them.
	matches, err := s.matchRepo.ListByTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload matches for tournament %d: %w", match.TournamentID, err)
	}
	organized := sabo.Organize(replaceMatch(matches, match), size)
	assignments := sabo.Resolve(match, organized)

	for _, a := range assignments {
		if err := s.matchRepo.AssignPlayerSlot(ctx, tx, a.TargetMatchID, string(a.Slot), a.PlayerID); err != nil {
			return nil, fmt.Errorf("failed to assign player %d to match %d: %w", a.PlayerID, a.TargetMatchID, err)
		}
	}
	for _, a := range assignments {
		if err := s.matchRepo.MarkReady(ctx, tx, a.TargetMatchID); err != nil {
			return nil, err
		}
	}

	if err := s.ranking.ApplyMatchResult(ctx, tx, winnerID, loserID, true); err != nil {
		return nil, fmt.Errorf("failed to apply ranking update: %w", err)
	}

	result := &ScoreResult{Success: true, Match: match, Assignments: assignments}
	if sabo.IsChampionMatch(match, size) {
		if err := s.crownChampion(ctx, tx, tournament, winnerID, loserID); err != nil {
			return nil, err
		}
		result.TournamentAdvanced = true
		result.ChampionID = &winnerID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score submission: %w", err)
	}

	s.broadcast(tournament.ID, realtime.EventMatchUpdated, match)
	if result.ChampionID != nil {
		s.broadcast(tournament.ID, realtime.EventTournamentCompleted, map[string]interface{}{
			"tournament_id": tournament.ID,
			"champion_id":   *result.ChampionID,
		})
	} else if len(assignments) > 0 {
		s.broadcast(tournament.ID, realtime.EventBracketUpdated, assignments)
	}

	s.logger.Info("score submitted",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", tournament.ID),
		slog.Int("winner_id", winnerID),
		slog.Int("submitted_by", sub.SubmittedBy),
		slog.Int("assignments", len(assignments)))

	return result, nil
}

// CompleteTournament is the administrator escape hatch: if the deciding match
// is already scored but the automatic cascade did not finalize the
// tournament, crown the champion from the recorded result.
func (s *matchService) CompleteTournament(ctx context.Context, tournamentID int) (*ScoreResult, error) {
	tournament, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}

	size := sabo.Size(tournament.BracketSize)
	var final *models.SaboMatch
	for _, m := range matches {
		if sabo.IsChampionMatch(m, size) {
			final = m
			break
		}
	}
	if final == nil || final.Status != models.MatchStatusCompleted || final.WinnerID == nil {
		return nil, ErrFinalNotReady
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.crownChampion(ctx, tx, tournament, *final.WinnerID, derefOr(final.LoserID, 0)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tournament completion: %w", err)
	}

	s.broadcast(tournamentID, realtime.EventTournamentCompleted, map[string]interface{}{
		"tournament_id": tournamentID,
		"champion_id":   *final.WinnerID,
	})
	return &ScoreResult{Success: true, Match: final, TournamentAdvanced: true, ChampionID: final.WinnerID}, nil
}

func (s *matchService) crownChampion(ctx context.Context, tx repositories.SQLExecutor, tournament *models.Tournament, championID, runnerUpID int) error {
	if err := s.tournamentRepo.SetChampion(ctx, tx, tournament.ID, championID); err != nil {
		return fmt.Errorf("failed to set champion for tournament %d: %w", tournament.ID, err)
	}
	if err := s.ranking.AwardSpaPoints(ctx, tx, championID, PlacementSpaPoints(tournament.BracketSize, 1)); err != nil {
		return fmt.Errorf("failed to award champion prize: %w", err)
	}
	if runnerUpID != 0 {
		if err := s.ranking.AwardSpaPoints(ctx, tx, runnerUpID, PlacementSpaPoints(tournament.BracketSize, 2)); err != nil {
			return fmt.Errorf("failed to award runner-up prize: %w", err)
		}
	}
	return nil
}

// validateScoreSubmission enforces the local scoring rules before anything
// reaches the database: the match must be ready, both scores present and
// non-negative, and ties are rejected outright.
func validateScoreSubmission(match *models.SaboMatch, sub ScoreSubmission) error {
	if match.Status == models.MatchStatusCompleted {
		return ErrMatchAlreadyScored
	}
	if !match.IsReady() {
		return ErrMatchNotReady
	}
	if sub.ScorePlayer1 == nil || sub.ScorePlayer2 == nil {
		return ErrScoresMissing
	}
	if *sub.ScorePlayer1 < 0 || *sub.ScorePlayer2 < 0 {
		return ErrNegativeScore
	}
	if *sub.ScorePlayer1 == *sub.ScorePlayer2 {
		return ErrTieNotPermitted
	}
	return nil
}

func (s *matchService) loadTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}

func (s *matchService) attachPlayers(ctx context.Context, matches []*models.SaboMatch) error {
	idSet := make(map[int]bool)
	for _, m := range matches {
		if m.Player1ID != nil {
			idSet[*m.Player1ID] = true
		}
		if m.Player2ID != nil {
			idSet[*m.Player2ID] = true
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, m := range matches {
		if m.Player1ID != nil {
			m.Player1 = byID[*m.Player1ID]
		}
		if m.Player2ID != nil {
			m.Player2 = byID[*m.Player2ID]
		}
	}
	return nil
}

func (s *matchService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), realtime.Event{Type: eventType, Payload: payload})
}

// replaceMatch swaps the updated match into the freshly loaded list so the
// snapshot reflects the completion that just happened in this transaction.
func replaceMatch(matches []*models.SaboMatch, updated *models.SaboMatch) []*models.SaboMatch {
	for i, m := range matches {
		if m.ID == updated.ID {
			matches[i] = updated
			break
		}
	}
	return matches
}

func derefOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
