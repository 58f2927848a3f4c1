package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/repositories"
	"github.com/saboarena/sabo-platform/sabo"
)

type slotCall struct {
	matchID  int
	slot     string
	playerID int
}

type fakeMatchRepo struct {
	matches map[int]*models.SaboMatch
	byT     map[int][]*models.SaboMatch

	completeCalls int
	assigned      []slotCall
	markedReady   []int
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.SaboMatch) error {
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.SaboMatch, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.SaboMatch, error) {
	return f.byT[tournamentID], nil
}

func (f *fakeMatchRepo) CompleteMatch(ctx context.Context, exec repositories.SQLExecutor, m *models.SaboMatch) error {
	f.completeCalls++
	return nil
}

func (f *fakeMatchRepo) AssignPlayerSlot(ctx context.Context, exec repositories.SQLExecutor, matchID int, slot string, playerID int) error {
	f.assigned = append(f.assigned, slotCall{matchID: matchID, slot: slot, playerID: playerID})
	if m, ok := f.matches[matchID]; ok {
		id := playerID
		if slot == "player1" {
			m.Player1ID = &id
		} else {
			m.Player2ID = &id
		}
	}
	return nil
}

func (f *fakeMatchRepo) MarkReady(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	f.markedReady = append(f.markedReady, matchID)
	return nil
}

func (f *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	return 0, nil
}

type fakeTournamentRepo struct {
	tournament *models.Tournament
	champion   *int
}

func (f *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error { return nil }

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.tournament == nil || f.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	return f.tournament, nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	return nil, nil
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	return nil
}

func (f *fakeTournamentRepo) SetChampion(ctx context.Context, exec repositories.SQLExecutor, id int, championID int) error {
	f.champion = &championID
	return nil
}

func (f *fakeTournamentRepo) ListDueForStatusUpdate(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	return nil, nil
}

type fakeUserRepo struct{}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) UpdateProfile(ctx context.Context, u *models.User) error        { return nil }
func (f *fakeUserRepo) UpdateAvatarKey(ctx context.Context, id int, key *string) error { return nil }
func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.User, error) {
	return []*models.User{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMatchService(matchRepo *fakeMatchRepo, tournamentRepo *fakeTournamentRepo) MatchService {
	return NewMatchService(nil, matchRepo, tournamentRepo, &fakeUserRepo{}, nil, nil, testLogger())
}

func intPtr(v int) *int { return &v }

func readyMatch(id int) *models.SaboMatch {
	return &models.SaboMatch{
		ID:           id,
		TournamentID: 1,
		RoundNumber:  sabo.RoundWinners1,
		MatchNumber:  1,
		BracketType:  string(sabo.BracketWinners),
		Player1ID:    intPtr(10),
		Player2ID:    intPtr(20),
		Status:       models.MatchStatusReady,
	}
}

// Score validation runs before anything touches the database: the service is
// built with a nil pool, so reaching a transaction would panic the test.
func TestSubmitScoreRejectsTieLocally(t *testing.T) {
	repo := &fakeMatchRepo{matches: map[int]*models.SaboMatch{1: readyMatch(1)}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{})

	_, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      1,
		ScorePlayer1: intPtr(7),
		ScorePlayer2: intPtr(7),
	})
	assert.ErrorIs(t, err, ErrTieNotPermitted)
	assert.Zero(t, repo.completeCalls)
}

func TestSubmitScoreRequiresBothScores(t *testing.T) {
	repo := &fakeMatchRepo{matches: map[int]*models.SaboMatch{1: readyMatch(1)}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{})

	_, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      1,
		ScorePlayer1: intPtr(9),
	})
	assert.ErrorIs(t, err, ErrScoresMissing)
}

func TestSubmitScoreRejectsNegativeScores(t *testing.T) {
	repo := &fakeMatchRepo{matches: map[int]*models.SaboMatch{1: readyMatch(1)}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{})

	_, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      1,
		ScorePlayer1: intPtr(-1),
		ScorePlayer2: intPtr(9),
	})
	assert.ErrorIs(t, err, ErrNegativeScore)
}

func TestSubmitScoreRejectsPendingMatch(t *testing.T) {
	pending := readyMatch(1)
	pending.Player2ID = nil
	pending.Status = models.MatchStatusPending
	repo := &fakeMatchRepo{matches: map[int]*models.SaboMatch{1: pending}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{})

	_, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      1,
		ScorePlayer1: intPtr(9),
		ScorePlayer2: intPtr(7),
	})
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestSubmitScoreRejectsCompletedMatch(t *testing.T) {
	done := readyMatch(1)
	done.Status = models.MatchStatusCompleted
	repo := &fakeMatchRepo{matches: map[int]*models.SaboMatch{1: done}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{})

	_, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      1,
		ScorePlayer1: intPtr(9),
		ScorePlayer2: intPtr(7),
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyScored)
}

func TestSubmitScoreUnknownMatch(t *testing.T) {
	repo := &fakeMatchRepo{matches: map[int]*models.SaboMatch{}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{})

	_, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      99,
		ScorePlayer1: intPtr(9),
		ScorePlayer2: intPtr(7),
	})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestGetBracketReturnsOrganizedView(t *testing.T) {
	matches, err := sabo.Generate(1, sabo.Size16, seqPlayers(16))
	require.NoError(t, err)

	tournament := &models.Tournament{ID: 1, BracketSize: 16, Status: models.StatusActive}
	repo := &fakeMatchRepo{byT: map[int][]*models.SaboMatch{1: matches}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{tournament: tournament})

	view, err := svc.GetBracket(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, view.Validation.Valid)
	assert.Equal(t, sabo.Size16, view.Size)
	assert.Equal(t, sabo.TotalMatches16, view.Progress.TotalMatches)
	assert.Equal(t, "Winners Round 1", view.Progress.CurrentStage)
	assert.Len(t, view.Stages[sabo.BracketWinners], 14)
}

func TestGetProgressUnknownTournament(t *testing.T) {
	svc := newTestMatchService(&fakeMatchRepo{}, &fakeTournamentRepo{})

	_, err := svc.GetProgress(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestCompleteTournamentRequiresDecidedFinal(t *testing.T) {
	matches, err := sabo.Generate(1, sabo.Size16, seqPlayers(16))
	require.NoError(t, err)

	tournament := &models.Tournament{ID: 1, BracketSize: 16, Status: models.StatusActive}
	repo := &fakeMatchRepo{byT: map[int][]*models.SaboMatch{1: matches}}
	svc := newTestMatchService(repo, &fakeTournamentRepo{tournament: tournament})

	_, err = svc.CompleteTournament(context.Background(), 1)
	assert.ErrorIs(t, err, ErrFinalNotReady)
}

func seqPlayers(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

type matchResultCall struct {
	winnerID        int
	loserID         int
	tournamentMatch bool
}

type fakeRankingSvc struct {
	applied []matchResultCall
	awards  map[int]int
}

func (f *fakeRankingSvc) GetPlayerRanking(ctx context.Context, userID int) (*models.PlayerRanking, error) {
	return &models.PlayerRanking{UserID: userID, EloRating: DefaultEloRating}, nil
}

func (f *fakeRankingSvc) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerRanking, error) {
	return nil, nil
}

func (f *fakeRankingSvc) ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, winnerID, loserID int, tournamentMatch bool) error {
	f.applied = append(f.applied, matchResultCall{winnerID: winnerID, loserID: loserID, tournamentMatch: tournamentMatch})
	return nil
}

func (f *fakeRankingSvc) AwardSpaPoints(ctx context.Context, exec repositories.SQLExecutor, userID int, points int) error {
	if f.awards == nil {
		f.awards = make(map[int]int)
	}
	f.awards[userID] += points
	return nil
}

// bracketRepo seeds a fake repository with a generated 16 draw, ids assigned
// the way the database would on insert.
func bracketRepo(t *testing.T, tournamentID int) *fakeMatchRepo {
	t.Helper()
	matches, err := sabo.Generate(tournamentID, sabo.Size16, seqPlayers(16))
	require.NoError(t, err)

	byID := make(map[int]*models.SaboMatch, len(matches))
	for i, m := range matches {
		m.ID = i + 1
		byID[m.ID] = m
	}
	return &fakeMatchRepo{matches: byID, byT: map[int][]*models.SaboMatch{tournamentID: matches}}
}

func TestSubmitScoreCompletesMatchAndCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := bracketRepo(t, 1)
	organized := sabo.Organize(repo.byT[1], sabo.Size16)
	source := organized.Find(sabo.BracketWinners, sabo.RoundWinners1, 1)
	require.NotNil(t, source)

	tournaments := &fakeTournamentRepo{tournament: &models.Tournament{ID: 1, BracketSize: 16, Status: models.StatusActive}}
	rankings := &fakeRankingSvc{}
	svc := NewMatchService(db, repo, tournaments, &fakeUserRepo{}, rankings, nil, testLogger())

	result, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      source.ID,
		ScorePlayer1: intPtr(9),
		ScorePlayer2: intPtr(7),
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, 1, repo.completeCalls)
	require.NotNil(t, result.Match.WinnerID)
	assert.Equal(t, 1, *result.Match.WinnerID) // player1 had the higher score
	assert.Equal(t, 2, *result.Match.LoserID)
	assert.Equal(t, 9, *result.Match.ScorePlayer1)
	assert.Equal(t, 7, *result.Match.ScorePlayer2)
	assert.Equal(t, models.MatchStatusCompleted, result.Match.Status)
	assert.False(t, result.TournamentAdvanced)
	assert.Nil(t, result.ChampionID)

	winnerTarget := organized.Find(sabo.BracketWinners, sabo.RoundWinners2, 1)
	loserTarget := organized.Find(sabo.BracketLosersA, sabo.RoundLosersA1, 1)
	require.NotNil(t, winnerTarget)
	require.NotNil(t, loserTarget)
	assert.Equal(t, []slotCall{
		{matchID: winnerTarget.ID, slot: "player1", playerID: 1},
		{matchID: loserTarget.ID, slot: "player1", playerID: 2},
	}, repo.assigned)
	assert.ElementsMatch(t, []int{winnerTarget.ID, loserTarget.ID}, repo.markedReady)

	require.Len(t, rankings.applied, 1)
	assert.Equal(t, matchResultCall{winnerID: 1, loserID: 2, tournamentMatch: true}, rankings.applied[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitScoreFinalCrownsChampion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := bracketRepo(t, 1)
	organized := sabo.Organize(repo.byT[1], sabo.Size16)
	final := organized.Find(sabo.BracketFinal, sabo.RoundFinal, 1)
	require.NotNil(t, final)
	final.Player1ID = intPtr(7)
	final.Player2ID = intPtr(8)
	final.Status = models.MatchStatusReady

	tournaments := &fakeTournamentRepo{tournament: &models.Tournament{ID: 1, BracketSize: 16, Status: models.StatusActive}}
	rankings := &fakeRankingSvc{}
	svc := NewMatchService(db, repo, tournaments, &fakeUserRepo{}, rankings, nil, testLogger())

	result, err := svc.SubmitScore(context.Background(), ScoreSubmission{
		MatchID:      final.ID,
		ScorePlayer1: intPtr(7),
		ScorePlayer2: intPtr(9),
	})
	require.NoError(t, err)

	assert.True(t, result.TournamentAdvanced)
	require.NotNil(t, result.ChampionID)
	assert.Equal(t, 8, *result.ChampionID) // player2 won the final
	require.NotNil(t, tournaments.champion)
	assert.Equal(t, 8, *tournaments.champion)
	assert.Empty(t, result.Assignments)

	assert.Equal(t, PlacementSpaPoints(16, 1), rankings.awards[8])
	assert.Equal(t, PlacementSpaPoints(16, 2), rankings.awards[7])
	assert.NoError(t, mock.ExpectationsWereMet())
}
