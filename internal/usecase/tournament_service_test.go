package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/matchup"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-api/internal/platform/cache"
	"github.com/pickemhq/pickem-api/internal/platform/id"
)

type tournamentFixture struct {
	svc         *TournamentService
	gameRepo    *memory.GameRepository
	pickRepo    *memory.PickRepository
	leagueRepo  *memory.LeagueRepository
	matchupRepo *memory.MatchupRepository
}

func newTournamentFixture(t *testing.T, games []game.Game) tournamentFixture {
	t.Helper()

	gameRepo := memory.NewGameRepository(games)
	pickRepo := memory.NewPickRepository(gameRepo)
	userRepo := memory.NewUserRepository(memory.SeedUsers())
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	matchupRepo := memory.NewMatchupRepository()
	scores := NewScoringService(gameRepo, pickRepo, userRepo, leagueRepo, cache.NewStore(time.Minute))
	svc := NewTournamentService(leagueRepo, matchupRepo, gameRepo, scores, id.NewRandomGenerator(), DefaultMinStartingWeek)

	ctx := t.Context()
	for _, userID := range []string{memory.UserIDAlice, memory.UserIDBob, memory.UserIDCarol} {
		if err := leagueRepo.AddMember(ctx, leagueMembership(memory.LeagueIDFridayNight, userID)); err != nil {
			t.Fatalf("AddMember error: %v", err)
		}
	}

	return tournamentFixture{
		svc:         svc,
		gameRepo:    gameRepo,
		pickRepo:    pickRepo,
		leagueRepo:  leagueRepo,
		matchupRepo: matchupRepo,
	}
}

// spyLeagueRepo and spyMatchupRepo count the calls the create path can
// reach, proving an early validation failure touched nothing.
type spyLeagueRepo struct {
	*memory.LeagueRepository
	calls int
}

func (r *spyLeagueRepo) GetLeagueByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	r.calls++
	return r.LeagueRepository.GetLeagueByID(ctx, leagueID)
}

func (r *spyLeagueRepo) IsMember(ctx context.Context, leagueID, userID string) (bool, error) {
	r.calls++
	return r.LeagueRepository.IsMember(ctx, leagueID, userID)
}

type spyMatchupRepo struct {
	*memory.MatchupRepository
	calls int
}

func (r *spyMatchupRepo) GetLatestTournamentByLeague(ctx context.Context, leagueID string) (matchup.Tournament, bool, error) {
	r.calls++
	return r.MatchupRepository.GetLatestTournamentByLeague(ctx, leagueID)
}

func (r *spyMatchupRepo) ListMatchupsByTournament(ctx context.Context, tournamentID string) ([]matchup.Matchup, error) {
	r.calls++
	return r.MatchupRepository.ListMatchupsByTournament(ctx, tournamentID)
}

func (r *spyMatchupRepo) CreateTournament(ctx context.Context, t matchup.Tournament, matchups []matchup.Matchup) error {
	r.calls++
	return r.MatchupRepository.CreateTournament(ctx, t, matchups)
}

func TestTournamentService_CreateBelowMinimumTouchesNothing(t *testing.T) {
	leagueRepo := &spyLeagueRepo{LeagueRepository: memory.NewLeagueRepository(memory.SeedLeagues())}
	matchupRepo := &spyMatchupRepo{MatchupRepository: memory.NewMatchupRepository()}
	gameRepo := memory.NewGameRepository(memory.SeedGames())
	scores := NewScoringService(gameRepo, memory.NewPickRepository(gameRepo), memory.NewUserRepository(memory.SeedUsers()), leagueRepo, cache.NewStore(time.Minute))
	svc := NewTournamentService(leagueRepo, matchupRepo, gameRepo, scores, id.NewRandomGenerator(), DefaultMinStartingWeek)

	_, err := svc.Create(t.Context(), memory.LeagueIDFridayNight, 10, memory.UserIDCommissioner)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if leagueRepo.calls != 0 || matchupRepo.calls != 0 {
		t.Fatalf("early validation must not reach repositories: league=%d matchup=%d", leagueRepo.calls, matchupRepo.calls)
	}
}

func TestTournamentService_CreateSeedsFromStandings(t *testing.T) {
	fx := newTournamentFixture(t, memory.SeedGames())
	ctx := t.Context()

	bracket, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 14, memory.UserIDAlice)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !bracket.Active {
		t.Fatal("fresh bracket must be active")
	}
	if bracket.Tournament.StartingWeek != 14 {
		t.Fatalf("unexpected starting week: %d", bracket.Tournament.StartingWeek)
	}
	if len(bracket.Matchups) != 2 {
		t.Fatalf("expected two round-1 matchups for four members, got %+v", bracket.Matchups)
	}
	for _, m := range bracket.Matchups {
		if m.Round != 1 || m.Week != 14 {
			t.Fatalf("unexpected matchup slot: %+v", m)
		}
		if m.HomeUserID == "" || m.AwayUserID == "" {
			t.Fatalf("power-of-two seeding must not leave byes: %+v", m)
		}
	}

	// 1vN pairing: the top seed faces the bottom seed.
	seeds := []string{bracket.Matchups[0].HomeUserID, bracket.Matchups[1].HomeUserID,
		bracket.Matchups[1].AwayUserID, bracket.Matchups[0].AwayUserID}
	seen := make(map[string]bool, len(seeds))
	for _, userID := range seeds {
		if seen[userID] {
			t.Fatalf("user seeded twice: %s", userID)
		}
		seen[userID] = true
	}

	if _, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 14, memory.UserIDBob); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected second active tournament to fail, got %v", err)
	}
}

func TestTournamentService_CreateRequiresMembership(t *testing.T) {
	fx := newTournamentFixture(t, memory.SeedGames())

	if err := fx.leagueRepo.RemoveMember(t.Context(), memory.LeagueIDFridayNight, memory.UserIDCarol); err != nil {
		t.Fatalf("RemoveMember error: %v", err)
	}
	if _, err := fx.svc.Create(t.Context(), memory.LeagueIDFridayNight, 14, memory.UserIDCarol); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-member, got %v", err)
	}
}

func TestTournamentService_WinnerSetOnce(t *testing.T) {
	fx := newTournamentFixture(t, memory.SeedGames())
	ctx := t.Context()

	bracket, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 14, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	m := bracket.Matchups[0]

	if _, err := fx.svc.SetWinner(ctx, m.ID, "user-nobody"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected non-participant winner to fail, got %v", err)
	}

	decided, err := fx.svc.SetWinner(ctx, m.ID, m.HomeUserID)
	if err != nil {
		t.Fatalf("SetWinner error: %v", err)
	}
	if decided.WinnerID != m.HomeUserID {
		t.Fatalf("unexpected winner: %+v", decided)
	}

	if _, err := fx.svc.SetWinner(ctx, m.ID, m.AwayUserID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected decided matchup to be terminal, got %v", err)
	}
}

func TestTournamentService_AdvanceRounds(t *testing.T) {
	fx := newTournamentFixture(t, memory.SeedGames())
	ctx := t.Context()

	bracket, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 14, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// One undecided matchup blocks the next round.
	if _, err := fx.svc.SetWinner(ctx, bracket.Matchups[0].ID, bracket.Matchups[0].HomeUserID); err != nil {
		t.Fatalf("SetWinner error: %v", err)
	}
	created, err := fx.svc.AdvanceRounds(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("AdvanceRounds error: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected no advancement with an open matchup, got %d", created)
	}

	if _, err := fx.svc.SetWinner(ctx, bracket.Matchups[1].ID, bracket.Matchups[1].AwayUserID); err != nil {
		t.Fatalf("SetWinner error: %v", err)
	}
	created, err = fx.svc.AdvanceRounds(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("AdvanceRounds error: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected one final matchup, got %d", created)
	}

	current, err := fx.svc.Get(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	final := current.Matchups[len(current.Matchups)-1]
	if final.Round != 2 || final.Week != 15 {
		t.Fatalf("unexpected final slot: %+v", final)
	}
	if final.HomeUserID != bracket.Matchups[0].HomeUserID || final.AwayUserID != bracket.Matchups[1].AwayUserID {
		t.Fatalf("unexpected finalists: %+v", final)
	}

	if _, err := fx.svc.SetWinner(ctx, final.ID, final.HomeUserID); err != nil {
		t.Fatalf("SetWinner error: %v", err)
	}
	created, err = fx.svc.AdvanceRounds(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("AdvanceRounds error: %v", err)
	}
	if created != 0 {
		t.Fatalf("a finished bracket must not grow, got %d", created)
	}

	done, err := fx.svc.Get(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if done.Active {
		t.Fatal("bracket with all winners must be inactive")
	}
}

func TestTournamentService_ResolveWeekUsesScores(t *testing.T) {
	games := append(memory.SeedGames(), game.Game{
		ID:       "game_w14_ne_nyj",
		Week:     14,
		HomeTeam: game.Team{Name: "New England Patriots", Abbreviation: "NE"},
		AwayTeam: game.Team{Name: "New York Jets", Abbreviation: "NYJ"},
		LockAt:   testClock.Add(-time.Hour),
		Status:   game.StatusFinal,
		Result:   &game.Result{Winner: game.SideHome, HomeScore: 24, AwayScore: 13},
	})
	fx := newTournamentFixture(t, games)
	ctx := t.Context()

	bracket, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 14, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// The away participant of the first matchup is the only correct
	// picker in week 14.
	winner := bracket.Matchups[0].AwayUserID
	if _, err := fx.pickRepo.Create(ctx, pick.Pick{UserID: winner, GameID: "game_w14_ne_nyj", Side: game.SideHome}); err != nil {
		t.Fatalf("Create pick error: %v", err)
	}

	resolved, err := fx.svc.ResolveWeek(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("ResolveWeek error: %v", err)
	}
	if resolved != 2 {
		t.Fatalf("expected both matchups resolved, got %d", resolved)
	}

	current, err := fx.svc.Get(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if current.Matchups[0].WinnerID != winner {
		t.Fatalf("expected away participant to win on points: %+v", current.Matchups[0])
	}
	// The second matchup had no scorers; the tie goes to the home seed.
	if current.Matchups[1].WinnerID != current.Matchups[1].HomeUserID {
		t.Fatalf("expected tie to favor the home seed: %+v", current.Matchups[1])
	}
}

func TestTournamentService_DeleteTearsDownBracket(t *testing.T) {
	fx := newTournamentFixture(t, memory.SeedGames())
	ctx := t.Context()

	if _, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 14, memory.UserIDCommissioner); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := fx.svc.Delete(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := fx.svc.Get(ctx, memory.LeagueIDFridayNight); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after teardown, got %v", err)
	}
	if err := fx.svc.Delete(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected repeat delete to be not found, got %v", err)
	}

	// Teardown frees the league for a fresh bracket.
	if _, err := fx.svc.Create(ctx, memory.LeagueIDFridayNight, 15, memory.UserIDCommissioner); err != nil {
		t.Fatalf("Create after delete error: %v", err)
	}
}
