package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-api/internal/platform/cache"
	"github.com/pickemhq/pickem-api/internal/platform/id"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
)

type stubFeed struct {
	results []FeedResult
	err     error
	calls   int
}

func (f *stubFeed) FetchWeek(_ context.Context, _ int) ([]FeedResult, error) {
	f.calls++
	return f.results, f.err
}

func newResultsSyncFixture(t *testing.T, feed *stubFeed) (*ResultsSyncService, *memory.GameRepository) {
	t.Helper()

	gameRepo := memory.NewGameRepository(memory.SeedGames())
	pickRepo := memory.NewPickRepository(gameRepo)
	userRepo := memory.NewUserRepository(memory.SeedUsers())
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	matchupRepo := memory.NewMatchupRepository()
	scores := NewScoringService(gameRepo, pickRepo, userRepo, leagueRepo, cache.NewStore(time.Minute))
	tournaments := NewTournamentService(leagueRepo, matchupRepo, gameRepo, scores, id.NewRandomGenerator(), DefaultMinStartingWeek)
	svc := NewResultsSyncService(feed, gameRepo, leagueRepo, scores, tournaments, logging.NewNop())

	return svc, gameRepo
}

func TestResultsSyncService_SyncWeek(t *testing.T) {
	feed := &stubFeed{results: []FeedResult{
		{GameID: "game_w2_sf_sea", Status: game.StatusFinal, HomeScore: 30, AwayScore: 13, Winner: game.SideHome},
		{GameID: "game_w1_phi_dal", Status: game.StatusFinal, HomeScore: 27, AwayScore: 20, Winner: game.SideHome},
		{GameID: "unknown", Status: game.StatusFinal, Winner: game.SideAway},
	}}
	svc, gameRepo := newResultsSyncFixture(t, feed)

	result, err := svc.SyncWeek(t.Context(), 2)
	if err != nil {
		t.Fatalf("SyncWeek error: %v", err)
	}
	// The already-final game and the unknown id are both skipped.
	if result.GamesUpdated != 1 {
		t.Fatalf("unexpected updated count: %+v", result)
	}

	g, _, err := gameRepo.GetByID(t.Context(), "game_w2_sf_sea")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if !g.Final() || g.Result.Winner != game.SideHome {
		t.Fatalf("expected game finalized: %+v", g)
	}
}

func TestResultsSyncService_FeedDownIsDependencyFailure(t *testing.T) {
	feed := &stubFeed{err: errors.New("upstream 503")}
	svc, gameRepo := newResultsSyncFixture(t, feed)

	if _, err := svc.SyncWeek(t.Context(), 2); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	g, _, err := gameRepo.GetByID(t.Context(), "game_w2_sf_sea")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if g.Final() {
		t.Fatalf("feed failure must not change local state: %+v", g)
	}
}

func TestResultsSyncService_FinalsAreTerminal(t *testing.T) {
	feed := &stubFeed{results: []FeedResult{
		{GameID: "game_w1_phi_dal", Status: game.StatusFinal, HomeScore: 3, AwayScore: 45, Winner: game.SideAway},
	}}
	svc, gameRepo := newResultsSyncFixture(t, feed)

	result, err := svc.SyncWeek(t.Context(), 1)
	if err != nil {
		t.Fatalf("SyncWeek error: %v", err)
	}
	if result.GamesUpdated != 0 {
		t.Fatalf("expected no rewrite of a final game: %+v", result)
	}

	g, _, _ := gameRepo.GetByID(t.Context(), "game_w1_phi_dal")
	if g.Result.Winner != game.SideHome {
		t.Fatalf("final result must not be overwritten: %+v", g.Result)
	}
}
