package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/memory"
)

var testClock = time.Date(2026, 9, 10, 17, 0, 0, 0, time.UTC)

func newTestGameService() *GameService {
	svc := NewGameService(memory.NewGameRepository(memory.SeedGames()))
	svc.now = func() time.Time { return testClock }
	return svc
}

func TestGameService_CurrentWeek(t *testing.T) {
	t.Run("lowest unfinished week wins", func(t *testing.T) {
		svc := newTestGameService()

		week, err := svc.CurrentWeek(t.Context())
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if week != 2 {
			t.Fatalf("unexpected current week: got=%d want=2", week)
		}
	})

	t.Run("falls back to last week when season is done", func(t *testing.T) {
		past := testClock.Add(-30 * 24 * time.Hour)
		games := []game.Game{
			{ID: "g1", Week: 1, LockAt: past, Status: game.StatusFinal, Result: &game.Result{Winner: game.SideHome}},
			{ID: "g2", Week: 2, LockAt: past, Status: game.StatusFinal, Result: &game.Result{Winner: game.SideAway}},
		}
		svc := NewGameService(memory.NewGameRepository(games))
		svc.now = func() time.Time { return testClock }

		week, err := svc.CurrentWeek(t.Context())
		if err != nil {
			t.Fatalf("CurrentWeek error: %v", err)
		}
		if week != 2 {
			t.Fatalf("unexpected week: got=%d want=2", week)
		}
	})

	t.Run("empty catalog is not found", func(t *testing.T) {
		svc := NewGameService(memory.NewGameRepository(nil))

		if _, err := svc.CurrentWeek(t.Context()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGameService_WeekGames(t *testing.T) {
	svc := newTestGameService()

	week, games, err := svc.WeekGames(t.Context(), 0)
	if err != nil {
		t.Fatalf("WeekGames error: %v", err)
	}
	if week != 2 {
		t.Fatalf("unexpected derived week: got=%d want=2", week)
	}
	if len(games) != 1 || games[0].ID != "game_w2_sf_sea" {
		t.Fatalf("unexpected slate: %+v", games)
	}

	if _, _, err := svc.WeekGames(t.Context(), -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative week, got %v", err)
	}
}

func TestGameService_LockTime(t *testing.T) {
	svc := newTestGameService()

	week, lockAt, err := svc.LockTime(t.Context(), 3)
	if err != nil {
		t.Fatalf("LockTime error: %v", err)
	}
	if week != 3 {
		t.Fatalf("unexpected week: got=%d want=3", week)
	}
	want := testClock.Add(3 * 24 * time.Hour)
	if !lockAt.Equal(want) {
		t.Fatalf("unexpected lock time: got=%s want=%s", lockAt, want)
	}

	if _, _, err := svc.LockTime(t.Context(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty week, got %v", err)
	}
}
