package usecase

import (
	"errors"
	"testing"

	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-api/internal/platform/id"
)

func newTestLeagueService() (*LeagueService, *memory.MatchupRepository) {
	matchupRepo := memory.NewMatchupRepository()
	svc := NewLeagueService(
		memory.NewLeagueRepository(memory.SeedLeagues()),
		matchupRepo,
		memory.NewUserRepository(memory.SeedUsers()),
		id.NewRandomGenerator(),
	)
	return svc, matchupRepo
}

func TestLeagueService_CreateLeague(t *testing.T) {
	svc, _ := newTestLeagueService()
	ctx := t.Context()

	lg, err := svc.CreateLeague(ctx, "Office Pool", memory.UserIDBob)
	if err != nil {
		t.Fatalf("CreateLeague error: %v", err)
	}
	if lg.CommissionerID != memory.UserIDBob || !lg.RegistrationOpen {
		t.Fatalf("unexpected league: %+v", lg)
	}

	if _, err := svc.CreateLeague(ctx, "", memory.UserIDBob); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.CreateLeague(ctx, "Ghost Pool", "user-ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown commissioner, got %v", err)
	}
}

func TestLeagueService_DeleteLeague(t *testing.T) {
	svc, _ := newTestLeagueService()
	ctx := t.Context()

	if err := svc.DeleteLeague(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-commissioner, got %v", err)
	}

	if err := svc.DeleteLeague(ctx, memory.LeagueIDFridayNight, memory.UserIDCommissioner); err != nil {
		t.Fatalf("DeleteLeague error: %v", err)
	}
	if _, err := svc.GetLeague(ctx, memory.LeagueIDFridayNight); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLeagueService_SetRegistration(t *testing.T) {
	svc, _ := newTestLeagueService()
	ctx := t.Context()

	if _, err := svc.SetRegistration(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice, false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	lg, err := svc.SetRegistration(ctx, memory.LeagueIDFridayNight, memory.UserIDCommissioner, false)
	if err != nil {
		t.Fatalf("SetRegistration error: %v", err)
	}
	if lg.RegistrationOpen {
		t.Fatalf("expected registration closed: %+v", lg)
	}
}
