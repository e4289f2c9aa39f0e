package usecase

import (
	"errors"
	"testing"

	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-api/internal/platform/id"
)

func newTestMembershipService() (*MembershipService, *memory.LeagueRepository) {
	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	svc := NewMembershipService(leagueRepo, id.NewRandomGenerator())
	return svc, leagueRepo
}

func TestMembershipService_JoinLifecycle(t *testing.T) {
	svc, leagueRepo := newTestMembershipService()
	ctx := t.Context()

	req, err := svc.Join(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice)
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if req.State != league.RequestPending {
		t.Fatalf("unexpected state: %s", req.State)
	}

	if _, err := svc.Join(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected duplicate join to fail, got %v", err)
	}

	accepted, err := svc.Accept(ctx, memory.LeagueIDFridayNight, req.ID, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if accepted.State != league.RequestAccepted {
		t.Fatalf("unexpected state: %s", accepted.State)
	}
	if member, _ := leagueRepo.IsMember(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); !member {
		t.Fatal("expected membership after accept")
	}

	standing, err := svc.Standing(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice)
	if err != nil {
		t.Fatalf("Standing error: %v", err)
	}
	if standing != "ACCEPTED" {
		t.Fatalf("unexpected standing: %s", standing)
	}

	if err := svc.Leave(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); err != nil {
		t.Fatalf("Leave error: %v", err)
	}
	standing, _ = svc.Standing(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice)
	if standing != "NONE" {
		t.Fatalf("expected NONE after leave, got %s", standing)
	}
}

func TestMembershipService_ClosedRegistrationRejectsJoin(t *testing.T) {
	svc, leagueRepo := newTestMembershipService()
	ctx := t.Context()

	if err := leagueRepo.SetRegistrationOpen(ctx, memory.LeagueIDFridayNight, false); err != nil {
		t.Fatalf("SetRegistrationOpen error: %v", err)
	}

	if _, err := svc.Join(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected closed registration to reject join, got %v", err)
	}

	// Existing standing can still be dropped while closed.
	if err := leagueRepo.AddMember(ctx, leagueMembership(memory.LeagueIDFridayNight, memory.UserIDBob)); err != nil {
		t.Fatalf("AddMember error: %v", err)
	}
	if err := svc.Leave(ctx, memory.LeagueIDFridayNight, memory.UserIDBob); err != nil {
		t.Fatalf("Leave while closed error: %v", err)
	}
}

func TestMembershipService_CommissionerGating(t *testing.T) {
	svc, _ := newTestMembershipService()
	ctx := t.Context()

	req, err := svc.Join(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice)
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}

	if _, err := svc.Accept(ctx, memory.LeagueIDFridayNight, req.ID, memory.UserIDBob); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on accept, got %v", err)
	}
	if err := svc.Reject(ctx, memory.LeagueIDFridayNight, req.ID, memory.UserIDBob); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on reject, got %v", err)
	}
	if _, err := svc.PendingRequests(ctx, memory.LeagueIDFridayNight, memory.UserIDBob); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on pending list, got %v", err)
	}

	pending, err := svc.PendingRequests(ctx, memory.LeagueIDFridayNight, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("PendingRequests error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != req.ID {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	if err := svc.Reject(ctx, memory.LeagueIDFridayNight, req.ID, memory.UserIDCommissioner); err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	standing, _ := svc.Standing(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice)
	if standing != "NONE" {
		t.Fatalf("expected NONE after reject, got %s", standing)
	}

	// Rejected users may apply again.
	if _, err := svc.Join(ctx, memory.LeagueIDFridayNight, memory.UserIDAlice); err != nil {
		t.Fatalf("re-join after reject error: %v", err)
	}
}

func TestMembershipService_CommissionerIsImplicitMember(t *testing.T) {
	svc, _ := newTestMembershipService()
	ctx := t.Context()

	if _, err := svc.Join(ctx, memory.LeagueIDFridayNight, memory.UserIDCommissioner); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected commissioner join to fail, got %v", err)
	}
	if err := svc.Leave(ctx, memory.LeagueIDFridayNight, memory.UserIDCommissioner); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected commissioner leave to fail, got %v", err)
	}

	standing, err := svc.Standing(ctx, memory.LeagueIDFridayNight, memory.UserIDCommissioner)
	if err != nil {
		t.Fatalf("Standing error: %v", err)
	}
	if standing != "ACCEPTED" {
		t.Fatalf("expected implicit ACCEPTED, got %s", standing)
	}

	members, err := svc.Members(ctx, memory.LeagueIDFridayNight)
	if err != nil {
		t.Fatalf("Members error: %v", err)
	}
	if len(members) != 1 || members[0].UserID != memory.UserIDCommissioner {
		t.Fatalf("expected commissioner listed first: %+v", members)
	}
}
