package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/matchup"
	"github.com/pickemhq/pickem-api/internal/domain/user"
	"github.com/pickemhq/pickem-api/internal/platform/id"
)

type LeagueService struct {
	leagueRepo  league.Repository
	matchupRepo matchup.Repository
	userRepo    user.Repository
	ids         id.Generator
	now         func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, matchupRepo matchup.Repository, userRepo user.Repository, ids id.Generator) *LeagueService {
	return &LeagueService{
		leagueRepo:  leagueRepo,
		matchupRepo: matchupRepo,
		userRepo:    userRepo,
		ids:         ids,
		now:         time.Now,
	}
}

// CreateLeague opens a new league with the caller as its commissioner.
// The commissioner is never stored as a member row; membership checks
// treat them as implicitly accepted.
func (s *LeagueService) CreateLeague(ctx context.Context, name, commissionerID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	name = strings.TrimSpace(name)
	commissionerID = strings.TrimSpace(commissionerID)
	if name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	if commissionerID == "" {
		return league.League{}, fmt.Errorf("%w: commissioner id is required", ErrInvalidInput)
	}

	if _, exists, err := s.userRepo.GetByID(ctx, commissionerID); err != nil {
		return league.League{}, fmt.Errorf("get user: %w", err)
	} else if !exists {
		return league.League{}, fmt.Errorf("%w: user=%s", ErrNotFound, commissionerID)
	}

	leagueID, err := s.ids.NewID("lg_")
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	now := s.now().UTC()
	lg := league.League{
		ID:               leagueID,
		Name:             name,
		CommissionerID:   commissionerID,
		RegistrationOpen: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := lg.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.leagueRepo.CreateLeague(ctx, lg); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	return lg, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetLeagueByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return lg, nil
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	leagues, err := s.leagueRepo.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

// DeleteLeague tears a league down, including any bracket under it.
// Commissioner only.
func (s *LeagueService) DeleteLeague(ctx context.Context, leagueID, callerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.DeleteLeague")
	defer span.End()

	lg, err := s.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if lg.CommissionerID != callerID {
		return fmt.Errorf("%w: only the commissioner may delete league %s", ErrUnauthorized, leagueID)
	}

	if err := s.matchupRepo.DeleteByLeague(ctx, leagueID); err != nil {
		return fmt.Errorf("delete league matchups: %w", err)
	}
	if err := s.leagueRepo.DeleteLeague(ctx, leagueID); err != nil {
		return fmt.Errorf("delete league: %w", err)
	}

	return nil
}

// SetRegistration toggles the league's registration flag. Commissioner
// only.
func (s *LeagueService) SetRegistration(ctx context.Context, leagueID, callerID string, open bool) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.SetRegistration")
	defer span.End()

	lg, err := s.GetLeague(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if lg.CommissionerID != callerID {
		return league.League{}, fmt.Errorf("%w: only the commissioner may change registration for league %s", ErrUnauthorized, leagueID)
	}

	if err := s.leagueRepo.SetRegistrationOpen(ctx, leagueID, open); err != nil {
		return league.League{}, fmt.Errorf("set registration: %w", err)
	}
	lg.RegistrationOpen = open
	lg.UpdatedAt = s.now().UTC()

	return lg, nil
}
