package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

type GameService struct {
	gameRepo game.Repository
	now      func() time.Time
}

func NewGameService(gameRepo game.Repository) *GameService {
	return &GameService{
		gameRepo: gameRepo,
		now:      time.Now,
	}
}

// WeekGames returns the slate for the requested week, or for the
// current week when week is zero.
func (s *GameService) WeekGames(ctx context.Context, week int) (int, []game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.WeekGames")
	defer span.End()

	if week < 0 {
		return 0, nil, fmt.Errorf("%w: week must not be negative", ErrInvalidInput)
	}
	if week == 0 {
		current, err := s.CurrentWeek(ctx)
		if err != nil {
			return 0, nil, err
		}
		week = current
	}

	games, err := s.gameRepo.ListByWeek(ctx, week)
	if err != nil {
		return 0, nil, fmt.Errorf("list games by week: %w", err)
	}

	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].LockAt.Equal(games[j].LockAt) {
			return games[i].LockAt.Before(games[j].LockAt)
		}
		return games[i].ID < games[j].ID
	})

	return week, games, nil
}

// CurrentWeek is the lowest week that still has an unlocked or
// unfinished game. When the season is fully played out it falls back to
// the highest known week.
func (s *GameService) CurrentWeek(ctx context.Context) (int, error) {
	games, err := s.gameRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}
	if len(games) == 0 {
		return 0, fmt.Errorf("%w: no games scheduled", ErrNotFound)
	}

	now := s.now().UTC()
	current := 0
	maxWeek := 0
	for _, g := range games {
		if g.Week > maxWeek {
			maxWeek = g.Week
		}
		if g.Final() && g.Locked(now) {
			continue
		}
		if current == 0 || g.Week < current {
			current = g.Week
		}
	}
	if current == 0 {
		current = maxWeek
	}

	return current, nil
}

// LockTime is the earliest lock deadline of the week's slate.
func (s *GameService) LockTime(ctx context.Context, week int) (int, time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.LockTime")
	defer span.End()

	week, games, err := s.WeekGames(ctx, week)
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(games) == 0 {
		return 0, time.Time{}, fmt.Errorf("%w: no games in week %d", ErrNotFound, week)
	}

	lockAt := games[0].LockAt
	for _, g := range games[1:] {
		if g.LockAt.Before(lockAt) {
			lockAt = g.LockAt
		}
	}

	return week, lockAt, nil
}

func (s *GameService) GetGame(ctx context.Context, gameID string) (game.Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	return g, nil
}
