package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	"github.com/pickemhq/pickem-api/internal/domain/scoring"
	"github.com/pickemhq/pickem-api/internal/domain/user"
	"github.com/pickemhq/pickem-api/internal/platform/cache"
)

const (
	cacheKeyLeaderboardGlobal = "leaderboard:global"
	cacheKeyLeaderboardLeague = "leaderboard:league:"
	cacheKeyWeekScores        = "scores:week:"

	defaultRecomputeWorkers = 4
)

// ScoringService computes weekly scores and cumulative standings from
// confirmed picks and final game results. Everything it serves is
// derived; recomputing from the same inputs always yields the same
// rows.
type ScoringService struct {
	gameRepo   game.Repository
	pickRepo   pick.Repository
	userRepo   user.Repository
	leagueRepo league.Repository
	store      *cache.Store
}

func NewScoringService(gameRepo game.Repository, pickRepo pick.Repository, userRepo user.Repository, leagueRepo league.Repository, store *cache.Store) *ScoringService {
	return &ScoringService{
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		userRepo:   userRepo,
		leagueRepo: leagueRepo,
		store:      store,
	}
}

// WeekScores returns per-user points for one week.
func (s *ScoringService) WeekScores(ctx context.Context, week int) (map[string]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.WeekScores")
	defer span.End()

	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}

	value, err := s.store.GetOrLoad(ctx, fmt.Sprintf("%s%d", cacheKeyWeekScores, week), func(ctx context.Context) (any, error) {
		return s.scoreWeek(ctx, week)
	})
	if err != nil {
		return nil, err
	}

	points, _ := value.(map[string]int)
	return points, nil
}

func (s *ScoringService) scoreWeek(ctx context.Context, week int) (map[string]int, error) {
	games, err := s.gameRepo.ListByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}
	picks, err := s.pickRepo.ListByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("list picks by week: %w", err)
	}

	return scoring.ScoreWeek(games, picks), nil
}

// Leaderboard returns the cumulative global standings.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]scoring.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard")
	defer span.End()

	value, err := s.store.GetOrLoad(ctx, cacheKeyLeaderboardGlobal, func(ctx context.Context) (any, error) {
		users, err := s.userRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return s.aggregate(ctx, users)
	})
	if err != nil {
		return nil, err
	}

	rows, _ := value.([]scoring.Row)
	return rows, nil
}

// LeagueLeaderboard restricts standings to a league's accepted members
// plus its commissioner.
func (s *ScoringService) LeagueLeaderboard(ctx context.Context, leagueID string) ([]scoring.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.LeagueLeaderboard")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	value, err := s.store.GetOrLoad(ctx, cacheKeyLeaderboardLeague+leagueID, func(ctx context.Context) (any, error) {
		users, err := s.leagueUsers(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return s.aggregate(ctx, users)
	})
	if err != nil {
		return nil, err
	}

	rows, _ := value.([]scoring.Row)
	return rows, nil
}

func (s *ScoringService) leagueUsers(ctx context.Context, leagueID string) ([]user.User, error) {
	lg, exists, err := s.leagueRepo.GetLeagueByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	ids := make([]string, 0, len(members)+1)
	ids = append(ids, lg.CommissionerID)
	for _, m := range members {
		if m.UserID == lg.CommissionerID {
			continue
		}
		ids = append(ids, m.UserID)
	}
	sort.Strings(ids)

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (s *ScoringService) aggregate(ctx context.Context, users []user.User) ([]scoring.Row, error) {
	games, err := s.gameRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	weekSet := make(map[int]struct{})
	for _, g := range games {
		if g.Final() {
			weekSet[g.Week] = struct{}{}
		}
	}
	weekNums := make([]int, 0, len(weekSet))
	for week := range weekSet {
		weekNums = append(weekNums, week)
	}
	sort.Ints(weekNums)

	weeks := make([]scoring.WeekPoints, 0, len(weekNums))
	for _, week := range weekNums {
		points, err := s.WeekScores(ctx, week)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, scoring.WeekPoints{Week: week, Points: points})
	}

	return scoring.Aggregate(weeks, users), nil
}

// Invalidate drops every cached score and standings entry, called when
// results change.
func (s *ScoringService) Invalidate(ctx context.Context) {
	s.store.DeletePrefix(ctx, cacheKeyWeekScores)
	s.store.Delete(ctx, cacheKeyLeaderboardGlobal)
	s.store.DeletePrefix(ctx, cacheKeyLeaderboardLeague)
}

// RecomputeResult summarizes one recompute fan-out.
type RecomputeResult struct {
	LeagueCount int      `json:"league_count"`
	FailedCount int      `json:"failed_count"`
	WorkerCount int      `json:"worker_count"`
	Failed      []string `json:"failed,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
}

// RecomputeAll invalidates caches and rewarms every league's standings
// plus the global board on a bounded worker pool.
func (s *ScoringService) RecomputeAll(ctx context.Context, maxWorkers int) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecomputeAll")
	defer span.End()

	start := time.Now()
	if maxWorkers < 1 {
		maxWorkers = defaultRecomputeWorkers
	}

	leagues, err := s.leagueRepo.ListLeagues(ctx)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list leagues: %w", err)
	}

	s.Invalidate(ctx)

	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var failed []string
	var workers sync.WaitGroup

	warmLeague := func(leagueID string) {
		defer workers.Done()
		if _, err := s.LeagueLeaderboard(ctx, leagueID); err != nil {
			mu.Lock()
			failed = append(failed, leagueID)
			mu.Unlock()
		}
	}

	for _, lg := range leagues {
		leagueID := lg.ID
		workers.Add(1)
		if err := pool.Submit(func() { warmLeague(leagueID) }); err != nil {
			workers.Done()
			return RecomputeResult{}, fmt.Errorf("submit recompute task: %w", err)
		}
	}
	workers.Wait()

	if _, err := s.Leaderboard(ctx); err != nil {
		return RecomputeResult{}, fmt.Errorf("rewarm global leaderboard: %w", err)
	}

	sort.Strings(failed)
	return RecomputeResult{
		LeagueCount: len(leagues),
		FailedCount: len(failed),
		WorkerCount: maxWorkers,
		Failed:      failed,
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}
