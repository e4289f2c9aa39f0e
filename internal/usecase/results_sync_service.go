package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
)

// FeedResult is one game's state as reported by the upstream scores
// feed.
type FeedResult struct {
	GameID    string
	Status    string
	HomeScore int
	AwayScore int
	Winner    game.Side
}

// ScoresFeed is the upstream provider of real-world results.
type ScoresFeed interface {
	FetchWeek(ctx context.Context, week int) ([]FeedResult, error)
}

// ResultsSyncService pulls final scores from the feed, applies them to
// the game catalog, and pushes the consequences downstream: cached
// standings are invalidated and every league's bracket gets a resolve
// and advance pass.
type ResultsSyncService struct {
	feed        ScoresFeed
	gameRepo    game.Repository
	leagueRepo  league.Repository
	scores      *ScoringService
	tournaments *TournamentService
	logger      *logging.Logger
}

func NewResultsSyncService(feed ScoresFeed, gameRepo game.Repository, leagueRepo league.Repository, scores *ScoringService, tournaments *TournamentService, logger *logging.Logger) *ResultsSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultsSyncService{
		feed:        feed,
		gameRepo:    gameRepo,
		leagueRepo:  leagueRepo,
		scores:      scores,
		tournaments: tournaments,
		logger:      logger,
	}
}

type SyncResult struct {
	Week            int   `json:"week"`
	GamesUpdated    int   `json:"games_updated"`
	MatchupsDecided int   `json:"matchups_decided"`
	RoundsAdvanced  int   `json:"rounds_advanced"`
	DurationMs      int64 `json:"duration_ms"`
}

// SyncWeek reconciles one week against the feed. The feed being down is
// a dependency failure; nothing local changes in that case.
func (s *ResultsSyncService) SyncWeek(ctx context.Context, week int) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsSyncService.SyncWeek")
	defer span.End()

	if week <= 0 {
		return SyncResult{}, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}

	start := time.Now()
	results, err := s.feed.FetchWeek(ctx, week)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: fetch week %d results: %v", ErrDependencyUnavailable, week, err)
	}

	updated := 0
	for _, r := range results {
		changed, err := s.applyResult(ctx, r)
		if err != nil {
			s.logger.WarnContext(ctx, "skip feed result", "game_id", r.GameID, "error", err)
			continue
		}
		if changed {
			updated++
		}
	}

	out := SyncResult{Week: week, GamesUpdated: updated}
	if updated > 0 {
		s.scores.Invalidate(ctx)

		decided, advanced, err := s.progressBrackets(ctx)
		if err != nil {
			return out, err
		}
		out.MatchupsDecided = decided
		out.RoundsAdvanced = advanced
	}
	out.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "results sync finished",
		"week", week,
		"games_updated", out.GamesUpdated,
		"matchups_decided", out.MatchupsDecided,
		"rounds_advanced", out.RoundsAdvanced,
	)

	return out, nil
}

func (s *ResultsSyncService) applyResult(ctx context.Context, r FeedResult) (bool, error) {
	g, exists, err := s.gameRepo.GetByID(ctx, r.GameID)
	if err != nil {
		return false, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("%w: game=%s", ErrNotFound, r.GameID)
	}

	status := game.NormalizeStatus(r.Status)
	if status != game.StatusFinal {
		if g.Status == status {
			return false, nil
		}
		if err := s.gameRepo.SetResult(ctx, g.ID, status, nil); err != nil {
			return false, fmt.Errorf("set game status: %w", err)
		}
		return true, nil
	}

	// Finals are terminal; a game already final is never rewritten.
	if g.Final() {
		return false, nil
	}
	if r.Winner != game.SideHome && r.Winner != game.SideAway {
		return false, fmt.Errorf("%w: result winner must be HOME or AWAY", ErrInvalidInput)
	}
	result := &game.Result{Winner: r.Winner, HomeScore: r.HomeScore, AwayScore: r.AwayScore}
	if err := s.gameRepo.SetResult(ctx, g.ID, game.StatusFinal, result); err != nil {
		return false, fmt.Errorf("set game result: %w", err)
	}

	return true, nil
}

// progressBrackets fans out across leagues, resolving finished weeks
// and advancing rounds where all winners are known. Leagues without a
// tournament are skipped, not errors.
func (s *ResultsSyncService) progressBrackets(ctx context.Context) (int, int, error) {
	leagues, err := s.leagueRepo.ListLeagues(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list leagues: %w", err)
	}

	type progress struct{ decided, advanced int }

	p := pool.NewWithResults[progress]().WithContext(ctx).WithMaxGoroutines(4)
	for _, lg := range leagues {
		leagueID := lg.ID
		p.Go(func(ctx context.Context) (progress, error) {
			decided, err := s.tournaments.ResolveWeek(ctx, leagueID)
			if err != nil {
				if isNoTournament(err) {
					return progress{}, nil
				}
				return progress{}, fmt.Errorf("resolve week for league %s: %w", leagueID, err)
			}
			advanced, err := s.tournaments.AdvanceRounds(ctx, leagueID)
			if err != nil {
				return progress{}, fmt.Errorf("advance rounds for league %s: %w", leagueID, err)
			}
			return progress{decided: decided, advanced: advanced}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return 0, 0, err
	}

	decided, advanced := 0, 0
	for _, r := range results {
		decided += r.decided
		advanced += r.advanced
	}

	return decided, advanced, nil
}

func isNoTournament(err error) bool {
	return errors.Is(err, ErrNotFound)
}
