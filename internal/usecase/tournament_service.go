package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/matchup"
	"github.com/pickemhq/pickem-api/internal/platform/id"
)

const DefaultMinStartingWeek = 14

// TournamentService manages single-elimination brackets seeded from
// league standings. A league holds at most one unfinished bracket, and
// a matchup's winner is set exactly once.
type TournamentService struct {
	leagueRepo  league.Repository
	matchupRepo matchup.Repository
	gameRepo    game.Repository
	scores      *ScoringService
	ids         id.Generator
	minWeek     int
	now         func() time.Time
}

func NewTournamentService(leagueRepo league.Repository, matchupRepo matchup.Repository, gameRepo game.Repository, scores *ScoringService, ids id.Generator, minStartingWeek int) *TournamentService {
	if minStartingWeek < 1 {
		minStartingWeek = DefaultMinStartingWeek
	}
	return &TournamentService{
		leagueRepo:  leagueRepo,
		matchupRepo: matchupRepo,
		gameRepo:    gameRepo,
		scores:      scores,
		ids:         ids,
		minWeek:     minStartingWeek,
		now:         time.Now,
	}
}

// Bracket is a tournament with its matchups and the computed active
// flag. Active is always derived from the matchups, never stored.
type Bracket struct {
	Tournament matchup.Tournament
	Matchups   []matchup.Matchup
	Active     bool
}

// Create seeds round 1 from the league's current standings. The
// starting-week floor is checked before anything else is touched; a
// too-early week never reaches a repository.
func (s *TournamentService) Create(ctx context.Context, leagueID string, startingWeek int, callerID string) (Bracket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Create")
	defer span.End()

	if startingWeek < s.minWeek {
		return Bracket{}, fmt.Errorf("%w: starting week %d is before week %d", ErrInvalidInput, startingWeek, s.minWeek)
	}

	lg, err := s.memberLeague(ctx, leagueID, callerID)
	if err != nil {
		return Bracket{}, err
	}

	if existing, exists, err := s.matchupRepo.GetLatestTournamentByLeague(ctx, lg.ID); err != nil {
		return Bracket{}, fmt.Errorf("get latest tournament: %w", err)
	} else if exists {
		matchups, err := s.matchupRepo.ListMatchupsByTournament(ctx, existing.ID)
		if err != nil {
			return Bracket{}, fmt.Errorf("list matchups: %w", err)
		}
		if matchup.Active(matchups) {
			return Bracket{}, fmt.Errorf("%w: league %s already has an active tournament", ErrInvalidInput, lg.ID)
		}
	}

	rows, err := s.scores.LeagueLeaderboard(ctx, lg.ID)
	if err != nil {
		return Bracket{}, err
	}
	if len(rows) < 2 {
		return Bracket{}, fmt.Errorf("%w: league %s needs at least two ranked members", ErrInvalidInput, lg.ID)
	}

	size := 2
	for size*2 <= len(rows) {
		size *= 2
	}
	seeds := rows[:size]

	tournamentID, err := s.ids.NewID("trn_")
	if err != nil {
		return Bracket{}, fmt.Errorf("generate tournament id: %w", err)
	}

	t := matchup.Tournament{
		ID:           tournamentID,
		LeagueID:     lg.ID,
		StartingWeek: startingWeek,
		CreatedAt:    s.now().UTC(),
	}

	matchups := make([]matchup.Matchup, 0, size/2)
	for i := 0; i < size/2; i++ {
		matchupID, err := s.ids.NewID("mu_")
		if err != nil {
			return Bracket{}, fmt.Errorf("generate matchup id: %w", err)
		}
		matchups = append(matchups, matchup.Matchup{
			ID:           matchupID,
			TournamentID: tournamentID,
			Round:        1,
			Slot:         i,
			Week:         startingWeek,
			HomeUserID:   seeds[i].UserID,
			AwayUserID:   seeds[size-1-i].UserID,
		})
	}

	if err := s.matchupRepo.CreateTournament(ctx, t, matchups); err != nil {
		return Bracket{}, fmt.Errorf("create tournament: %w", err)
	}

	return Bracket{Tournament: t, Matchups: matchups, Active: true}, nil
}

// Get returns the league's latest bracket with the computed active
// flag.
func (s *TournamentService) Get(ctx context.Context, leagueID string) (Bracket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Get")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return Bracket{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	t, exists, err := s.matchupRepo.GetLatestTournamentByLeague(ctx, leagueID)
	if err != nil {
		return Bracket{}, fmt.Errorf("get latest tournament: %w", err)
	}
	if !exists {
		return Bracket{}, fmt.Errorf("%w: no tournament for league=%s", ErrNotFound, leagueID)
	}

	matchups, err := s.matchupRepo.ListMatchupsByTournament(ctx, t.ID)
	if err != nil {
		return Bracket{}, fmt.Errorf("list matchups: %w", err)
	}
	sortMatchups(matchups)

	return Bracket{Tournament: t, Matchups: matchups, Active: matchup.Active(matchups)}, nil
}

// Delete tears down the league's latest tournament and every matchup
// under its identifier. Irreversible; any league member may trigger it.
func (s *TournamentService) Delete(ctx context.Context, leagueID, callerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Delete")
	defer span.End()

	lg, err := s.memberLeague(ctx, leagueID, callerID)
	if err != nil {
		return err
	}

	t, exists, err := s.matchupRepo.GetLatestTournamentByLeague(ctx, lg.ID)
	if err != nil {
		return fmt.Errorf("get latest tournament: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: no tournament for league=%s", ErrNotFound, lg.ID)
	}

	if err := s.matchupRepo.DeleteTournament(ctx, t.ID); err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}

	return nil
}

// SetWinner records a matchup result. A decided matchup is terminal;
// repeat submissions fail rather than overwrite.
func (s *TournamentService) SetWinner(ctx context.Context, matchupID, winnerID string) (matchup.Matchup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.SetWinner")
	defer span.End()

	matchupID = strings.TrimSpace(matchupID)
	winnerID = strings.TrimSpace(winnerID)
	if matchupID == "" || winnerID == "" {
		return matchup.Matchup{}, fmt.Errorf("%w: matchup id and winner id are required", ErrInvalidInput)
	}

	m, exists, err := s.matchupRepo.GetMatchupByID(ctx, matchupID)
	if err != nil {
		return matchup.Matchup{}, fmt.Errorf("get matchup: %w", err)
	}
	if !exists {
		return matchup.Matchup{}, fmt.Errorf("%w: matchup=%s", ErrNotFound, matchupID)
	}
	if m.Decided() {
		return matchup.Matchup{}, fmt.Errorf("%w: matchup %s already has a winner", ErrInvalidInput, matchupID)
	}
	if winnerID != m.HomeUserID && winnerID != m.AwayUserID {
		return matchup.Matchup{}, fmt.Errorf("%w: user %s is not in matchup %s", ErrInvalidInput, winnerID, matchupID)
	}

	if err := s.matchupRepo.SetWinner(ctx, matchupID, winnerID); err != nil {
		return matchup.Matchup{}, fmt.Errorf("set winner: %w", err)
	}
	m.WinnerID = winnerID

	return m, nil
}

// ResolveWeek decides undecided matchups whose week is fully played,
// awarding each to the participant with the higher week score. Ties go
// to the higher seed, the home slot.
func (s *TournamentService) ResolveWeek(ctx context.Context, leagueID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ResolveWeek")
	defer span.End()

	bracket, err := s.Get(ctx, leagueID)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, m := range bracket.Matchups {
		if m.Decided() {
			continue
		}
		if m.Bye() {
			if _, err := s.SetWinner(ctx, m.ID, m.HomeUserID); err != nil {
				return resolved, err
			}
			resolved++
			continue
		}

		done, err := s.weekFinished(ctx, m.Week)
		if err != nil {
			return resolved, err
		}
		if !done {
			continue
		}

		points, err := s.scores.WeekScores(ctx, m.Week)
		if err != nil {
			return resolved, err
		}
		winner := m.HomeUserID
		if points[m.AwayUserID] > points[m.HomeUserID] {
			winner = m.AwayUserID
		}
		if _, err := s.SetWinner(ctx, m.ID, winner); err != nil {
			return resolved, err
		}
		resolved++
	}

	return resolved, nil
}

// AdvanceRounds builds round N+1 once every round N matchup has a
// winner. The final round's winner ends the tournament; there is
// nothing left to advance.
func (s *TournamentService) AdvanceRounds(ctx context.Context, leagueID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.AdvanceRounds")
	defer span.End()

	bracket, err := s.Get(ctx, leagueID)
	if err != nil {
		return 0, err
	}

	lastRound := 0
	for _, m := range bracket.Matchups {
		if m.Round > lastRound {
			lastRound = m.Round
		}
	}

	winners := make([]string, 0)
	for _, m := range bracket.Matchups {
		if m.Round != lastRound {
			continue
		}
		if !m.Decided() {
			return 0, nil
		}
		winners = append(winners, m.WinnerID)
	}
	if len(winners) < 2 {
		return 0, nil
	}

	nextRound := lastRound + 1
	nextWeek := bracket.Tournament.StartingWeek + lastRound
	next := make([]matchup.Matchup, 0, (len(winners)+1)/2)
	for i := 0; i < len(winners); i += 2 {
		matchupID, err := s.ids.NewID("mu_")
		if err != nil {
			return 0, fmt.Errorf("generate matchup id: %w", err)
		}
		m := matchup.Matchup{
			ID:           matchupID,
			TournamentID: bracket.Tournament.ID,
			Round:        nextRound,
			Slot:         i / 2,
			Week:         nextWeek,
			HomeUserID:   winners[i],
		}
		if i+1 < len(winners) {
			m.AwayUserID = winners[i+1]
		}
		next = append(next, m)
	}

	if err := s.matchupRepo.CreateMatchups(ctx, next); err != nil {
		return 0, fmt.Errorf("create next round: %w", err)
	}

	return len(next), nil
}

func (s *TournamentService) weekFinished(ctx context.Context, week int) (bool, error) {
	games, err := s.gameRepo.ListByWeek(ctx, week)
	if err != nil {
		return false, fmt.Errorf("list games by week: %w", err)
	}
	if len(games) == 0 {
		return false, nil
	}
	for _, g := range games {
		if !g.Final() {
			return false, nil
		}
	}
	return true, nil
}

func (s *TournamentService) memberLeague(ctx context.Context, leagueID, callerID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	callerID = strings.TrimSpace(callerID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if callerID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetLeagueByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	if lg.CommissionerID != callerID {
		member, err := s.leagueRepo.IsMember(ctx, lg.ID, callerID)
		if err != nil {
			return league.League{}, fmt.Errorf("check membership: %w", err)
		}
		if !member {
			return league.League{}, fmt.Errorf("%w: user %s is not a member of league %s", ErrUnauthorized, callerID, lg.ID)
		}
	}

	return lg, nil
}

func sortMatchups(matchups []matchup.Matchup) {
	sort.SliceStable(matchups, func(i, j int) bool {
		if matchups[i].Round != matchups[j].Round {
			return matchups[i].Round < matchups[j].Round
		}
		return matchups[i].Slot < matchups[j].Slot
	})
}
