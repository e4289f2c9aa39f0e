package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pickemhq/pickem-api/internal/domain/matchup"
)

type MatchupRepository struct {
	mu              sync.RWMutex
	tournaments     map[string]matchup.Tournament
	tournamentOrder []string
	matchups        map[string]matchup.Matchup
	matchupOrder    []string
}

func NewMatchupRepository() *MatchupRepository {
	return &MatchupRepository{
		tournaments: make(map[string]matchup.Tournament),
		matchups:    make(map[string]matchup.Matchup),
	}
}

func (r *MatchupRepository) CreateTournament(_ context.Context, t matchup.Tournament, matchups []matchup.Matchup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[t.ID]; ok {
		return fmt.Errorf("tournament %s already exists", t.ID)
	}
	r.tournaments[t.ID] = t
	r.tournamentOrder = append(r.tournamentOrder, t.ID)
	for _, m := range matchups {
		r.matchups[m.ID] = m
		r.matchupOrder = append(r.matchupOrder, m.ID)
	}

	return nil
}

func (r *MatchupRepository) GetTournamentByID(_ context.Context, tournamentID string) (matchup.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tournaments[tournamentID]
	if !ok {
		return matchup.Tournament{}, false, nil
	}

	return t, true, nil
}

func (r *MatchupRepository) GetLatestTournamentByLeague(_ context.Context, leagueID string) (matchup.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest matchup.Tournament
	found := false
	for _, id := range r.tournamentOrder {
		t := r.tournaments[id]
		if t.LeagueID != leagueID {
			continue
		}
		if !found || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
			found = true
		}
	}

	return latest, found, nil
}

func (r *MatchupRepository) ListMatchupsByTournament(_ context.Context, tournamentID string) ([]matchup.Matchup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matchup.Matchup, 0)
	for _, id := range r.matchupOrder {
		if m := r.matchups[id]; m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *MatchupRepository) CreateMatchups(_ context.Context, matchups []matchup.Matchup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matchups {
		if _, ok := r.tournaments[m.TournamentID]; !ok {
			return fmt.Errorf("tournament %s not found", m.TournamentID)
		}
		if _, ok := r.matchups[m.ID]; ok {
			return fmt.Errorf("matchup %s already exists", m.ID)
		}
	}
	for _, m := range matchups {
		r.matchups[m.ID] = m
		r.matchupOrder = append(r.matchupOrder, m.ID)
	}

	return nil
}

func (r *MatchupRepository) GetMatchupByID(_ context.Context, matchupID string) (matchup.Matchup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matchups[matchupID]
	if !ok {
		return matchup.Matchup{}, false, nil
	}

	return m, true, nil
}

func (r *MatchupRepository) SetWinner(_ context.Context, matchupID, winnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matchups[matchupID]
	if !ok {
		return fmt.Errorf("matchup %s not found", matchupID)
	}
	if m.WinnerID != "" {
		return fmt.Errorf("matchup %s already decided", matchupID)
	}
	m.WinnerID = winnerID
	r.matchups[matchupID] = m

	return nil
}

func (r *MatchupRepository) DeleteTournament(_ context.Context, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tournaments[tournamentID]; !ok {
		return fmt.Errorf("tournament %s not found", tournamentID)
	}
	delete(r.tournaments, tournamentID)
	r.tournamentOrder = removeString(r.tournamentOrder, tournamentID)
	for id, m := range r.matchups {
		if m.TournamentID == tournamentID {
			delete(r.matchups, id)
			r.matchupOrder = removeString(r.matchupOrder, id)
		}
	}

	return nil
}

func (r *MatchupRepository) DeleteByLeague(ctx context.Context, leagueID string) error {
	r.mu.RLock()
	ids := make([]string, 0)
	for _, id := range r.tournamentOrder {
		if r.tournaments[id].LeagueID == leagueID {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range ids {
		if err := r.DeleteTournament(ctx, id); err != nil {
			return err
		}
	}

	return nil
}
