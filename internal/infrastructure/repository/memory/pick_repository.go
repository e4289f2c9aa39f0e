package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
)

// PickRepository keeps confirmed picks in memory. It resolves weeks
// through the game repository the same way the SQL implementation joins
// the games table.
type PickRepository struct {
	mu     sync.RWMutex
	items  map[string]pick.Pick
	orders []string
	seq    int
	games  *GameRepository
}

func NewPickRepository(games *GameRepository) *PickRepository {
	return &PickRepository{
		items: make(map[string]pick.Pick),
		games: games,
	}
}

func (r *PickRepository) ListByUser(_ context.Context, userID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, id := range r.orders {
		if p := r.items[id]; p.UserID == userID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *PickRepository) ListByUserAndWeek(ctx context.Context, userID string, week int) ([]pick.Pick, error) {
	picks, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return r.filterByWeek(ctx, picks, week)
}

func (r *PickRepository) ListByWeek(ctx context.Context, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	all := make([]pick.Pick, 0, len(r.orders))
	for _, id := range r.orders {
		all = append(all, r.items[id])
	}
	r.mu.RUnlock()

	return r.filterByWeek(ctx, all, week)
}

func (r *PickRepository) filterByWeek(ctx context.Context, picks []pick.Pick, week int) ([]pick.Pick, error) {
	out := make([]pick.Pick, 0, len(picks))
	for _, p := range picks {
		g, ok, err := r.games.GetByID(ctx, p.GameID)
		if err != nil {
			return nil, err
		}
		if ok && g.Week == week {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *PickRepository) GetByID(_ context.Context, pickID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[pickID]
	if !ok {
		return pick.Pick{}, false, nil
	}

	return p, true, nil
}

func (r *PickRepository) GetByUserAndGame(_ context.Context, userID, gameID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		p := r.items[id]
		if p.UserID == userID && p.GameID == gameID {
			return p, true, nil
		}
	}

	return pick.Pick{}, false, nil
}

func (r *PickRepository) Create(_ context.Context, p pick.Pick) (pick.Pick, error) {
	if err := p.Validate(); err != nil {
		return pick.Pick{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.orders {
		existing := r.items[id]
		if existing.UserID == p.UserID && existing.GameID == p.GameID {
			return pick.Pick{}, fmt.Errorf("pick for user %s game %s already exists", p.UserID, p.GameID)
		}
	}

	r.seq++
	p.ID = fmt.Sprintf("pick_%04d", r.seq)
	r.items[p.ID] = p
	r.orders = append(r.orders, p.ID)

	return p, nil
}

func (r *PickRepository) UpdateSide(_ context.Context, pickID string, side game.Side) (pick.Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[pickID]
	if !ok {
		return pick.Pick{}, fmt.Errorf("pick %s not found", pickID)
	}
	p.Side = side
	r.items[pickID] = p

	return p, nil
}

func (r *PickRepository) Delete(_ context.Context, pickID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[pickID]; !ok {
		return fmt.Errorf("pick %s not found", pickID)
	}
	delete(r.items, pickID)
	for i, id := range r.orders {
		if id == pickID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}
