package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

type GameRepository struct {
	mu     sync.RWMutex
	items  map[string]game.Game
	orders []string
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	orders := make([]string, 0, len(games))

	for _, g := range games {
		items[g.ID] = g
		orders = append(orders, g.ID)
	}

	return &GameRepository{
		items:  items,
		orders: orders,
	}
}

func (r *GameRepository) ListByWeek(_ context.Context, week int) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, id := range r.orders {
		if g := r.items[id]; g.Week == week {
			out = append(out, g)
		}
	}

	return out, nil
}

func (r *GameRepository) ListAll(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[gameID]
	if !ok {
		return game.Game{}, false, nil
	}

	return g, true, nil
}

func (r *GameRepository) SetResult(_ context.Context, gameID string, status string, result *game.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.items[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	g.Status = status
	g.Result = result
	r.items[gameID] = g

	return nil
}
