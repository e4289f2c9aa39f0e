package game

import "context"

// Repository describes game catalog persistence needs from use cases.
type Repository interface {
	ListByWeek(ctx context.Context, week int) ([]Game, error)
	ListAll(ctx context.Context) ([]Game, error)
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	SetResult(ctx context.Context, gameID string, status string, result *Result) error
}
