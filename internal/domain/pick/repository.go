package pick

import (
	"context"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

// Repository owns confirmed picks. Lock-time truth lives with the game
// catalog; implementations enforce it on every mutation so a caller can
// never assume a submission succeeded.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Pick, error)
	ListByUserAndWeek(ctx context.Context, userID string, week int) ([]Pick, error)
	ListByWeek(ctx context.Context, week int) ([]Pick, error)
	GetByID(ctx context.Context, pickID string) (Pick, bool, error)
	GetByUserAndGame(ctx context.Context, userID, gameID string) (Pick, bool, error)
	Create(ctx context.Context, p Pick) (Pick, error)
	UpdateSide(ctx context.Context, pickID string, side game.Side) (Pick, error)
	Delete(ctx context.Context, pickID string) error
}
