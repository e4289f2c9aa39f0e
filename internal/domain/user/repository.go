package user

import "context"

// Repository describes user lookup needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	ListByIDs(ctx context.Context, userIDs []string) ([]User, error)
	ListAll(ctx context.Context) ([]User, error)
	Upsert(ctx context.Context, u User) error
}
