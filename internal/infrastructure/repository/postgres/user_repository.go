package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pickemhq/pickem-api/internal/domain/user"
	qb "github.com/pickemhq/pickem-api/internal/platform/querybuilder"
)

// UserRepository stores member profiles in postgres. Profiles are written
// by the identity sync on login and read by scoring and bracket code.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	var row userTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, userID)
	if isNotFound(err) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, userIDs []string) ([]user.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	const query = `SELECT * FROM users WHERE id = ANY($1) ORDER BY id ASC`

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]user.User, error) {
	query, args, err := qb.Select("users").OrderBy("id ASC").SQL()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *UserRepository) Upsert(ctx context.Context, u user.User) error {
	const query = `
		INSERT INTO users (id, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    email = EXCLUDED.email,
		    updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, u.ID, u.DisplayName, nullableString(u.Email)); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
