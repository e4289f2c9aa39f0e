package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	qb "github.com/pickemhq/pickem-api/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) ListByUser(ctx context.Context, userID string) ([]pick.Pick, error) {
	query, args, err := qb.Select("picks").
		Where("user_id = ?", userID).
		OrderBy("created_at ASC", "id ASC").
		SQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by user query: %w", err)
	}
	return r.selectPicks(ctx, query, args...)
}

// ListByUserAndWeek joins through games because picks do not carry the
// week themselves.
func (r *PickRepository) ListByUserAndWeek(ctx context.Context, userID string, week int) ([]pick.Pick, error) {
	const query = `
		SELECT p.* FROM picks p
		JOIN games g ON g.id = p.game_id
		WHERE p.user_id = $1 AND g.week = $2
		ORDER BY p.created_at ASC, p.id ASC`
	return r.selectPicks(ctx, query, userID, week)
}

func (r *PickRepository) ListByWeek(ctx context.Context, week int) ([]pick.Pick, error) {
	const query = `
		SELECT p.* FROM picks p
		JOIN games g ON g.id = p.game_id
		WHERE g.week = $1
		ORDER BY p.created_at ASC, p.id ASC`
	return r.selectPicks(ctx, query, week)
}

func (r *PickRepository) selectPicks(ctx context.Context, query string, args ...any) ([]pick.Pick, error) {
	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PickRepository) GetByID(ctx context.Context, pickID string) (pick.Pick, bool, error) {
	var row pickTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM picks WHERE id = $1`, pickID)
	if err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get pick by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PickRepository) GetByUserAndGame(ctx context.Context, userID, gameID string) (pick.Pick, bool, error) {
	var row pickTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM picks WHERE user_id = $1 AND game_id = $2`, userID, gameID)
	if err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get pick by user and game: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PickRepository) Create(ctx context.Context, p pick.Pick) (pick.Pick, error) {
	var row pickTableModel
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO picks (id, user_id, game_id, side, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING *`,
		p.ID, p.UserID, p.GameID, string(p.Side), p.CreatedAt)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("insert pick: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PickRepository) UpdateSide(ctx context.Context, pickID string, side game.Side) (pick.Pick, error) {
	var row pickTableModel
	err := r.db.GetContext(ctx, &row,
		`UPDATE picks SET side = $1 WHERE id = $2 RETURNING *`,
		string(side), pickID)
	if err != nil {
		if isNotFound(err) {
			return pick.Pick{}, fmt.Errorf("pick %q not found", pickID)
		}
		return pick.Pick{}, fmt.Errorf("update pick side: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PickRepository) Delete(ctx context.Context, pickID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM picks WHERE id = $1`, pickID)
	if err != nil {
		return fmt.Errorf("delete pick: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pick rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pick %q not found", pickID)
	}
	return nil
}
