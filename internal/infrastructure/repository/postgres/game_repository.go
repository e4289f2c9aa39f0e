package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-api/internal/domain/game"
	qb "github.com/pickemhq/pickem-api/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) ListByWeek(ctx context.Context, week int) ([]game.Game, error) {
	query, args, err := qb.Select("games").
		Where("week = ?", week).
		OrderBy("lock_at ASC", "id ASC").
		SQL()
	if err != nil {
		return nil, fmt.Errorf("build list games by week query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games by week: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) ListAll(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("games").
		OrderBy("week ASC", "lock_at ASC", "id ASC").
		SQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	var row gameTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM games WHERE id = $1`, gameID)
	if err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) SetResult(ctx context.Context, gameID string, status string, result *game.Result) error {
	var (
		res sql.Result
		err error
	)
	if result == nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE games SET status = $1, winner = NULL, home_score = NULL, away_score = NULL, updated_at = now() WHERE id = $2`,
			status, gameID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE games SET status = $1, winner = $2, home_score = $3, away_score = $4, updated_at = now() WHERE id = $5`,
			status, string(result.Winner), result.HomeScore, result.AwayScore, gameID)
	}
	if err != nil {
		return fmt.Errorf("update game result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game result rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game %q not found", gameID)
	}
	return nil
}
