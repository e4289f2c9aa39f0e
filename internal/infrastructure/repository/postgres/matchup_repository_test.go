package postgres

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

const setWinnerQuery = `UPDATE matchups SET winner_id = $2 WHERE id = $1 AND winner_id IS NULL`

func TestMatchupRepository_SetWinner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchupRepository(db)

	mock.ExpectExec(setWinnerQuery).
		WithArgs("mu_1", "user-alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetWinner(t.Context(), "mu_1", "user-alice"); err != nil {
		t.Fatalf("SetWinner error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMatchupRepository_SetWinner_DecidedRowIsImmutable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchupRepository(db)

	mock.ExpectExec(setWinnerQuery).
		WithArgs("mu_1", "user-bob").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT * FROM matchups WHERE id = $1`).
		WithArgs("mu_1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tournament_id", "round", "slot", "home_user_id", "away_user_id", "winner_id", "week",
		}).AddRow("mu_1", "tnm_1", 1, 0, "user-alice", "user-bob", "user-alice", 14))

	err := repo.SetWinner(t.Context(), "mu_1", "user-bob")
	if err == nil || !strings.Contains(err.Error(), "already decided") {
		t.Fatalf("expected already decided error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMatchupRepository_SetWinner_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchupRepository(db)

	mock.ExpectExec(setWinnerQuery).
		WithArgs("mu_missing", "user-alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT * FROM matchups WHERE id = $1`).
		WithArgs("mu_missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tournament_id", "round", "slot", "home_user_id", "away_user_id", "winner_id", "week",
		}))

	err := repo.SetWinner(t.Context(), "mu_missing", "user-alice")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
