package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemhq/pickem-api/internal/domain/matchup"
	qb "github.com/pickemhq/pickem-api/internal/platform/querybuilder"
)

// MatchupRepository stores tournaments and their brackets in postgres.
type MatchupRepository struct {
	db *sqlx.DB
}

func NewMatchupRepository(db *sqlx.DB) *MatchupRepository {
	return &MatchupRepository{db: db}
}

const insertMatchupQuery = `
	INSERT INTO matchups (id, tournament_id, round, slot, home_user_id, away_user_id, winner_id, week)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// CreateTournament inserts the tournament together with its seeded bracket
// so a failure partway through never leaves a tournament without matchups.
func (r *MatchupRepository) CreateTournament(ctx context.Context, t matchup.Tournament, matchups []matchup.Matchup) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tournament tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertTournament = `
		INSERT INTO tournaments (id, league_id, starting_week, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := tx.ExecContext(ctx, insertTournament, t.ID, t.LeagueID, t.StartingWeek, t.CreatedAt); err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}

	for _, m := range matchups {
		_, err := tx.ExecContext(ctx, insertMatchupQuery,
			m.ID, m.TournamentID, m.Round, m.Slot,
			m.HomeUserID, nullableString(m.AwayUserID), nullableString(m.WinnerID), m.Week)
		if err != nil {
			return fmt.Errorf("insert matchup: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tournament tx: %w", err)
	}
	return nil
}

func (r *MatchupRepository) GetTournamentByID(ctx context.Context, tournamentID string) (matchup.Tournament, bool, error) {
	var row tournamentTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM tournaments WHERE id = $1`, tournamentID)
	if isNotFound(err) {
		return matchup.Tournament{}, false, nil
	}
	if err != nil {
		return matchup.Tournament{}, false, fmt.Errorf("select tournament: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchupRepository) GetLatestTournamentByLeague(ctx context.Context, leagueID string) (matchup.Tournament, bool, error) {
	const query = `
		SELECT * FROM tournaments
		WHERE league_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var row tournamentTableModel
	err := r.db.GetContext(ctx, &row, query, leagueID)
	if isNotFound(err) {
		return matchup.Tournament{}, false, nil
	}
	if err != nil {
		return matchup.Tournament{}, false, fmt.Errorf("select tournament: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchupRepository) ListMatchupsByTournament(ctx context.Context, tournamentID string) ([]matchup.Matchup, error) {
	query, args, err := qb.Select("matchups").
		Where("tournament_id = ?", tournamentID).
		OrderBy("round ASC", "slot ASC").
		SQL()
	if err != nil {
		return nil, fmt.Errorf("build matchup query: %w", err)
	}

	var rows []matchupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matchups: %w", err)
	}

	matchups := make([]matchup.Matchup, 0, len(rows))
	for _, row := range rows {
		matchups = append(matchups, row.toDomain())
	}
	return matchups, nil
}

func (r *MatchupRepository) CreateMatchups(ctx context.Context, matchups []matchup.Matchup) error {
	if len(matchups) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin matchup tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, m := range matchups {
		_, err := tx.ExecContext(ctx, insertMatchupQuery,
			m.ID, m.TournamentID, m.Round, m.Slot,
			m.HomeUserID, nullableString(m.AwayUserID), nullableString(m.WinnerID), m.Week)
		if err != nil {
			return fmt.Errorf("insert matchup: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit matchup tx: %w", err)
	}
	return nil
}

func (r *MatchupRepository) GetMatchupByID(ctx context.Context, matchupID string) (matchup.Matchup, bool, error) {
	var row matchupTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM matchups WHERE id = $1`, matchupID)
	if isNotFound(err) {
		return matchup.Matchup{}, false, nil
	}
	if err != nil {
		return matchup.Matchup{}, false, fmt.Errorf("select matchup: %w", err)
	}
	return row.toDomain(), true, nil
}

// SetWinner only writes undecided rows; a decided matchup never changes
// again, no matter how the callers race.
func (r *MatchupRepository) SetWinner(ctx context.Context, matchupID, winnerID string) error {
	const query = `UPDATE matchups SET winner_id = $2 WHERE id = $1 AND winner_id IS NULL`

	res, err := r.db.ExecContext(ctx, query, matchupID, nullableString(winnerID))
	if err != nil {
		return fmt.Errorf("update matchup winner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update matchup winner: %w", err)
	}
	if affected == 0 {
		_, ok, err := r.GetMatchupByID(ctx, matchupID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("matchup %s not found", matchupID)
		}
		return fmt.Errorf("matchup %s already decided", matchupID)
	}
	return nil
}

func (r *MatchupRepository) DeleteTournament(ctx context.Context, tournamentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tournament %q not found", tournamentID)
	}
	return nil
}

func (r *MatchupRepository) DeleteByLeague(ctx context.Context, leagueID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE league_id = $1`, leagueID); err != nil {
		return fmt.Errorf("delete tournaments: %w", err)
	}
	return nil
}
