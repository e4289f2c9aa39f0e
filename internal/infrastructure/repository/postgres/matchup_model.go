package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/matchup"
)

type tournamentTableModel struct {
	ID           string    `db:"id"`
	LeagueID     string    `db:"league_id"`
	StartingWeek int       `db:"starting_week"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m tournamentTableModel) toDomain() matchup.Tournament {
	return matchup.Tournament{
		ID:           m.ID,
		LeagueID:     m.LeagueID,
		StartingWeek: m.StartingWeek,
		CreatedAt:    m.CreatedAt,
	}
}

type matchupTableModel struct {
	ID           string         `db:"id"`
	TournamentID string         `db:"tournament_id"`
	Round        int            `db:"round"`
	Slot         int            `db:"slot"`
	HomeUserID   string         `db:"home_user_id"`
	AwayUserID   sql.NullString `db:"away_user_id"`
	WinnerID     sql.NullString `db:"winner_id"`
	Week         int            `db:"week"`
}

func (m matchupTableModel) toDomain() matchup.Matchup {
	return matchup.Matchup{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		Round:        m.Round,
		Slot:         m.Slot,
		HomeUserID:   m.HomeUserID,
		AwayUserID:   m.AwayUserID.String,
		WinnerID:     m.WinnerID.String,
		Week:         m.Week,
	}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
