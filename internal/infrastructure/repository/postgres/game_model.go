package postgres

import (
	"database/sql"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

type gameTableModel struct {
	ID          string         `db:"id"`
	Week        int            `db:"week"`
	HomeName    string         `db:"home_name"`
	HomeAbbr    string         `db:"home_abbr"`
	HomeLogoURL sql.NullString `db:"home_logo_url"`
	AwayName    string         `db:"away_name"`
	AwayAbbr    string         `db:"away_abbr"`
	AwayLogoURL sql.NullString `db:"away_logo_url"`
	PointSpread float64        `db:"point_spread"`
	LockAt      time.Time      `db:"lock_at"`
	Status      string         `db:"status"`
	Winner      sql.NullString `db:"winner"`
	HomeScore   sql.NullInt64  `db:"home_score"`
	AwayScore   sql.NullInt64  `db:"away_score"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m gameTableModel) toDomain() game.Game {
	g := game.Game{
		ID:   m.ID,
		Week: m.Week,
		HomeTeam: game.Team{
			Name:         m.HomeName,
			Abbreviation: m.HomeAbbr,
			LogoURL:      m.HomeLogoURL.String,
		},
		AwayTeam: game.Team{
			Name:         m.AwayName,
			Abbreviation: m.AwayAbbr,
			LogoURL:      m.AwayLogoURL.String,
		},
		PointSpread: m.PointSpread,
		LockAt:      m.LockAt,
		Status:      m.Status,
	}
	if m.Winner.Valid {
		g.Result = &game.Result{
			Winner:    game.Side(m.Winner.String),
			HomeScore: int(m.HomeScore.Int64),
			AwayScore: int(m.AwayScore.Int64),
		}
	}
	return g
}
