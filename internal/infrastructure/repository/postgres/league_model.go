package postgres

import (
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/league"
)

type leagueTableModel struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	CommissionerID   string    `db:"commissioner_id"`
	RegistrationOpen bool      `db:"registration_open"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:               m.ID,
		Name:             m.Name,
		CommissionerID:   m.CommissionerID,
		RegistrationOpen: m.RegistrationOpen,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type membershipRequestTableModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	UserID    string    `db:"user_id"`
	State     string    `db:"state"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m membershipRequestTableModel) toDomain() league.MembershipRequest {
	return league.MembershipRequest{
		ID:        m.ID,
		LeagueID:  m.LeagueID,
		UserID:    m.UserID,
		State:     league.RequestState(m.State),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type membershipTableModel struct {
	LeagueID string    `db:"league_id"`
	UserID   string    `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}

func (m membershipTableModel) toDomain() league.Membership {
	return league.Membership{
		LeagueID: m.LeagueID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
	}
}
