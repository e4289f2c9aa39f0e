package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pickemhq/pickem-api/internal/domain/league"
	qb "github.com/pickemhq/pickem-api/internal/platform/querybuilder"
)

// LeagueRepository stores leagues, join requests and memberships in postgres.
type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) CreateLeague(ctx context.Context, l league.League) error {
	const query = `
		INSERT INTO leagues (id, name, commissioner_id, registration_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, l.ID, l.Name, l.CommissionerID, l.RegistrationOpen, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert league: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetLeagueByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	var row leagueTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM leagues WHERE id = $1`, leagueID)
	if isNotFound(err) {
		return league.League{}, false, nil
	}
	if err != nil {
		return league.League{}, false, fmt.Errorf("select league: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *LeagueRepository) ListLeagues(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("leagues").OrderBy("created_at ASC", "id ASC").SQL()
	if err != nil {
		return nil, fmt.Errorf("build league query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	leagues := make([]league.League, 0, len(rows))
	for _, row := range rows {
		leagues = append(leagues, row.toDomain())
	}
	return leagues, nil
}

func (r *LeagueRepository) SetRegistrationOpen(ctx context.Context, leagueID string, open bool) error {
	const query = `UPDATE leagues SET registration_open = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, leagueID, open)
	if err != nil {
		return fmt.Errorf("update league registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update league registration: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("league %q not found", leagueID)
	}
	return nil
}

func (r *LeagueRepository) DeleteLeague(ctx context.Context, leagueID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leagues WHERE id = $1`, leagueID)
	if err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("league %q not found", leagueID)
	}
	return nil
}

func (r *LeagueRepository) CreateRequest(ctx context.Context, req league.MembershipRequest) (league.MembershipRequest, error) {
	const query = `
		INSERT INTO membership_requests (id, league_id, user_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`

	var row membershipRequestTableModel
	err := r.db.GetContext(ctx, &row, query, req.ID, req.LeagueID, req.UserID, string(req.State), req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return league.MembershipRequest{}, fmt.Errorf("insert membership request: %w", err)
	}
	return row.toDomain(), nil
}

func (r *LeagueRepository) GetRequestByID(ctx context.Context, requestID string) (league.MembershipRequest, bool, error) {
	var row membershipRequestTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM membership_requests WHERE id = $1`, requestID)
	if isNotFound(err) {
		return league.MembershipRequest{}, false, nil
	}
	if err != nil {
		return league.MembershipRequest{}, false, fmt.Errorf("select membership request: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *LeagueRepository) GetRequestByLeagueAndUser(ctx context.Context, leagueID, userID string) (league.MembershipRequest, bool, error) {
	const query = `SELECT * FROM membership_requests WHERE league_id = $1 AND user_id = $2`

	var row membershipRequestTableModel
	err := r.db.GetContext(ctx, &row, query, leagueID, userID)
	if isNotFound(err) {
		return league.MembershipRequest{}, false, nil
	}
	if err != nil {
		return league.MembershipRequest{}, false, fmt.Errorf("select membership request: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *LeagueRepository) ListRequestsByLeague(ctx context.Context, leagueID string, state league.RequestState) ([]league.MembershipRequest, error) {
	builder := qb.Select("membership_requests").
		Where("league_id = ?", leagueID).
		OrderBy("created_at ASC", "id ASC")
	if state != "" {
		builder = builder.Where("state = ?", string(state))
	}
	query, args, err := builder.SQL()
	if err != nil {
		return nil, fmt.Errorf("build membership request query: %w", err)
	}

	var rows []membershipRequestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select membership requests: %w", err)
	}

	requests := make([]league.MembershipRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.toDomain())
	}
	return requests, nil
}

func (r *LeagueRepository) MarkRequestAccepted(ctx context.Context, requestID string) error {
	const query = `UPDATE membership_requests SET state = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, requestID, string(league.RequestAccepted))
	if err != nil {
		return fmt.Errorf("update membership request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership request: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership request %q not found", requestID)
	}
	return nil
}

func (r *LeagueRepository) DeleteRequest(ctx context.Context, requestID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM membership_requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("delete membership request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete membership request: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership request %q not found", requestID)
	}
	return nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, m league.Membership) error {
	const query = `
		INSERT INTO league_members (league_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (league_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, m.LeagueID, m.UserID, m.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert league member: %w", err)
	}
	return nil
}

func (r *LeagueRepository) RemoveMember(ctx context.Context, leagueID, userID string) error {
	const query = `DELETE FROM league_members WHERE league_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, leagueID, userID)
	if err != nil {
		return fmt.Errorf("delete league member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete league member: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("member %q not found in league %q", userID, leagueID)
	}
	return nil
}

func (r *LeagueRepository) IsMember(ctx context.Context, leagueID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM league_members WHERE league_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, leagueID, userID); err != nil {
		return false, fmt.Errorf("select league membership: %w", err)
	}
	return exists, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Membership, error) {
	query, args, err := qb.Select("league_members").
		Where("league_id = ?", leagueID).
		OrderBy("joined_at ASC", "user_id ASC").
		SQL()
	if err != nil {
		return nil, fmt.Errorf("build league member query: %w", err)
	}

	var rows []membershipTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select league members: %w", err)
	}

	members := make([]league.Membership, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toDomain())
	}
	return members, nil
}
