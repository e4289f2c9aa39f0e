package league

import (
	"fmt"
	"time"
)

// RequestState tracks a join request through its lifecycle. There is no
// stored NONE state; absence of a request means the user never asked.
type RequestState string

const (
	RequestPending  RequestState = "PENDING"
	RequestAccepted RequestState = "ACCEPTED"
)

// League is a private pick'em league run by a single commissioner.
type League struct {
	ID               string
	Name             string
	CommissionerID   string
	RegistrationOpen bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CommissionerID == "" {
		return fmt.Errorf("league commissioner id is required")
	}

	return nil
}

// MembershipRequest is a user's ask to join a league. Accepting it
// creates the membership; rejecting it deletes the row outright so the
// user may apply again later.
type MembershipRequest struct {
	ID        string
	LeagueID  string
	UserID    string
	State     RequestState
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r MembershipRequest) Validate() error {
	if r.LeagueID == "" {
		return fmt.Errorf("membership request league id is required")
	}
	if r.UserID == "" {
		return fmt.Errorf("membership request user id is required")
	}

	return nil
}

// Membership records an accepted member of a league.
type Membership struct {
	LeagueID string
	UserID   string
	JoinedAt time.Time
}
