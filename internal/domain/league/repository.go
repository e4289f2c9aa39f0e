package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	CreateLeague(ctx context.Context, l League) error
	GetLeagueByID(ctx context.Context, leagueID string) (League, bool, error)
	ListLeagues(ctx context.Context) ([]League, error)
	SetRegistrationOpen(ctx context.Context, leagueID string, open bool) error
	DeleteLeague(ctx context.Context, leagueID string) error

	CreateRequest(ctx context.Context, r MembershipRequest) (MembershipRequest, error)
	GetRequestByID(ctx context.Context, requestID string) (MembershipRequest, bool, error)
	GetRequestByLeagueAndUser(ctx context.Context, leagueID, userID string) (MembershipRequest, bool, error)
	ListRequestsByLeague(ctx context.Context, leagueID string, state RequestState) ([]MembershipRequest, error)
	MarkRequestAccepted(ctx context.Context, requestID string) error
	DeleteRequest(ctx context.Context, requestID string) error

	AddMember(ctx context.Context, m Membership) error
	RemoveMember(ctx context.Context, leagueID, userID string) error
	IsMember(ctx context.Context, leagueID, userID string) (bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Membership, error)
}
