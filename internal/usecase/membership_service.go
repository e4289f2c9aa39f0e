package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/platform/id"
)

// MembershipService runs the per-(user, league) state machine:
// NONE to PENDING on join, PENDING to ACCEPTED by commissioner action,
// and back to NONE on cancel, reject, or leave.
type MembershipService struct {
	leagueRepo league.Repository
	ids        id.Generator
	now        func() time.Time
}

func NewMembershipService(leagueRepo league.Repository, ids id.Generator) *MembershipService {
	return &MembershipService{
		leagueRepo: leagueRepo,
		ids:        ids,
		now:        time.Now,
	}
}

func (s *MembershipService) league(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetLeagueByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return lg, nil
}

// Join files a pending request. Closed registration rejects new
// requests outright; it never leaves them queued.
func (s *MembershipService) Join(ctx context.Context, leagueID, userID string) (league.MembershipRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.Join")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return league.MembershipRequest{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	lg, err := s.league(ctx, leagueID)
	if err != nil {
		return league.MembershipRequest{}, err
	}
	if !lg.RegistrationOpen {
		return league.MembershipRequest{}, fmt.Errorf("%w: registration for league %s is closed", ErrInvalidInput, lg.ID)
	}
	if lg.CommissionerID == userID {
		return league.MembershipRequest{}, fmt.Errorf("%w: commissioner is already a member", ErrInvalidInput)
	}

	if member, err := s.leagueRepo.IsMember(ctx, lg.ID, userID); err != nil {
		return league.MembershipRequest{}, fmt.Errorf("check membership: %w", err)
	} else if member {
		return league.MembershipRequest{}, fmt.Errorf("%w: user %s is already a member", ErrInvalidInput, userID)
	}
	if _, exists, err := s.leagueRepo.GetRequestByLeagueAndUser(ctx, lg.ID, userID); err != nil {
		return league.MembershipRequest{}, fmt.Errorf("get membership request: %w", err)
	} else if exists {
		return league.MembershipRequest{}, fmt.Errorf("%w: a request for user %s already exists", ErrInvalidInput, userID)
	}

	requestID, err := s.ids.NewID("req_")
	if err != nil {
		return league.MembershipRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	now := s.now().UTC()
	req := league.MembershipRequest{
		ID:        requestID,
		LeagueID:  lg.ID,
		UserID:    userID,
		State:     league.RequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := req.Validate(); err != nil {
		return league.MembershipRequest{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.leagueRepo.CreateRequest(ctx, req)
	if err != nil {
		return league.MembershipRequest{}, fmt.Errorf("create membership request: %w", err)
	}

	return created, nil
}

// Leave takes the caller back to NONE from either PENDING or ACCEPTED,
// regardless of the registration flag. The commissioner cannot leave.
func (s *MembershipService) Leave(ctx context.Context, leagueID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.Leave")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	lg, err := s.league(ctx, leagueID)
	if err != nil {
		return err
	}
	if lg.CommissionerID == userID {
		return fmt.Errorf("%w: the commissioner cannot leave league %s", ErrInvalidInput, lg.ID)
	}

	req, hasRequest, err := s.leagueRepo.GetRequestByLeagueAndUser(ctx, lg.ID, userID)
	if err != nil {
		return fmt.Errorf("get membership request: %w", err)
	}
	member, err := s.leagueRepo.IsMember(ctx, lg.ID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !hasRequest && !member {
		return fmt.Errorf("%w: user %s has no standing in league %s", ErrNotFound, userID, lg.ID)
	}

	if hasRequest {
		if err := s.leagueRepo.DeleteRequest(ctx, req.ID); err != nil {
			return fmt.Errorf("delete membership request: %w", err)
		}
	}
	if member {
		if err := s.leagueRepo.RemoveMember(ctx, lg.ID, userID); err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
	}

	return nil
}

// Accept moves a pending request to ACCEPTED. Commissioner only.
func (s *MembershipService) Accept(ctx context.Context, leagueID, requestID, callerID string) (league.MembershipRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.Accept")
	defer span.End()

	req, err := s.pendingRequest(ctx, leagueID, requestID, callerID)
	if err != nil {
		return league.MembershipRequest{}, err
	}

	if err := s.leagueRepo.MarkRequestAccepted(ctx, req.ID); err != nil {
		return league.MembershipRequest{}, fmt.Errorf("mark request accepted: %w", err)
	}

	now := s.now().UTC()
	if err := s.leagueRepo.AddMember(ctx, league.Membership{
		LeagueID: req.LeagueID,
		UserID:   req.UserID,
		JoinedAt: now,
	}); err != nil {
		return league.MembershipRequest{}, fmt.Errorf("add member: %w", err)
	}

	req.State = league.RequestAccepted
	req.UpdatedAt = now
	return req, nil
}

// Reject removes a pending request without creating a membership.
// Commissioner only. The user may request again later.
func (s *MembershipService) Reject(ctx context.Context, leagueID, requestID, callerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.Reject")
	defer span.End()

	req, err := s.pendingRequest(ctx, leagueID, requestID, callerID)
	if err != nil {
		return err
	}

	if err := s.leagueRepo.DeleteRequest(ctx, req.ID); err != nil {
		return fmt.Errorf("delete membership request: %w", err)
	}

	return nil
}

func (s *MembershipService) pendingRequest(ctx context.Context, leagueID, requestID, callerID string) (league.MembershipRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return league.MembershipRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}

	lg, err := s.league(ctx, leagueID)
	if err != nil {
		return league.MembershipRequest{}, err
	}
	if lg.CommissionerID != callerID {
		return league.MembershipRequest{}, fmt.Errorf("%w: only the commissioner may resolve requests for league %s", ErrUnauthorized, lg.ID)
	}

	req, exists, err := s.leagueRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return league.MembershipRequest{}, fmt.Errorf("get membership request: %w", err)
	}
	if !exists || req.LeagueID != lg.ID {
		return league.MembershipRequest{}, fmt.Errorf("%w: request=%s", ErrNotFound, requestID)
	}
	if req.State != league.RequestPending {
		return league.MembershipRequest{}, fmt.Errorf("%w: request %s is not pending", ErrInvalidInput, requestID)
	}

	return req, nil
}

// PendingRequests lists a league's open requests. Commissioner only.
func (s *MembershipService) PendingRequests(ctx context.Context, leagueID, callerID string) ([]league.MembershipRequest, error) {
	lg, err := s.league(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if lg.CommissionerID != callerID {
		return nil, fmt.Errorf("%w: only the commissioner may list requests for league %s", ErrUnauthorized, lg.ID)
	}

	requests, err := s.leagueRepo.ListRequestsByLeague(ctx, lg.ID, league.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("list membership requests: %w", err)
	}

	return requests, nil
}

// Members lists the league's accepted members. The commissioner is
// implicit and always listed first.
func (s *MembershipService) Members(ctx context.Context, leagueID string) ([]league.Membership, error) {
	lg, err := s.league(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	members, err := s.leagueRepo.ListMembers(ctx, lg.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	out := make([]league.Membership, 0, len(members)+1)
	out = append(out, league.Membership{LeagueID: lg.ID, UserID: lg.CommissionerID, JoinedAt: lg.CreatedAt})
	for _, m := range members {
		if m.UserID == lg.CommissionerID {
			continue
		}
		out = append(out, m)
	}

	return out, nil
}

// Standing reports the caller's state for a league: NONE, PENDING, or
// ACCEPTED.
func (s *MembershipService) Standing(ctx context.Context, leagueID, userID string) (string, error) {
	lg, err := s.league(ctx, leagueID)
	if err != nil {
		return "", err
	}
	if lg.CommissionerID == userID {
		return string(league.RequestAccepted), nil
	}

	if member, err := s.leagueRepo.IsMember(ctx, lg.ID, userID); err != nil {
		return "", fmt.Errorf("check membership: %w", err)
	} else if member {
		return string(league.RequestAccepted), nil
	}

	if req, exists, err := s.leagueRepo.GetRequestByLeagueAndUser(ctx, lg.ID, userID); err != nil {
		return "", fmt.Errorf("get membership request: %w", err)
	} else if exists && req.State == league.RequestPending {
		return string(league.RequestPending), nil
	}

	return "NONE", nil
}
