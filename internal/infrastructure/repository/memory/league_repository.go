package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pickemhq/pickem-api/internal/domain/league"
)

type memberKey struct {
	leagueID string
	userID   string
}

type LeagueRepository struct {
	mu           sync.RWMutex
	leagues      map[string]league.League
	leagueOrder  []string
	requests     map[string]league.MembershipRequest
	requestOrder []string
	members      map[memberKey]league.Membership
	memberOrder  []memberKey
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	order := make([]string, 0, len(leagues))
	for _, l := range leagues {
		items[l.ID] = l
		order = append(order, l.ID)
	}

	return &LeagueRepository{
		leagues:     items,
		leagueOrder: order,
		requests:    make(map[string]league.MembershipRequest),
		members:     make(map[memberKey]league.Membership),
	}
}

func (r *LeagueRepository) CreateLeague(_ context.Context, l league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leagues[l.ID]; ok {
		return fmt.Errorf("league %s already exists", l.ID)
	}
	r.leagues[l.ID] = l
	r.leagueOrder = append(r.leagueOrder, l.ID)

	return nil
}

func (r *LeagueRepository) GetLeagueByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leagues[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) ListLeagues(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.leagueOrder))
	for _, id := range r.leagueOrder {
		out = append(out, r.leagues[id])
	}

	return out, nil
}

func (r *LeagueRepository) SetRegistrationOpen(_ context.Context, leagueID string, open bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leagues[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	l.RegistrationOpen = open
	r.leagues[leagueID] = l

	return nil
}

func (r *LeagueRepository) DeleteLeague(_ context.Context, leagueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leagues[leagueID]; !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	delete(r.leagues, leagueID)
	r.leagueOrder = removeString(r.leagueOrder, leagueID)

	for id, req := range r.requests {
		if req.LeagueID == leagueID {
			delete(r.requests, id)
			r.requestOrder = removeString(r.requestOrder, id)
		}
	}
	for key := range r.members {
		if key.leagueID == leagueID {
			delete(r.members, key)
			r.memberOrder = removeMemberKey(r.memberOrder, key)
		}
	}

	return nil
}

func (r *LeagueRepository) CreateRequest(_ context.Context, req league.MembershipRequest) (league.MembershipRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; ok {
		return league.MembershipRequest{}, fmt.Errorf("request %s already exists", req.ID)
	}
	r.requests[req.ID] = req
	r.requestOrder = append(r.requestOrder, req.ID)

	return req, nil
}

func (r *LeagueRepository) GetRequestByID(_ context.Context, requestID string) (league.MembershipRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[requestID]
	if !ok {
		return league.MembershipRequest{}, false, nil
	}

	return req, true, nil
}

func (r *LeagueRepository) GetRequestByLeagueAndUser(_ context.Context, leagueID, userID string) (league.MembershipRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.requestOrder {
		req := r.requests[id]
		if req.LeagueID == leagueID && req.UserID == userID {
			return req, true, nil
		}
	}

	return league.MembershipRequest{}, false, nil
}

func (r *LeagueRepository) ListRequestsByLeague(_ context.Context, leagueID string, state league.RequestState) ([]league.MembershipRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.MembershipRequest, 0)
	for _, id := range r.requestOrder {
		req := r.requests[id]
		if req.LeagueID == leagueID && req.State == state {
			out = append(out, req)
		}
	}

	return out, nil
}

func (r *LeagueRepository) MarkRequestAccepted(_ context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[requestID]
	if !ok {
		return fmt.Errorf("request %s not found", requestID)
	}
	req.State = league.RequestAccepted
	r.requests[requestID] = req

	return nil
}

func (r *LeagueRepository) DeleteRequest(_ context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[requestID]; !ok {
		return fmt.Errorf("request %s not found", requestID)
	}
	delete(r.requests, requestID)
	r.requestOrder = removeString(r.requestOrder, requestID)

	return nil
}

func (r *LeagueRepository) AddMember(_ context.Context, m league.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey{leagueID: m.LeagueID, userID: m.UserID}
	if _, ok := r.members[key]; ok {
		return nil
	}
	r.members[key] = m
	r.memberOrder = append(r.memberOrder, key)

	return nil
}

func (r *LeagueRepository) RemoveMember(_ context.Context, leagueID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey{leagueID: leagueID, userID: userID}
	if _, ok := r.members[key]; !ok {
		return fmt.Errorf("user %s is not a member of league %s", userID, leagueID)
	}
	delete(r.members, key)
	r.memberOrder = removeMemberKey(r.memberOrder, key)

	return nil
}

func (r *LeagueRepository) IsMember(_ context.Context, leagueID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[memberKey{leagueID: leagueID, userID: userID}]
	return ok, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.Membership, 0)
	for _, key := range r.memberOrder {
		if key.leagueID == leagueID {
			out = append(out, r.members[key])
		}
	}

	return out, nil
}

func removeString(items []string, target string) []string {
	for i, item := range items {
		if item == target {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func removeMemberKey(items []memberKey, target memberKey) []memberKey {
	for i, item := range items {
		if item == target {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}
