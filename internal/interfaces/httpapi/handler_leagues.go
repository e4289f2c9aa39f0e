package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/scoring"
)

type leagueDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CommissionerID   string    `json:"commissionerId"`
	RegistrationOpen bool      `json:"registrationOpen"`
	CreatedAt        time.Time `json:"createdAt"`
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:               l.ID,
		Name:             l.Name,
		CommissionerID:   l.CommissionerID,
		RegistrationOpen: l.RegistrationOpen,
		CreatedAt:        l.CreatedAt,
	}
}

type membershipRequestDTO struct {
	ID        string    `json:"id"`
	LeagueID  string    `json:"leagueId"`
	UserID    string    `json:"userId"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

func requestToDTO(r league.MembershipRequest) membershipRequestDTO {
	return membershipRequestDTO{
		ID:        r.ID,
		LeagueID:  r.LeagueID,
		UserID:    r.UserID,
		State:     string(r.State),
		CreatedAt: r.CreatedAt,
	}
}

type memberDTO struct {
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

type leaderboardRowDTO struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

func rowsToDTO(rows []scoring.Row) []leaderboardRowDTO {
	items := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, leaderboardRowDTO{
			UserID: row.UserID,
			Name:   row.Name,
			Points: row.Points,
			Rank:   row.Rank,
		})
	}
	return items
}

type createLeagueRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createLeagueRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.leagueService.CreateLeague(ctx, req.Name, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(created))
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	l, err := h.leagueService.GetLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(l))
}

func (h *Handler) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteLeague")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	if err := h.leagueService.DeleteLeague(ctx, leagueID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete league failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type setRegistrationRequest struct {
	Open *bool `json:"open" validate:"required"`
}

func (h *Handler) SetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetRegistration")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setRegistrationRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	updated, err := h.leagueService.SetRegistration(ctx, leagueID, principal.UserID, *req.Open)
	if err != nil {
		h.logger.WarnContext(ctx, "set registration failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(updated))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	request, err := h.membershipService.Join(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, requestToDTO(request))
}

func (h *Handler) LeaveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveLeague")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	if err := h.membershipService.Leave(ctx, leagueID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "leave league failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptRequest")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	accepted, err := h.membershipService.Accept(ctx, leagueID, requestID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "accept request failed", "league_id", leagueID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, requestToDTO(accepted))
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectRequest")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	if err := h.membershipService.Reject(ctx, leagueID, requestID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "reject request failed", "league_id", leagueID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingRequests")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	requests, err := h.membershipService.PendingRequests(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list pending requests failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]membershipRequestDTO, 0, len(requests))
	for _, request := range requests {
		items = append(items, requestToDTO(request))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMembers")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	members, err := h.membershipService.Members(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]memberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, memberDTO{UserID: m.UserID, JoinedAt: m.JoinedAt})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMyStanding(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyStanding")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	standing, err := h.membershipService.Standing(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standing failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"standing": standing})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	rows, err := h.scoringService.Leaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rowsToDTO(rows))
}

func (h *Handler) GetLeagueLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueLeaderboard")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rows, err := h.scoringService.LeagueLeaderboard(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "league leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rowsToDTO(rows))
}

type weekScoresDTO struct {
	Week   int            `json:"week"`
	Points map[string]int `json:"points"`
}

func (h *Handler) GetWeekScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekScores")
	defer span.End()

	week, err := weekQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if week == 0 {
		if week, err = h.gameService.CurrentWeek(ctx); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	points, err := h.scoringService.WeekScores(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "week scores failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekScoresDTO{Week: week, Points: points})
}
