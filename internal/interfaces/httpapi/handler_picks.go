package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

type pickDTO struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	Side      string    `json:"side"`
	CreatedAt time.Time `json:"createdAt"`
}

func pickToDTO(p pick.Pick) pickDTO {
	return pickDTO{
		ID:        p.ID,
		GameID:    p.GameID,
		Side:      string(p.Side),
		CreatedAt: p.CreatedAt,
	}
}

type pickFailureDTO struct {
	GameID string `json:"gameId"`
	Reason string `json:"reason"`
}

type confirmOutcomeDTO struct {
	Confirmed []pickDTO        `json:"confirmed"`
	Failed    []pickFailureDTO `json:"failed,omitempty"`
}

func outcomeToDTO(outcome usecase.ConfirmOutcome) confirmOutcomeDTO {
	dto := confirmOutcomeDTO{Confirmed: make([]pickDTO, 0, len(outcome.Confirmed))}
	for _, p := range outcome.Confirmed {
		dto.Confirmed = append(dto.Confirmed, pickToDTO(p))
	}
	for _, f := range outcome.Failed {
		dto.Failed = append(dto.Failed, pickFailureDTO{GameID: f.GameID, Reason: f.Reason})
	}
	return dto
}

type recordPickRequest struct {
	GameID string `json:"game_id" validate:"required"`
	Side   string `json:"side" validate:"required,oneof=HOME AWAY"`
}

func (h *Handler) RecordPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPick")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordPickRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	side, err := game.ParseSide(req.Side)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.pickService.RecordPick(ctx, principal.UserID, req.GameID, side); err != nil {
		h.logger.WarnContext(ctx, "record pick failed", "user_id", principal.UserID, "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

type confirmPicksRequest struct {
	Week int `json:"week" validate:"required,min=1"`
}

func (h *Handler) ConfirmPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmPicks")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req confirmPicksRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.pickService.ConfirmPicks(ctx, principal.UserID, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm picks failed", "user_id", principal.UserID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcomeToDTO(outcome))
}

type pickUpdateItem struct {
	PickID string `json:"pick_id" validate:"required_without=GameID"`
	GameID string `json:"game_id" validate:"required_without=PickID"`
	Side   string `json:"side" validate:"required,oneof=HOME AWAY"`
}

type updatePicksRequest struct {
	Updates []pickUpdateItem `json:"updates" validate:"required,min=1,dive"`
}

func (h *Handler) UpdatePicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePicks")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updatePicksRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updates := make([]pick.Update, 0, len(req.Updates))
	for _, item := range req.Updates {
		side, err := game.ParseSide(item.Side)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		ref := pick.ByGameID(item.GameID)
		if item.PickID != "" {
			ref = pick.ByPickID(item.PickID)
		}
		updates = append(updates, pick.Update{Ref: ref, Side: side})
	}

	outcome, err := h.pickService.UpdatePicks(ctx, principal.UserID, updates)
	if err != nil {
		h.logger.WarnContext(ctx, "update picks failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcomeToDTO(outcome))
}

func (h *Handler) DeletePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePick")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	pickID := strings.TrimSpace(r.PathValue("pickID"))
	if err := h.pickService.DeletePick(ctx, principal.UserID, pickID); err != nil {
		h.logger.WarnContext(ctx, "delete pick failed", "user_id", principal.UserID, "pick_id", pickID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type weekPicksDTO struct {
	Week  int       `json:"week"`
	Picks []pickDTO `json:"picks"`
}

type leaguePicksDTO struct {
	LeagueID string         `json:"leagueId"`
	Weeks    []weekPicksDTO `json:"weeks"`
}

func (h *Handler) ListMyPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPicks")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	grouped, err := h.pickService.UserPicks(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	leagueIDs := make([]string, 0, len(grouped))
	for leagueID := range grouped {
		leagueIDs = append(leagueIDs, leagueID)
	}
	sort.Strings(leagueIDs)

	items := make([]leaguePicksDTO, 0, len(leagueIDs))
	for _, leagueID := range leagueIDs {
		byWeek := grouped[leagueID]
		weeks := make([]int, 0, len(byWeek))
		for week := range byWeek {
			weeks = append(weeks, week)
		}
		sort.Ints(weeks)

		leagueDTO := leaguePicksDTO{LeagueID: leagueID, Weeks: make([]weekPicksDTO, 0, len(weeks))}
		for _, week := range weeks {
			picks := make([]pickDTO, 0, len(byWeek[week]))
			for _, p := range byWeek[week] {
				picks = append(picks, pickToDTO(p))
			}
			leagueDTO.Weeks = append(leagueDTO.Weeks, weekPicksDTO{Week: week, Picks: picks})
		}
		items = append(items, leagueDTO)
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type confirmationDTO struct {
	Week      int  `json:"week"`
	Confirmed bool `json:"confirmed"`
}

func (h *Handler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetConfirmation")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

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

	writeSuccess(ctx, w, http.StatusOK, confirmationDTO{
		Week:      week,
		Confirmed: h.pickService.IsConfirmed(principal.UserID, week),
	})
}

type hydrateSheetRequest struct {
	Week int `json:"week" validate:"required,min=1"`
}

// HydrateSheet preloads the caller's draft sheet from confirmed picks.
// Existing draft entries are never overwritten.
func (h *Handler) HydrateSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.HydrateSheet")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req hydrateSheetRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.pickService.HydrateSheet(ctx, principal.UserID, req.Week); err != nil {
		h.logger.WarnContext(ctx, "hydrate sheet failed", "user_id", principal.UserID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "hydrated"})
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndSession")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.pickService.EndSession(principal.UserID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "session ended"})
}
