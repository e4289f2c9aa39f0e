package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/matchup"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

type matchupDTO struct {
	ID         string `json:"id"`
	Round      int    `json:"round"`
	Slot       int    `json:"slot"`
	HomeUserID string `json:"homeUserId"`
	AwayUserID string `json:"awayUserId,omitempty"`
	WinnerID   string `json:"winnerId,omitempty"`
	Week       int    `json:"week"`
}

func matchupToDTO(m matchup.Matchup) matchupDTO {
	return matchupDTO{
		ID:         m.ID,
		Round:      m.Round,
		Slot:       m.Slot,
		HomeUserID: m.HomeUserID,
		AwayUserID: m.AwayUserID,
		WinnerID:   m.WinnerID,
		Week:       m.Week,
	}
}

type bracketDTO struct {
	ID           string       `json:"id"`
	LeagueID     string       `json:"leagueId"`
	StartingWeek int          `json:"startingWeek"`
	CreatedAt    time.Time    `json:"createdAt"`
	Active       bool         `json:"active"`
	Matchups     []matchupDTO `json:"matchups"`
}

func bracketToDTO(b usecase.Bracket) bracketDTO {
	dto := bracketDTO{
		ID:           b.Tournament.ID,
		LeagueID:     b.Tournament.LeagueID,
		StartingWeek: b.Tournament.StartingWeek,
		CreatedAt:    b.Tournament.CreatedAt,
		Active:       b.Active,
		Matchups:     make([]matchupDTO, 0, len(b.Matchups)),
	}
	for _, m := range b.Matchups {
		dto.Matchups = append(dto.Matchups, matchupToDTO(m))
	}
	return dto
}

type createTournamentRequest struct {
	StartingWeek int `json:"starting_week" validate:"required,min=1"`
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createTournamentRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	bracket, err := h.tournamentService.Create(ctx, leagueID, req.StartingWeek, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "league_id", leagueID, "starting_week", req.StartingWeek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bracketToDTO(bracket))
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	bracket, err := h.tournamentService.Get(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bracketToDTO(bracket))
}

func (h *Handler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTournament")
	defer span.End()

	principal, err := requirePrincipal(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	if err := h.tournamentService.Delete(ctx, leagueID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete tournament failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type setWinnerRequest struct {
	WinnerID string `json:"winner_id" validate:"required"`
}

func (h *Handler) SetMatchupWinner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMatchupWinner")
	defer span.End()

	if _, err := requirePrincipal(r); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setWinnerRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchupID := strings.TrimSpace(r.PathValue("matchupID"))
	updated, err := h.tournamentService.SetWinner(ctx, matchupID, req.WinnerID)
	if err != nil {
		h.logger.WarnContext(ctx, "set matchup winner failed", "matchup_id", matchupID, "winner_id", req.WinnerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchupToDTO(updated))
}
