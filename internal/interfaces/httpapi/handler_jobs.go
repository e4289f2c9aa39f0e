package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

type resultsSyncJobRequest struct {
	Week int `json:"week" validate:"omitempty,min=1"`
}

// RunResultsSyncJob pulls final scores for a week from the upstream feed,
// finalizes games, decides matchups and advances bracket rounds. Week zero
// (or an empty body) means the current week.
func (h *Handler) RunResultsSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResultsSyncJob")
	defer span.End()

	if h.resultsSync == nil {
		writeError(ctx, w, fmt.Errorf("%w: results sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req resultsSyncJobRequest
	if err := h.decodeJobBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	week := req.Week
	if week == 0 {
		current, err := h.gameService.CurrentWeek(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		week = current
	}

	result, err := h.resultsSync.SyncWeek(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "results sync job failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type recomputeJobRequest struct {
	MaxWorkers int `json:"max_workers" validate:"omitempty,min=1,max=64"`
}

func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	var req recomputeJobRequest
	if err := h.decodeJobBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.RecomputeAll(ctx, req.MaxWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type advanceRoundsJobRequest struct {
	LeagueID string `json:"league_id" validate:"required"`
}

type advanceRoundsJobResult struct {
	LeagueID        string `json:"league_id"`
	MatchupsDecided int    `json:"matchups_decided"`
	RoundsAdvanced  int    `json:"rounds_advanced"`
}

// RunAdvanceRoundsJob resolves the current bracket week from final game
// scores and then creates the next round if the current one is complete.
func (h *Handler) RunAdvanceRoundsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAdvanceRoundsJob")
	defer span.End()

	var req advanceRoundsJobRequest
	if err := h.decodeJobBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	decided, err := h.tournamentService.ResolveWeek(ctx, req.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "advance rounds job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	advanced, err := h.tournamentService.AdvanceRounds(ctx, req.LeagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "advance rounds job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, advanceRoundsJobResult{
		LeagueID:        req.LeagueID,
		MatchupsDecided: decided,
		RoundsAdvanced:  advanced,
	})
}

// decodeJobBody is decodeBody with an empty body allowed; scheduled
// callers often post without a payload.
func (h *Handler) decodeJobBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return h.validateJobBody(r, dst)
		}
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateJobBody(r, dst)
}

func (h *Handler) validateJobBody(r *http.Request, dst any) error {
	if err := h.validator.StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
