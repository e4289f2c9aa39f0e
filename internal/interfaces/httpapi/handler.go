package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/user"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

type Handler struct {
	gameService       *usecase.GameService
	pickService       *usecase.PickService
	scoringService    *usecase.ScoringService
	leagueService     *usecase.LeagueService
	membershipService *usecase.MembershipService
	tournamentService *usecase.TournamentService
	resultsSync       *usecase.ResultsSyncService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	pickService *usecase.PickService,
	scoringService *usecase.ScoringService,
	leagueService *usecase.LeagueService,
	membershipService *usecase.MembershipService,
	tournamentService *usecase.TournamentService,
	resultsSync *usecase.ResultsSyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:       gameService,
		pickService:       pickService,
		scoringService:    scoringService,
		leagueService:     leagueService,
		membershipService: membershipService,
		tournamentService: tournamentService,
		resultsSync:       resultsSync,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody unmarshals a request body into dst and runs struct validation.
// Unknown fields are rejected so clients notice typoed keys.
func (h *Handler) decodeBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func requirePrincipal(r *http.Request) (user.Principal, error) {
	p, ok := principalFromContext(r.Context())
	if !ok || p.UserID == "" {
		return user.Principal{}, fmt.Errorf("%w: missing authenticated principal", usecase.ErrUnauthorized)
	}
	return p, nil
}

// weekQuery parses an optional ?week= parameter. Zero means "current".
func weekQuery(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("week"))
	if raw == "" {
		return 0, nil
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 0 {
		return 0, fmt.Errorf("%w: week must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return week, nil
}

type teamDTO struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	LogoURL      string `json:"logoUrl,omitempty"`
}

// Stored games may lack a short code; clients always get one.
func teamToDTO(t game.Team) teamDTO {
	abbr := t.Abbreviation
	if abbr == "" {
		abbr = game.Abbreviate(t.Name)
	}
	return teamDTO{Name: t.Name, Abbreviation: abbr, LogoURL: t.LogoURL}
}

type gameResultDTO struct {
	Winner    string `json:"winner"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}

type gameDTO struct {
	ID          string         `json:"id"`
	Week        int            `json:"week"`
	HomeTeam    teamDTO        `json:"homeTeam"`
	AwayTeam    teamDTO        `json:"awayTeam"`
	PointSpread float64        `json:"pointSpread"`
	LockAt      time.Time      `json:"lockAt"`
	Status      string         `json:"status"`
	Result      *gameResultDTO `json:"result,omitempty"`
}

func gameToDTO(g game.Game) gameDTO {
	dto := gameDTO{
		ID:          g.ID,
		Week:        g.Week,
		HomeTeam:    teamToDTO(g.HomeTeam),
		AwayTeam:    teamToDTO(g.AwayTeam),
		PointSpread: g.PointSpread,
		LockAt:      g.LockAt,
		Status:      g.Status,
	}
	if g.Result != nil {
		dto.Result = &gameResultDTO{
			Winner:    string(g.Result.Winner),
			HomeScore: g.Result.HomeScore,
			AwayScore: g.Result.AwayScore,
		}
	}
	return dto
}

type weekGamesDTO struct {
	Week  int       `json:"week"`
	Games []gameDTO `json:"games"`
}

func (h *Handler) ListWeekGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekGames")
	defer span.End()

	week, err := weekQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	week, games, err := h.gameService.WeekGames(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list week games failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, weekGamesDTO{Week: week, Games: items})
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	g, err := h.gameService.GetGame(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(g))
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentWeek")
	defer span.End()

	week, err := h.gameService.CurrentWeek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "current week failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"week": week})
}

type lockTimeDTO struct {
	Week   int       `json:"week"`
	LockAt time.Time `json:"lockAt"`
}

func (h *Handler) GetLockTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLockTime")
	defer span.End()

	week, err := weekQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	week, lockAt, err := h.gameService.LockTime(ctx, week)
	if err != nil {
		h.logger.WarnContext(ctx, "lock time failed", "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lockTimeDTO{Week: week, LockAt: lockAt})
}
