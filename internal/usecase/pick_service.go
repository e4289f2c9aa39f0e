package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
)

// PickService owns the two-tier pick state: the optimistic draft sheet
// per (user, week) and the authoritative confirmed picks in the
// repository. Confirmed state only changes after a successful
// repository call; the draft layer is the one explicitly optimistic
// exception.
type PickService struct {
	gameRepo   game.Repository
	pickRepo   pick.Repository
	leagueRepo league.Repository
	sheets     *SheetStore
	now        func() time.Time
}

func NewPickService(gameRepo game.Repository, pickRepo pick.Repository, leagueRepo league.Repository, sheets *SheetStore) *PickService {
	return &PickService{
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		leagueRepo: leagueRepo,
		sheets:     sheets,
		now:        time.Now,
	}
}

// ConfirmOutcome reports a confirm or update submission. Picks that
// failed repository validation are listed with their reasons; the
// successful ones are already merged into the sheet by game id.
type ConfirmOutcome struct {
	Confirmed []pick.Pick
	Failed    []PickFailure
}

type PickFailure struct {
	GameID string
	Reason string
}

// RecordPick writes a draft selection. It validates what can be known
// locally and never touches the confirmed layer.
func (s *PickService) RecordPick(ctx context.Context, userID, gameID string, side game.Side) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.RecordPick")
	defer span.End()

	userID = strings.TrimSpace(userID)
	gameID = strings.TrimSpace(gameID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if gameID == "" {
		return fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if side != game.SideHome && side != game.SideAway {
		return fmt.Errorf("%w: side must be HOME or AWAY", ErrInvalidInput)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	if g.Locked(s.now().UTC()) {
		return fmt.Errorf("%w: game %s is locked", ErrInvalidInput, gameID)
	}

	s.sheets.Record(userID, g.Week, Selection{GameID: gameID, Side: side})
	return nil
}

// ConfirmPicks submits every unconfirmed or changed selection on the
// user's sheet for the week. Each pick is validated independently so a
// rejection of one never blocks the rest; successes are merged back by
// game id and failures leave their selections unconfirmed.
func (s *PickService) ConfirmPicks(ctx context.Context, userID string, week int) (ConfirmOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ConfirmPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ConfirmOutcome{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return ConfirmOutcome{}, fmt.Errorf("%w: week must be positive", ErrInvalidInput)
	}

	selections := s.sheets.Selections(userID, week)
	pending := make([]Selection, 0, len(selections))
	for _, sel := range selections {
		if sel.PickID == "" || sel.Dirty {
			pending = append(pending, sel)
		}
	}
	if len(pending) == 0 {
		return ConfirmOutcome{}, fmt.Errorf("%w: no picks to confirm", ErrInvalidInput)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].GameID < pending[j].GameID })

	var outcome ConfirmOutcome
	now := s.now().UTC()
	for _, sel := range pending {
		confirmed, err := s.submitSelection(ctx, userID, sel, now)
		if err != nil {
			outcome.Failed = append(outcome.Failed, PickFailure{GameID: sel.GameID, Reason: err.Error()})
			continue
		}
		s.sheets.Confirm(userID, week, confirmed.GameID, confirmed.ID)
		outcome.Confirmed = append(outcome.Confirmed, confirmed)
	}

	return outcome, nil
}

func (s *PickService) submitSelection(ctx context.Context, userID string, sel Selection, now time.Time) (pick.Pick, error) {
	g, exists, err := s.gameRepo.GetByID(ctx, sel.GameID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: game=%s", ErrNotFound, sel.GameID)
	}
	if g.Locked(now) {
		return pick.Pick{}, fmt.Errorf("%w: game %s is locked", ErrInvalidInput, sel.GameID)
	}

	if sel.PickID != "" {
		return s.pickRepo.UpdateSide(ctx, sel.PickID, sel.Side)
	}

	// One pick per (user, game): a confirmed pick the sheet lost track
	// of is updated in place, not duplicated.
	if existing, ok, err := s.pickRepo.GetByUserAndGame(ctx, userID, sel.GameID); err != nil {
		return pick.Pick{}, fmt.Errorf("get pick by user and game: %w", err)
	} else if ok {
		return s.pickRepo.UpdateSide(ctx, existing.ID, sel.Side)
	}

	return s.pickRepo.Create(ctx, pick.Pick{
		UserID:    userID,
		GameID:    sel.GameID,
		Side:      sel.Side,
		CreatedAt: now,
	})
}

// UpdatePicks resubmits already-confirmed picks. Each update addresses
// its pick by pick id or, as a fallback, by game id; both resolve to a
// canonical pick before dispatch. Results merge back by game id.
func (s *PickService) UpdatePicks(ctx context.Context, userID string, updates []pick.Update) (ConfirmOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.UpdatePicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ConfirmOutcome{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if len(updates) == 0 {
		return ConfirmOutcome{}, fmt.Errorf("%w: no picks to update", ErrInvalidInput)
	}
	for _, u := range updates {
		if err := u.Ref.Validate(); err != nil {
			return ConfirmOutcome{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if u.Side != game.SideHome && u.Side != game.SideAway {
			return ConfirmOutcome{}, fmt.Errorf("%w: side must be HOME or AWAY", ErrInvalidInput)
		}
	}

	var outcome ConfirmOutcome
	now := s.now().UTC()
	for _, u := range updates {
		updated, gameID, err := s.applyUpdate(ctx, userID, u, now)
		if err != nil {
			outcome.Failed = append(outcome.Failed, PickFailure{GameID: gameID, Reason: err.Error()})
			continue
		}
		g, exists, err := s.gameRepo.GetByID(ctx, updated.GameID)
		if err == nil && exists {
			s.sheets.Confirm(userID, g.Week, updated.GameID, updated.ID)
		}
		outcome.Confirmed = append(outcome.Confirmed, updated)
	}

	return outcome, nil
}

// applyUpdate resolves one update to its pick and game. The returned
// game id identifies the game the update addressed even when the update
// fails; it stays empty only when a pick-id ref never resolved.
func (s *PickService) applyUpdate(ctx context.Context, userID string, u pick.Update, now time.Time) (pick.Pick, string, error) {
	var target pick.Pick
	var gameID string
	switch u.Ref.Kind {
	case pick.RefByPickID:
		p, ok, err := s.pickRepo.GetByID(ctx, u.Ref.ID)
		if err != nil {
			return pick.Pick{}, "", fmt.Errorf("get pick: %w", err)
		}
		if !ok {
			return pick.Pick{}, "", fmt.Errorf("%w: pick=%s", ErrNotFound, u.Ref.ID)
		}
		target = p
		gameID = p.GameID
	case pick.RefByGameID:
		gameID = u.Ref.ID
		p, ok, err := s.pickRepo.GetByUserAndGame(ctx, userID, u.Ref.ID)
		if err != nil {
			return pick.Pick{}, gameID, fmt.Errorf("get pick by user and game: %w", err)
		}
		if !ok {
			return pick.Pick{}, gameID, fmt.Errorf("%w: no pick for game=%s", ErrNotFound, u.Ref.ID)
		}
		target = p
	}
	if target.UserID != userID {
		return pick.Pick{}, gameID, fmt.Errorf("%w: pick=%s", ErrNotFound, target.ID)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, target.GameID)
	if err != nil {
		return pick.Pick{}, gameID, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return pick.Pick{}, gameID, fmt.Errorf("%w: game=%s", ErrNotFound, target.GameID)
	}
	if g.Locked(now) {
		return pick.Pick{}, gameID, fmt.Errorf("%w: game %s is locked", ErrInvalidInput, target.GameID)
	}

	updated, err := s.pickRepo.UpdateSide(ctx, target.ID, u.Side)
	return updated, gameID, err
}

// DeletePick removes one confirmed pick. A pick that does not exist or
// belongs to someone else reports not found either way; callers cannot
// probe other users' picks.
func (s *PickService) DeletePick(ctx context.Context, userID, pickID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.DeletePick")
	defer span.End()

	userID = strings.TrimSpace(userID)
	pickID = strings.TrimSpace(pickID)
	if userID == "" || pickID == "" {
		return fmt.Errorf("%w: user id and pick id are required", ErrInvalidInput)
	}

	p, ok, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return fmt.Errorf("get pick: %w", err)
	}
	if !ok || p.UserID != userID {
		return fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, p.GameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if exists && g.Locked(s.now().UTC()) {
		return fmt.Errorf("%w: game %s is locked", ErrInvalidInput, p.GameID)
	}

	if err := s.pickRepo.Delete(ctx, pickID); err != nil {
		return fmt.Errorf("delete pick: %w", err)
	}
	if exists {
		s.sheets.Remove(userID, g.Week, p.GameID)
	}

	return nil
}

// UserPicks groups a user's confirmed picks by league and week,
// mirroring how the leaderboard views slice them.
func (s *PickService) UserPicks(ctx context.Context, userID string) (map[string]map[int][]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.UserPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list picks by user: %w", err)
	}

	byWeek := make(map[int][]pick.Pick)
	for _, p := range picks {
		g, exists, err := s.gameRepo.GetByID(ctx, p.GameID)
		if err != nil {
			return nil, fmt.Errorf("get game: %w", err)
		}
		if !exists {
			continue
		}
		byWeek[g.Week] = append(byWeek[g.Week], p)
	}
	for week := range byWeek {
		sort.Slice(byWeek[week], func(i, j int) bool { return byWeek[week][i].GameID < byWeek[week][j].GameID })
	}

	leagues, err := s.leagueRepo.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make(map[string]map[int][]pick.Pick)
	for _, lg := range leagues {
		member, err := s.leagueRepo.IsMember(ctx, lg.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
		if !member && lg.CommissionerID != userID {
			continue
		}
		weeks := make(map[int][]pick.Pick, len(byWeek))
		for week, rows := range byWeek {
			weeks[week] = rows
		}
		out[lg.ID] = weeks
	}

	return out, nil
}

// IsConfirmed is the derived confirmation flag for a user's week.
func (s *PickService) IsConfirmed(userID string, week int) bool {
	return s.sheets.Confirmed(userID, week)
}

// HydrateSheet seeds the draft layer from confirmed picks at session
// start.
func (s *PickService) HydrateSheet(ctx context.Context, userID string, week int) error {
	picks, err := s.pickRepo.ListByUserAndWeek(ctx, userID, week)
	if err != nil {
		return fmt.Errorf("list picks by user and week: %w", err)
	}

	selections := make([]Selection, 0, len(picks))
	for _, p := range picks {
		selections = append(selections, Selection{GameID: p.GameID, Side: p.Side, PickID: p.ID})
	}
	s.sheets.Hydrate(userID, week, selections)

	return nil
}

// EndSession drops every draft sheet the user owns.
func (s *PickService) EndSession(userID string) {
	s.sheets.Clear(userID)
}
