package usecase

import (
	"sync"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

// Selection is one draft pick on a user's weekly sheet. PickID is empty
// until the selection is confirmed by the pick store; Dirty marks a
// selection changed since its last confirmation, including changes that
// restore the previous side.
type Selection struct {
	GameID string
	Side   game.Side
	PickID string
	Dirty  bool
}

type sheetKey struct {
	userID string
	week   int
}

// SheetStore holds per-(user, week) draft pick sheets for live
// sessions. Sheets are session-local state: they are hydrated from
// confirmed picks at session start and dropped on logout. Nothing here
// is authoritative.
type SheetStore struct {
	mu     sync.RWMutex
	sheets map[sheetKey]map[string]Selection
}

func NewSheetStore() *SheetStore {
	return &SheetStore{sheets: make(map[sheetKey]map[string]Selection)}
}

// Record applies a last-write-wins selection for one game. A re-record
// of the same side still marks the selection dirty.
func (s *SheetStore) Record(userID string, week int, sel Selection) {
	key := sheetKey{userID: userID, week: week}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.sheets[key]
	if !ok {
		sheet = make(map[string]Selection)
		s.sheets[key] = sheet
	}

	if prev, ok := sheet[sel.GameID]; ok && sel.PickID == "" {
		sel.PickID = prev.PickID
	}
	sel.Dirty = true
	sheet[sel.GameID] = sel
}

// Confirm merges a confirmed pick back into the sheet by game id. An
// unknown game id is ignored rather than inserted; the server response
// never grows the draft layer.
func (s *SheetStore) Confirm(userID string, week int, gameID, pickID string) {
	key := sheetKey{userID: userID, week: week}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.sheets[key]
	if !ok {
		return
	}
	sel, ok := sheet[gameID]
	if !ok {
		return
	}
	sel.PickID = pickID
	sel.Dirty = false
	sheet[gameID] = sel
}

func (s *SheetStore) Remove(userID string, week int, gameID string) {
	key := sheetKey{userID: userID, week: week}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sheet, ok := s.sheets[key]; ok {
		delete(sheet, gameID)
	}
}

// Selections returns a copy of the sheet; mutating it does not touch
// the stored state.
func (s *SheetStore) Selections(userID string, week int) map[string]Selection {
	key := sheetKey{userID: userID, week: week}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sheet, ok := s.sheets[key]
	if !ok {
		return nil
	}
	out := make(map[string]Selection, len(sheet))
	for gameID, sel := range sheet {
		out[gameID] = sel
	}

	return out
}

// Confirmed reports whether every current selection carries a pick id
// and none has changed since its last confirmation. An empty sheet is
// not confirmed; there is nothing to confirm.
func (s *SheetStore) Confirmed(userID string, week int) bool {
	key := sheetKey{userID: userID, week: week}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sheet, ok := s.sheets[key]
	if !ok || len(sheet) == 0 {
		return false
	}
	for _, sel := range sheet {
		if sel.PickID == "" || sel.Dirty {
			return false
		}
	}

	return true
}

// Hydrate seeds a sheet from confirmed picks at session start. Existing
// draft selections win over hydrated state.
func (s *SheetStore) Hydrate(userID string, week int, picks []Selection) {
	key := sheetKey{userID: userID, week: week}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.sheets[key]
	if !ok {
		sheet = make(map[string]Selection)
		s.sheets[key] = sheet
	}
	for _, sel := range picks {
		if _, exists := sheet[sel.GameID]; exists {
			continue
		}
		sel.Dirty = false
		sheet[sel.GameID] = sel
	}
}

// Clear drops every sheet a user owns, called on logout.
func (s *SheetStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.sheets {
		if key.userID == userID {
			delete(s.sheets, key)
		}
	}
}
