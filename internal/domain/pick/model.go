package pick

import (
	"fmt"
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

// Pick is a user's chosen side for one game. ID is empty on a draft pick
// and assigned by the store on confirmation.
type Pick struct {
	ID        string
	UserID    string
	GameID    string
	Side      game.Side
	CreatedAt time.Time
}

func (p Pick) Confirmed() bool {
	return p.ID != ""
}

func (p Pick) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("pick user id is required")
	}
	if p.GameID == "" {
		return fmt.Errorf("pick game id is required")
	}
	if p.Side != game.SideHome && p.Side != game.SideAway {
		return fmt.Errorf("pick side must be HOME or AWAY")
	}
	return nil
}

// RefKind distinguishes how an update addresses an existing pick.
type RefKind string

const (
	RefByPickID RefKind = "pick_id"
	RefByGameID RefKind = "game_id"
)

// Ref is the canonical form of the pick-id-or-game-id union accepted on
// updates. It is resolved to a pick identifier before dispatch.
type Ref struct {
	Kind RefKind
	ID   string
}

func ByPickID(pickID string) Ref {
	return Ref{Kind: RefByPickID, ID: pickID}
}

func ByGameID(gameID string) Ref {
	return Ref{Kind: RefByGameID, ID: gameID}
}

func (r Ref) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("pick reference id is required")
	}
	switch r.Kind {
	case RefByPickID, RefByGameID:
		return nil
	default:
		return fmt.Errorf("unknown pick reference kind %q", r.Kind)
	}
}

// Update pairs an addressed pick with its new side.
type Update struct {
	Ref  Ref
	Side game.Side
}
