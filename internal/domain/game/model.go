package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled  = "SCHEDULED"
	StatusInProgress = "IN_PROGRESS"
	StatusFinal      = "FINAL"
)

// Side identifies which half of a matchup a pick refers to. A pick is
// relative to the game, not to a team identifier.
type Side string

const (
	SideHome Side = "HOME"
	SideAway Side = "AWAY"
)

func ParseSide(value string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(SideHome):
		return SideHome, nil
	case string(SideAway):
		return SideAway, nil
	default:
		return "", fmt.Errorf("unknown side %q", value)
	}
}

// Team is one participant in a game.
type Team struct {
	Name         string
	Abbreviation string
	LogoURL      string
}

// Result is populated only once a game is final.
type Result struct {
	Winner    Side
	HomeScore int
	AwayScore int
}

// Game is one scheduled matchup in a given week. PointSpread is display
// information only and never affects scoring; negative means the home side
// is favored.
type Game struct {
	ID          string
	Week        int
	HomeTeam    Team
	AwayTeam    Team
	PointSpread float64
	LockAt      time.Time
	Status      string
	Result      *Result
}

func (g Game) Locked(now time.Time) bool {
	return !g.LockAt.IsZero() && !now.Before(g.LockAt)
}

func (g Game) Final() bool {
	return NormalizeStatus(g.Status) == StatusFinal && g.Result != nil
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Week <= 0 {
		return fmt.Errorf("game week must be greater than zero")
	}
	if g.HomeTeam.Name == "" || g.AwayTeam.Name == "" {
		return fmt.Errorf("game requires both team names")
	}
	if g.LockAt.IsZero() {
		return fmt.Errorf("game lock time is required")
	}
	if g.Result != nil && g.Result.Winner != SideHome && g.Result.Winner != SideAway {
		return fmt.Errorf("game result winner must be HOME or AWAY")
	}
	return nil
}

// Abbreviate derives a short code from a team name when a stored game
// does not supply one.
func Abbreviate(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "???"
	}
	upper := strings.ToUpper(trimmed)
	if len(upper) <= 3 {
		return upper
	}
	return upper[:3]
}
