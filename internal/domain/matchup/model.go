package matchup

import (
	"fmt"
	"time"
)

// Tournament is a single-elimination playoff seeded from a league's
// standings. A league hosts at most one unfinished tournament at a time.
type Tournament struct {
	ID           string
	LeagueID     string
	StartingWeek int
	CreatedAt    time.Time
}

func (t Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("tournament league id is required")
	}
	if t.StartingWeek <= 0 {
		return fmt.Errorf("tournament starting week must be positive")
	}

	return nil
}

// Matchup pairs two members in one bracket round. WinnerID stays empty
// until the round's week is scored; once set it never changes. A bye is
// represented by an empty AwayUserID and an immediate winner. Slot is
// the matchup's position within its round; winners of slots 2k and
// 2k+1 meet in slot k of the next round.
type Matchup struct {
	ID           string
	TournamentID string
	Round        int
	Slot         int
	HomeUserID   string
	AwayUserID   string
	WinnerID     string
	Week         int
}

func (m Matchup) Decided() bool {
	return m.WinnerID != ""
}

func (m Matchup) Bye() bool {
	return m.AwayUserID == ""
}

// Active reports whether a bracket still has undecided matchups. An
// empty bracket counts as finished.
func Active(matchups []Matchup) bool {
	for _, m := range matchups {
		if !m.Decided() {
			return true
		}
	}

	return false
}
