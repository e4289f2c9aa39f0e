package scoring

import (
	"sort"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	"github.com/pickemhq/pickem-api/internal/domain/user"
)

// Row is one leaderboard entry. Users with equal totals share a rank.
type Row struct {
	UserID string
	Name   string
	Points int
	Rank   int
}

// WeekPoints holds per-user totals for one scored week.
type WeekPoints struct {
	Week   int
	Points map[string]int
}

// ScoreWeek awards one point per pick that matches a final game's
// winner. Games without a result contribute nothing, as do picks whose
// game is missing from the slate. The spread never affects scoring.
func ScoreWeek(games []game.Game, picks []pick.Pick) map[string]int {
	winners := make(map[string]game.Side, len(games))
	for _, g := range games {
		if g.Final() && g.Result != nil {
			winners[g.ID] = g.Result.Winner
		}
	}

	points := make(map[string]int)
	for _, p := range picks {
		winner, ok := winners[p.GameID]
		if !ok {
			continue
		}
		if p.Side == winner {
			points[p.UserID]++
		}
	}

	return points
}

// Aggregate folds weekly totals into a ranked leaderboard. Users absent
// from every week still appear with zero points. The sort is stable on
// the users slice, so callers control how equal totals are ordered.
func Aggregate(weeks []WeekPoints, users []user.User) []Row {
	totals := make(map[string]int, len(users))
	for _, w := range weeks {
		for userID, points := range w.Points {
			totals[userID] += points
		}
	}

	rows := make([]Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, Row{
			UserID: u.ID,
			Name:   u.DisplayName,
			Points: totals[u.ID],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})

	rank := 0
	prevPoints := -1
	for i := range rows {
		if i == 0 || rows[i].Points != prevPoints {
			rank = i + 1
		}
		rows[i].Rank = rank
		prevPoints = rows[i].Points
	}

	return rows
}
