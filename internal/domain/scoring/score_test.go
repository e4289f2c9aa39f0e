package scoring

import (
	"testing"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	"github.com/pickemhq/pickem-api/internal/domain/user"
)

func finalGame(id string, winner game.Side) game.Game {
	return game.Game{
		ID:     id,
		Week:   1,
		Status: game.StatusFinal,
		Result: &game.Result{Winner: winner},
	}
}

func TestScoreWeek(t *testing.T) {
	t.Run("one point per correct pick", func(t *testing.T) {
		games := []game.Game{
			finalGame("g1", game.SideHome),
			finalGame("g2", game.SideAway),
		}
		picks := []pick.Pick{
			{ID: "p1", UserID: "u1", GameID: "g1", Side: game.SideHome},
			{ID: "p2", UserID: "u1", GameID: "g2", Side: game.SideHome},
			{ID: "p3", UserID: "u2", GameID: "g2", Side: game.SideAway},
		}

		got := ScoreWeek(games, picks)
		if got["u1"] != 1 {
			t.Fatalf("unexpected points for u1: got=%d want=1", got["u1"])
		}
		if got["u2"] != 1 {
			t.Fatalf("unexpected points for u2: got=%d want=1", got["u2"])
		}
	})

	t.Run("unfinished games contribute nothing", func(t *testing.T) {
		games := []game.Game{
			{ID: "g1", Week: 1, Status: game.StatusInProgress},
			finalGame("g2", game.SideHome),
		}
		picks := []pick.Pick{
			{ID: "p1", UserID: "u1", GameID: "g1", Side: game.SideHome},
			{ID: "p2", UserID: "u1", GameID: "g2", Side: game.SideHome},
		}

		got := ScoreWeek(games, picks)
		if got["u1"] != 1 {
			t.Fatalf("unexpected points: got=%d want=1", got["u1"])
		}
	})

	t.Run("picks for unknown games are ignored", func(t *testing.T) {
		picks := []pick.Pick{
			{ID: "p1", UserID: "u1", GameID: "missing", Side: game.SideHome},
		}

		got := ScoreWeek(nil, picks)
		if len(got) != 0 {
			t.Fatalf("expected empty totals, got %v", got)
		}
	})

	t.Run("final game without result scores nothing", func(t *testing.T) {
		games := []game.Game{{ID: "g1", Week: 1, Status: game.StatusFinal}}
		picks := []pick.Pick{
			{ID: "p1", UserID: "u1", GameID: "g1", Side: game.SideHome},
		}

		got := ScoreWeek(games, picks)
		if len(got) != 0 {
			t.Fatalf("expected empty totals, got %v", got)
		}
	})
}

func TestAggregate(t *testing.T) {
	users := []user.User{
		{ID: "u1", DisplayName: "Ann"},
		{ID: "u2", DisplayName: "Ben"},
		{ID: "u3", DisplayName: "Cal"},
	}

	t.Run("sums weeks and ranks densely", func(t *testing.T) {
		weeks := []WeekPoints{
			{Week: 1, Points: map[string]int{"u1": 3, "u2": 2}},
			{Week: 2, Points: map[string]int{"u1": 1, "u3": 4}},
		}

		rows := Aggregate(weeks, users)
		if len(rows) != 3 {
			t.Fatalf("unexpected row count: got=%d want=3", len(rows))
		}
		if rows[0].UserID != "u1" || rows[0].Points != 4 || rows[0].Rank != 1 {
			t.Fatalf("unexpected leader: %+v", rows[0])
		}
		if rows[1].UserID != "u3" || rows[1].Points != 4 || rows[1].Rank != 1 {
			t.Fatalf("expected u3 to share first: %+v", rows[1])
		}
		if rows[2].UserID != "u2" || rows[2].Rank != 3 {
			t.Fatalf("unexpected third row: %+v", rows[2])
		}
	})

	t.Run("equal totals keep input order", func(t *testing.T) {
		weeks := []WeekPoints{
			{Week: 1, Points: map[string]int{"u1": 2, "u2": 2, "u3": 2}},
		}

		rows := Aggregate(weeks, users)
		for i, want := range []string{"u1", "u2", "u3"} {
			if rows[i].UserID != want {
				t.Fatalf("row %d: got=%s want=%s", i, rows[i].UserID, want)
			}
			if rows[i].Rank != 1 {
				t.Fatalf("row %d rank: got=%d want=1", i, rows[i].Rank)
			}
		}
	})

	t.Run("users without points appear with zero", func(t *testing.T) {
		rows := Aggregate(nil, users)
		if len(rows) != 3 {
			t.Fatalf("unexpected row count: got=%d want=3", len(rows))
		}
		for _, r := range rows {
			if r.Points != 0 || r.Rank != 1 {
				t.Fatalf("unexpected row: %+v", r)
			}
		}
	})

	t.Run("recomputing is idempotent", func(t *testing.T) {
		weeks := []WeekPoints{
			{Week: 1, Points: map[string]int{"u1": 3, "u2": 1}},
		}

		first := Aggregate(weeks, users)
		second := Aggregate(weeks, users)
		if len(first) != len(second) {
			t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}
