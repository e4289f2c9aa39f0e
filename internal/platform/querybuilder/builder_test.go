package querybuilder

import "testing"

func TestSelect_RendersPostgresPlaceholders(t *testing.T) {
	sql, args, err := Select("picks", "id", "user_id").
		Where("user_id = ?", "user-alice").
		Where("game_id = ?", "game-1").
		OrderBy("created_at ASC", "id ASC").
		Limit(10).
		SQL()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "SELECT id, user_id FROM picks WHERE user_id = $1 AND game_id = $2 ORDER BY created_at ASC, id ASC LIMIT 10"
	if sql != want {
		t.Fatalf("unexpected sql:\n got %q\nwant %q", sql, want)
	}
	if len(args) != 2 || args[0] != "user-alice" || args[1] != "game-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestSelect_DefaultsToStar(t *testing.T) {
	sql, _, err := Select("leagues").WhereNull("deleted_at").SQL()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if sql != "SELECT * FROM leagues WHERE deleted_at IS NULL" {
		t.Fatalf("unexpected sql: %q", sql)
	}
}

func TestSelect_PlaceholderMismatch(t *testing.T) {
	if _, _, err := Select("games").Where("week = ?").SQL(); err == nil {
		t.Fatalf("expected error for missing arg")
	}
}

func TestSelect_MissingTable(t *testing.T) {
	if _, _, err := Select("").SQL(); err == nil {
		t.Fatalf("expected error for empty table")
	}
}
