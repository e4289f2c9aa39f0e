package memory

import (
	"time"

	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/user"
)

const (
	LeagueIDFridayNight = "lg_friday-night-picks"
	UserIDCommissioner  = "user-dana"
	UserIDAlice         = "user-alice"
	UserIDBob           = "user-bob"
	UserIDCarol         = "user-carol"
)

var seedClock = time.Date(2026, 9, 10, 17, 0, 0, 0, time.UTC)

func SeedUsers() []user.User {
	return []user.User{
		{ID: UserIDCommissioner, DisplayName: "Dana Whitfield", Email: "dana@example.com"},
		{ID: UserIDAlice, DisplayName: "Alice Moreno", Email: "alice@example.com"},
		{ID: UserIDBob, DisplayName: "Bob Tran", Email: "bob@example.com"},
		{ID: UserIDCarol, DisplayName: "Carol Iyer", Email: "carol@example.com"},
	}
}

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:               LeagueIDFridayNight,
			Name:             "Friday Night Picks",
			CommissionerID:   UserIDCommissioner,
			RegistrationOpen: true,
			CreatedAt:        seedClock,
			UpdatedAt:        seedClock,
		},
	}
}

// SeedGames covers three weeks: week 1 fully final, week 2 in play,
// week 3 still open for picks.
func SeedGames() []game.Game {
	week1Lock := seedClock.Add(-14 * 24 * time.Hour)
	week2Lock := seedClock.Add(-7 * 24 * time.Hour)
	week3Lock := seedClock.Add(3 * 24 * time.Hour)

	return []game.Game{
		{
			ID:          "game_w1_phi_dal",
			Week:        1,
			HomeTeam:    game.Team{Name: "Philadelphia Eagles", Abbreviation: "PHI"},
			AwayTeam:    game.Team{Name: "Dallas Cowboys", Abbreviation: "DAL"},
			PointSpread: -3.5,
			LockAt:      week1Lock,
			Status:      game.StatusFinal,
			Result:      &game.Result{Winner: game.SideHome, HomeScore: 27, AwayScore: 20},
		},
		{
			ID:          "game_w1_kc_buf",
			Week:        1,
			HomeTeam:    game.Team{Name: "Kansas City Chiefs", Abbreviation: "KC"},
			AwayTeam:    game.Team{Name: "Buffalo Bills", Abbreviation: "BUF"},
			PointSpread: 1.0,
			LockAt:      week1Lock,
			Status:      game.StatusFinal,
			Result:      &game.Result{Winner: game.SideAway, HomeScore: 17, AwayScore: 24},
		},
		{
			ID:          "game_w2_sf_sea",
			Week:        2,
			HomeTeam:    game.Team{Name: "San Francisco 49ers", Abbreviation: "SF"},
			AwayTeam:    game.Team{Name: "Seattle Seahawks", Abbreviation: "SEA"},
			PointSpread: -6.0,
			LockAt:      week2Lock,
			Status:      game.StatusInProgress,
		},
		{
			ID:          "game_w3_gb_chi",
			Week:        3,
			HomeTeam:    game.Team{Name: "Green Bay Packers", Abbreviation: "GB"},
			AwayTeam:    game.Team{Name: "Chicago Bears", Abbreviation: "CHI"},
			PointSpread: -4.5,
			LockAt:      week3Lock,
			Status:      game.StatusScheduled,
		},
		{
			ID:          "game_w3_det_min",
			Week:        3,
			HomeTeam:    game.Team{Name: "Detroit Lions", Abbreviation: "DET"},
			AwayTeam:    game.Team{Name: "Minnesota Vikings", Abbreviation: "MIN"},
			PointSpread: 2.5,
			LockAt:      week3Lock,
			Status:      game.StatusScheduled,
		},
	}
}
