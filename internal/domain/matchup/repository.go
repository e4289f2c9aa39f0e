package matchup

import "context"

// Repository persists tournaments and their brackets.
type Repository interface {
	CreateTournament(ctx context.Context, t Tournament, matchups []Matchup) error
	GetTournamentByID(ctx context.Context, tournamentID string) (Tournament, bool, error)
	GetLatestTournamentByLeague(ctx context.Context, leagueID string) (Tournament, bool, error)
	ListMatchupsByTournament(ctx context.Context, tournamentID string) ([]Matchup, error)
	CreateMatchups(ctx context.Context, matchups []Matchup) error
	GetMatchupByID(ctx context.Context, matchupID string) (Matchup, bool, error)
	SetWinner(ctx context.Context, matchupID, winnerID string) error
	DeleteTournament(ctx context.Context, tournamentID string) error
	DeleteByLeague(ctx context.Context, leagueID string) error
}
