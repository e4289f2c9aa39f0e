package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListWeekGames)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("GET /v1/weeks/current", handler.GetCurrentWeek)
	mux.HandleFunc("GET /v1/weeks/lock-time", handler.GetLockTime)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/scores", handler.GetWeekScores)
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeagueLeaderboard)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/members", handler.ListMembers)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/tournaments/latest", handler.GetTournament)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPickRoutes(mux, handler, verifier)
	registerAuthorizedLeagueRoutes(mux, handler, verifier)
	registerAuthorizedTournamentRoutes(mux, handler, verifier)
}

func registerAuthorizedPickRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/picks", RequireAuth(verifier, http.HandlerFunc(handler.RecordPick)))
	mux.Handle("POST /v1/picks/confirm", RequireAuth(verifier, http.HandlerFunc(handler.ConfirmPicks)))
	mux.Handle("PATCH /v1/picks", RequireAuth(verifier, http.HandlerFunc(handler.UpdatePicks)))
	mux.Handle("DELETE /v1/picks/{pickID}", RequireAuth(verifier, http.HandlerFunc(handler.DeletePick)))
	mux.Handle("GET /v1/picks/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPicks)))
	mux.Handle("GET /v1/picks/confirmation", RequireAuth(verifier, http.HandlerFunc(handler.GetConfirmation)))
	mux.Handle("POST /v1/picks/sheet/hydrate", RequireAuth(verifier, http.HandlerFunc(handler.HydrateSheet)))
	mux.Handle("DELETE /v1/session", RequireAuth(verifier, http.HandlerFunc(handler.EndSession)))
}

func registerAuthorizedLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("DELETE /v1/leagues/{leagueID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteLeague)))
	mux.Handle("PATCH /v1/leagues/{leagueID}/registration", RequireAuth(verifier, http.HandlerFunc(handler.SetRegistration)))
	mux.Handle("POST /v1/leagues/{leagueID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("DELETE /v1/leagues/{leagueID}/membership", RequireAuth(verifier, http.HandlerFunc(handler.LeaveLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/requests", RequireAuth(verifier, http.HandlerFunc(handler.ListPendingRequests)))
	mux.Handle("POST /v1/leagues/{leagueID}/requests/{requestID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptRequest)))
	mux.Handle("POST /v1/leagues/{leagueID}/requests/{requestID}/reject", RequireAuth(verifier, http.HandlerFunc(handler.RejectRequest)))
	mux.Handle("GET /v1/leagues/{leagueID}/standing", RequireAuth(verifier, http.HandlerFunc(handler.GetMyStanding)))
}

func registerAuthorizedTournamentRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/tournaments", RequireAuth(verifier, http.HandlerFunc(handler.CreateTournament)))
	mux.Handle("DELETE /v1/leagues/{leagueID}/tournaments/latest", RequireAuth(verifier, http.HandlerFunc(handler.DeleteTournament)))
	mux.Handle("POST /v1/matchups/{matchupID}/winner", RequireAuth(verifier, http.HandlerFunc(handler.SetMatchupWinner)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/results-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResultsSyncJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-leaderboards", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeJob)))
	mux.Handle("POST /v1/internal/jobs/advance-rounds", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAdvanceRoundsJob)))
}
