package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerReadRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/world", handler.GetWorld)
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/table", handler.GetLeagueTable)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/top-scorers", handler.ListTopScorers)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/top-assisters", handler.ListTopAssisters)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/best-defense", handler.ListBestDefense)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/head-to-head", handler.GetHeadToHead)
	mux.HandleFunc("GET /v1/players/{playerID}/season-stats", handler.GetPlayerSeasonStats)
	mux.HandleFunc("GET /v1/matches/{matchID}/events", handler.ListMatchEvents)
	mux.HandleFunc("GET /v1/events/stream", handler.StreamEvents)
}

func registerWriteRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/advance", handler.Advance)
	mux.HandleFunc("POST /v1/reset", handler.Reset)
}
