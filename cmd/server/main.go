package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/app"
	"github.com/chicane-league/chicane/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	scoringHandler := handlers.NewScoringHandler(service)
	standingsHandler := handlers.NewStandingsHandler(service)

	http.HandleFunc("POST /api/v1/events/{eventID}/groups/{groupSeasonID}/score", scoringHandler.HandleScoreEvent)
	http.HandleFunc("POST /api/v1/events/{eventID}/groups/{groupSeasonID}/rescore", scoringHandler.HandleRescoreEvent)

	http.HandleFunc("GET /api/v1/groups/{groupSeasonID}/standings", standingsHandler.HandleWorkspaceStandings)
	http.HandleFunc("GET /api/v1/groups/{groupSeasonID}/standings/top", standingsHandler.HandleTopStandings)
	http.HandleFunc("GET /api/v1/standings/global", standingsHandler.HandleGlobalStandings)
	http.HandleFunc("GET /api/v1/standings/compare", standingsHandler.HandleCompareUsers)
	http.HandleFunc("GET /api/v1/users/{userID}/stats", standingsHandler.HandleUserStats)
	http.HandleFunc("GET /api/v1/users/{userID}/evolution", standingsHandler.HandleUserEvolution)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting chicane server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Chicane server failed: %v", err)
	}
}
