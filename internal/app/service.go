package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/chicane-league/chicane/internal/scoring"
	"github.com/chicane-league/chicane/internal/standings"
	"github.com/chicane-league/chicane/internal/stats"
	"github.com/chicane-league/chicane/internal/store"
)

// Service wires the store, auth and the scoring/standings/stats components
// behind one handle for the HTTP handlers and the bot.
type Service struct {
	Config      *Config
	Store       store.LeagueStore
	Auth        *Auth
	Engine      *scoring.Engine
	Aggregator  *standings.Aggregator
	Leaderboard *standings.Leaderboard
	Stats       *stats.Service
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	leagueStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	aggregator := standings.NewAggregator(leagueStore)
	engine := scoring.NewEngine(leagueStore, aggregator, nil)
	leaderboard := standings.NewLeaderboard(leagueStore, config.Leaderboard.MaxLimit)
	statsService := stats.NewService(leagueStore, config.Trend)

	return &Service{
		Config:      config,
		Store:       leagueStore,
		Auth:        auth,
		Engine:      engine,
		Aggregator:  aggregator,
		Leaderboard: leaderboard,
		Stats:       statsService,
	}, nil
}

func (s *Service) ValidateAuthAndUser(r *http.Request, groupSeasonID, userID string) error {
	if !s.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return s.Auth.ValidateToken(r.Context(), groupSeasonID, userID, token)
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
