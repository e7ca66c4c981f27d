package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"encoding/json"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/app"
	"github.com/chicane-league/chicane/internal/standings"
	"github.com/chicane-league/chicane/internal/stats"
)

type StandingsHandler struct {
	service *app.Service
}

func NewStandingsHandler(service *app.Service) *StandingsHandler {
	return &StandingsHandler{
		service: service,
	}
}

func (h *StandingsHandler) HandleWorkspaceStandings(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	groupSeasonID, err := parsePathID(r, "groupSeasonID")
	if err != nil {
		http.Error(w, "Invalid group season id", http.StatusBadRequest)
		return
	}

	rows, err := h.service.Aggregator.GetWorkspaceStandings(groupSeasonID)
	if err != nil {
		logger.Error.Printf("Failed to fetch standings for group %d: %v", groupSeasonID, err)
		writeScoringError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"standings": rows,
	}); err != nil {
		logger.Error.Printf("Failed to encode standings: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *StandingsHandler) HandleTopStandings(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	groupSeasonID, err := parsePathID(r, "groupSeasonID")
	if err != nil {
		http.Error(w, "Invalid group season id", http.StatusBadRequest)
		return
	}

	limit := h.service.Config.Leaderboard.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	rows, err := h.service.Aggregator.GetTopStandings(groupSeasonID, limit)
	if err != nil {
		logger.Error.Printf("Failed to fetch top standings for group %d: %v", groupSeasonID, err)
		writeScoringError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"standings": rows,
	}); err != nil {
		logger.Error.Printf("Failed to encode top standings: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *StandingsHandler) HandleGlobalStandings(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	filter := standings.GlobalFilter{
		Season: query.Get("season"),
		Search: query.Get("search"),
		Limit:  h.service.Config.Leaderboard.DefaultLimit,
	}

	var err error
	if raw := query.Get("limit"); raw != "" {
		filter.Limit, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}
	if raw := query.Get("offset"); raw != "" {
		filter.Offset, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
	}

	entries, total, err := h.service.Leaderboard.GetGlobalStandings(filter)
	if err != nil {
		logger.Error.Printf("Failed to fetch global standings: %v", err)
		writeScoringError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"standings": entries,
		"total":     total,
	}); err != nil {
		logger.Error.Printf("Failed to encode global standings: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *StandingsHandler) HandleCompareUsers(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	raw := r.URL.Query().Get("users")
	if raw == "" {
		http.Error(w, "Missing users parameter", http.StatusBadRequest)
		return
	}

	parts := strings.Split(raw, ",")
	userIDs := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			http.Error(w, "Invalid user id: "+part, http.StatusBadRequest)
			return
		}
		userIDs = append(userIDs, id)
	}

	comparison, err := h.service.Leaderboard.CompareUsers(userIDs)
	if err != nil {
		logger.Error.Printf("Failed to compare users %v: %v", userIDs, err)
		writeScoringError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(comparison); err != nil {
		logger.Error.Printf("Failed to encode comparison: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *StandingsHandler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	userID, err := parsePathID(r, "userID")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	groupSeasonID, err := strconv.ParseInt(r.URL.Query().Get("group"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid group parameter", http.StatusBadRequest)
		return
	}

	filter := stats.Filter{
		UserID:        userID,
		GroupSeasonID: groupSeasonID,
	}
	if raw := r.URL.Query().Get("event"); raw != "" {
		eventID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid event parameter", http.StatusBadRequest)
			return
		}
		filter.EventID = &eventID
	}

	performance, err := h.service.Stats.GetUserPerformanceStats(filter)
	if err != nil {
		logger.Error.Printf("Failed to fetch stats for user %d: %v", userID, err)
		http.Error(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}

	// No scored predictions is a normal state, not an error.
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"stats": performance,
	}); err != nil {
		logger.Error.Printf("Failed to encode stats: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *StandingsHandler) HandleUserEvolution(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	userID, err := parsePathID(r, "userID")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	groupSeasonID, err := strconv.ParseInt(r.URL.Query().Get("group"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid group parameter", http.StatusBadRequest)
		return
	}

	evolution, err := h.service.Stats.GetUserPointsEvolution(userID, groupSeasonID)
	if err != nil {
		logger.Error.Printf("Failed to fetch evolution for user %d: %v", userID, err)
		http.Error(w, "Failed to fetch evolution", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"evolution": evolution,
	}); err != nil {
		logger.Error.Printf("Failed to encode evolution: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
