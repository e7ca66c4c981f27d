package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"encoding/json"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/app"
	"github.com/chicane-league/chicane/internal/metrics"
	"github.com/chicane-league/chicane/internal/models"
)

type ScoringHandler struct {
	service *app.Service
}

func NewScoringHandler(service *app.Service) *ScoringHandler {
	return &ScoringHandler{
		service: service,
	}
}

func parsePathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, errors.New("missing path value " + name)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// writeScoringError maps the error taxonomy onto status codes. Incomplete
// results get a 409 with resolved/total counts so admin pages can show
// result-entry progress.
func writeScoringError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	var notFound *models.NotFoundError
	var incomplete *models.IncompleteResultsError

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		http.Error(w, notFound.Error(), http.StatusNotFound)
	case errors.As(err, &incomplete):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":    "event not fully resolved",
			"resolved": incomplete.Resolved,
			"total":    incomplete.Total,
		})
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (h *ScoringHandler) HandleScoreEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			status,
		).Observe(duration)
	}()

	if !h.service.ValidateHeaders(r.Header) {
		status = "403"
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	eventID, err := parsePathID(r, "eventID")
	if err != nil {
		status = "400"
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}
	groupSeasonID, err := parsePathID(r, "groupSeasonID")
	if err != nil {
		status = "400"
		http.Error(w, "Invalid group season id", http.StatusBadRequest)
		return
	}

	user := r.Header.Get(h.service.Config.API.UserIDHeader)
	if user == "" {
		status = "401"
		http.Error(w, "Invalid user id specified", http.StatusUnauthorized)
		return
	}

	if err := h.service.ValidateAuthAndUser(r, strconv.FormatInt(groupSeasonID, 10), user); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		status = "401"
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	results, err := h.service.Engine.ScoreEvent(r.Context(), eventID, groupSeasonID)
	if err != nil {
		logger.Error.Printf("Scoring failed for event %d group %d: %v", eventID, groupSeasonID, err)
		metrics.ScoringRunsTotal.WithLabelValues("error").Inc()
		status = "409"
		writeScoringError(w, err)
		return
	}

	metrics.ScoringRunsTotal.WithLabelValues("ok").Inc()
	group := strconv.FormatInt(groupSeasonID, 10)
	for _, result := range results {
		metrics.EventPointsHistogram.WithLabelValues(group).Observe(float64(result.EventPoints))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
	}); err != nil {
		logger.Error.Printf("Failed to encode scoring response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *ScoringHandler) HandleRescoreEvent(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	eventID, err := parsePathID(r, "eventID")
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}
	groupSeasonID, err := parsePathID(r, "groupSeasonID")
	if err != nil {
		http.Error(w, "Invalid group season id", http.StatusBadRequest)
		return
	}

	user := r.Header.Get(h.service.Config.API.UserIDHeader)
	if user == "" {
		http.Error(w, "Invalid user id specified", http.StatusUnauthorized)
		return
	}

	if err := h.service.ValidateAuthAndUser(r, strconv.FormatInt(groupSeasonID, 10), user); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	results, err := h.service.Engine.RecalculateEventScoring(r.Context(), eventID, groupSeasonID)
	if err != nil {
		logger.Error.Printf("Rescoring failed for event %d group %d: %v", eventID, groupSeasonID, err)
		metrics.ScoringRunsTotal.WithLabelValues("error").Inc()
		writeScoringError(w, err)
		return
	}

	metrics.ScoringRunsTotal.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
	}); err != nil {
		logger.Error.Printf("Failed to encode rescoring response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
