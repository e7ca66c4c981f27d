// Package stats derives per-user performance breakdowns and a recent-trend
// signal from scored predictions. Everything here is computed on demand
// from stored rows; nothing is maintained incrementally.
package stats

import (
	"sort"

	"github.com/chicane-league/chicane/internal/store"
)

// Trend labels for the recent-form signal.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// TrendConfig tunes the trend window and thresholds. Zero values fall back
// to the defaults (last 5 events, +10%/-10%).
type TrendConfig struct {
	Window        int     `toml:"window"`
	UpThreshold   float64 `toml:"up_threshold"`
	DownThreshold float64 `toml:"down_threshold"`
}

func (c TrendConfig) withDefaults() TrendConfig {
	if c.Window <= 0 {
		c.Window = 5
	}
	if c.UpThreshold <= 0 {
		c.UpThreshold = 1.10
	}
	if c.DownThreshold <= 0 {
		c.DownThreshold = 0.90
	}
	return c
}

type Filter struct {
	UserID        int64
	GroupSeasonID int64
	EventID       *int64
}

type EventBreakdown struct {
	EventID     int64  `json:"event_id"`
	Round       int    `json:"round"`
	EventName   string `json:"event_name"`
	Points      int    `json:"points"`
	Correct     int    `json:"correct"`
	Predictions int    `json:"predictions"`
}

type CategoryBreakdown struct {
	Category    string  `json:"category"`
	Points      int     `json:"points"`
	Correct     int     `json:"correct"`
	Predictions int     `json:"predictions"`
	Accuracy    float64 `json:"accuracy"`
}

type PerformanceStats struct {
	UserID             int64               `json:"user_id"`
	TotalPoints        int                 `json:"total_points"`
	TotalPredictions   int                 `json:"total_predictions"`
	CorrectPredictions int                 `json:"correct_predictions"`
	AccuracyRate       float64             `json:"accuracy_rate"`
	ByEvent            []EventBreakdown    `json:"by_event"`
	ByCategory         []CategoryBreakdown `json:"by_category"`
	Trend              string              `json:"trend"`
}

type EvolutionPoint struct {
	Round            int `json:"round"`
	Points           int `json:"points"`
	CumulativePoints int `json:"cumulative_points"`
}

type Service struct {
	store store.LeagueStore
	trend TrendConfig
}

func NewService(s store.LeagueStore, trend TrendConfig) *Service {
	return &Service{
		store: s,
		trend: trend.withDefaults(),
	}
}

// GetUserPerformanceStats computes a user's breakdown within one group.
// Returns nil when the user has no scored predictions in scope: "no data"
// is a normal state, distinct from a scored total of zero.
func (s *Service) GetUserPerformanceStats(filter Filter) (*PerformanceStats, error) {
	rows, err := s.store.ListUserScoredRows(filter.GroupSeasonID, filter.UserID, filter.EventID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	stats := &PerformanceStats{UserID: filter.UserID}

	byEvent := make(map[int64]*EventBreakdown)
	eventOrder := make([]int64, 0)
	byCategory := make(map[string]*CategoryBreakdown)
	categoryOrder := make([]string, 0)

	for _, row := range rows {
		correct := row.Answer == row.OfficialAnswer

		stats.TotalPoints += row.Points
		stats.TotalPredictions++
		if correct {
			stats.CorrectPredictions++
		}

		ev, ok := byEvent[row.EventID]
		if !ok {
			ev = &EventBreakdown{
				EventID:   row.EventID,
				Round:     row.Round,
				EventName: row.EventName,
			}
			byEvent[row.EventID] = ev
			eventOrder = append(eventOrder, row.EventID)
		}
		ev.Points += row.Points
		ev.Predictions++
		if correct {
			ev.Correct++
		}

		cat, ok := byCategory[row.Category]
		if !ok {
			cat = &CategoryBreakdown{Category: row.Category}
			byCategory[row.Category] = cat
			categoryOrder = append(categoryOrder, row.Category)
		}
		cat.Points += row.Points
		cat.Predictions++
		if correct {
			cat.Correct++
		}
	}

	stats.AccuracyRate = float64(stats.CorrectPredictions) / float64(stats.TotalPredictions) * 100

	stats.ByEvent = make([]EventBreakdown, 0, len(eventOrder))
	for _, id := range eventOrder {
		stats.ByEvent = append(stats.ByEvent, *byEvent[id])
	}
	sort.Slice(stats.ByEvent, func(i, j int) bool {
		return stats.ByEvent[i].Round < stats.ByEvent[j].Round
	})

	stats.ByCategory = make([]CategoryBreakdown, 0, len(categoryOrder))
	for _, name := range categoryOrder {
		cat := byCategory[name]
		cat.Accuracy = float64(cat.Correct) / float64(cat.Predictions) * 100
		stats.ByCategory = append(stats.ByCategory, *cat)
	}

	eventPoints := make([]int, 0, len(stats.ByEvent))
	for _, ev := range stats.ByEvent {
		eventPoints = append(eventPoints, ev.Points)
	}
	stats.Trend = ClassifyTrend(eventPoints, s.trend)

	return stats, nil
}

// GetUserPointsEvolution returns per-round points with a running cumulative
// sum, strictly ascending by round.
func (s *Service) GetUserPointsEvolution(userID, groupSeasonID int64) ([]EvolutionPoint, error) {
	rows, err := s.store.ListUserScoredRows(groupSeasonID, userID, nil)
	if err != nil {
		return nil, err
	}

	byRound := make(map[int]int)
	rounds := make([]int, 0)
	for _, row := range rows {
		if _, ok := byRound[row.Round]; !ok {
			rounds = append(rounds, row.Round)
		}
		byRound[row.Round] += row.Points
	}
	sort.Ints(rounds)

	evolution := make([]EvolutionPoint, 0, len(rounds))
	cumulative := 0
	for _, round := range rounds {
		cumulative += byRound[round]
		evolution = append(evolution, EvolutionPoint{
			Round:            round,
			Points:           byRound[round],
			CumulativePoints: cumulative,
		})
	}

	return evolution, nil
}

// ClassifyTrend compares the average of the second half of the recent
// per-event totals against the first half: up above UpThreshold times the
// first-half average, down below DownThreshold times it, stable otherwise.
// For odd window lengths the extra element belongs to the second half.
// Fewer than two data points always classify as stable.
func ClassifyTrend(eventPoints []int, cfg TrendConfig) string {
	cfg = cfg.withDefaults()

	points := eventPoints
	if len(points) > cfg.Window {
		points = points[len(points)-cfg.Window:]
	}
	if len(points) < 2 {
		return TrendStable
	}

	half := len(points) / 2
	firstAvg := average(points[:half])
	secondAvg := average(points[half:])

	switch {
	case secondAvg > firstAvg*cfg.UpThreshold:
		return TrendUp
	case secondAvg < firstAvg*cfg.DownThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

func average(points []int) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p
	}
	return float64(sum) / float64(len(points))
}
