package standings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chicane-league/chicane/internal/models"
	"github.com/chicane-league/chicane/internal/store"
)

// GlobalFilter selects and pages the cross-group leaderboard. The upper
// bound on Limit comes from the leaderboard config, not the struct tag.
type GlobalFilter struct {
	Season string `validate:"omitempty"`
	Limit  int    `validate:"min=1"`
	Offset int    `validate:"min=0"`
	Search string
}

type CompareFilter struct {
	UserIDs []int64 `validate:"required,min=2,max=4"`
}

// UserEventPoints is one user's score line within one event comparison.
type UserEventPoints struct {
	UserID      int64 `json:"user_id"`
	Points      int   `json:"points"`
	Predictions int   `json:"predictions"`
}

type EventComparison struct {
	EventID   int64             `json:"event_id"`
	Round     int               `json:"round"`
	EventName string            `json:"event_name"`
	Users     []UserEventPoints `json:"users"`
}

type Comparison struct {
	UserIDs []int64           `json:"user_ids"`
	Events  []EventComparison `json:"events"`
}

const defaultMaxLimit = 100

// Leaderboard merges a user's standings across every active group of a
// season into one globally ranked list. Computed per request, never stored.
type Leaderboard struct {
	store    store.LeagueStore
	maxLimit int
}

func NewLeaderboard(s store.LeagueStore, maxLimit int) *Leaderboard {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	return &Leaderboard{store: s, maxLimit: maxLimit}
}

// collapsed is the per-user accumulator before global ranking. bestCreatedAt
// is the creation time of the standing that produced the best score; it
// breaks ties on equal bestPoints (earliest first, then user id) so the
// global order never depends on store iteration.
type collapsed struct {
	entry         models.GlobalStanding
	bestCreatedAt int64
}

// GetGlobalStandings collapses each user's standings to their best group,
// ranks by best points, and pages the deduplicated per-user list. The
// reported total counts distinct users, not standing rows.
func (l *Leaderboard) GetGlobalStandings(filter GlobalFilter) ([]models.GlobalStanding, int, error) {
	if err := l.validateFilter(&filter); err != nil {
		return nil, 0, err
	}

	season := filter.Season
	if season == "" {
		active, err := l.store.ActiveSeason()
		if err != nil {
			return nil, 0, err
		}
		season = active
	}

	rows, err := l.store.ListSeasonStandingRows(season, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, 0, err
	}

	byUser := make(map[int64]*collapsed)
	order := make([]int64, 0, len(rows))
	for _, row := range rows {
		c, ok := byUser[row.UserID]
		if !ok {
			byUser[row.UserID] = &collapsed{
				entry: models.GlobalStanding{
					UserID:        row.UserID,
					UserName:      row.UserName,
					UserEmail:     row.UserEmail,
					BestPoints:    row.TotalPoints,
					BestGroupID:   row.GroupSeasonID,
					BestGroupName: row.GroupName,
					TotalGroups:   1,
				},
				bestCreatedAt: row.CreatedAt,
			}
			order = append(order, row.UserID)
			continue
		}

		c.entry.TotalGroups++
		if row.TotalPoints > c.entry.BestPoints ||
			(row.TotalPoints == c.entry.BestPoints && row.CreatedAt < c.bestCreatedAt) {
			c.entry.BestPoints = row.TotalPoints
			c.entry.BestGroupID = row.GroupSeasonID
			c.entry.BestGroupName = row.GroupName
			c.bestCreatedAt = row.CreatedAt
		}
	}

	entries := make([]*collapsed, 0, len(order))
	for _, userID := range order {
		entries = append(entries, byUser[userID])
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.entry.BestPoints != b.entry.BestPoints {
			return a.entry.BestPoints > b.entry.BestPoints
		}
		if a.bestCreatedAt != b.bestCreatedAt {
			return a.bestCreatedAt < b.bestCreatedAt
		}
		return a.entry.UserID < b.entry.UserID
	})

	total := len(entries)

	result := make([]models.GlobalStanding, 0, total)
	for i, c := range entries {
		c.entry.GlobalPosition = i + 1
		result = append(result, c.entry)
	}

	if filter.Offset >= len(result) {
		return []models.GlobalStanding{}, total, nil
	}
	result = result[filter.Offset:]
	if len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, total, nil
}

// CompareUsers produces a per-event score matrix for 2 to 4 users, covering
// every fully resolved event at least one of them predicted, ordered by
// round ascending.
func (l *Leaderboard) CompareUsers(userIDs []int64) (*Comparison, error) {
	cf := CompareFilter{UserIDs: userIDs}
	validate := validator.New()
	if err := validate.Struct(&cf); err != nil {
		return nil, models.NewValidationError("user_ids", "comparison requires between 2 and 4 users")
	}

	rows, err := l.store.ListUserEventPoints(userIDs)
	if err != nil {
		return nil, err
	}

	type eventKey struct {
		id    int64
		round int
		name  string
	}
	perEvent := make(map[int64]map[int64]store.UserEventPointsRow)
	events := make([]eventKey, 0)
	for _, row := range rows {
		if _, ok := perEvent[row.EventID]; !ok {
			perEvent[row.EventID] = make(map[int64]store.UserEventPointsRow)
			events = append(events, eventKey{id: row.EventID, round: row.Round, name: row.EventName})
		}
		perEvent[row.EventID][row.UserID] = row
	}

	sort.Slice(events, func(i, j int) bool { return events[i].round < events[j].round })

	comparison := &Comparison{
		UserIDs: userIDs,
		Events:  make([]EventComparison, 0, len(events)),
	}
	for _, ev := range events {
		ec := EventComparison{
			EventID:   ev.id,
			Round:     ev.round,
			EventName: ev.name,
			Users:     make([]UserEventPoints, 0, len(userIDs)),
		}
		for _, userID := range userIDs {
			line := UserEventPoints{UserID: userID}
			if row, ok := perEvent[ev.id][userID]; ok {
				line.Points = row.Points
				line.Predictions = row.PredictionCount
			}
			ec.Users = append(ec.Users, line)
		}
		comparison.Events = append(comparison.Events, ec)
	}

	return comparison, nil
}

func (l *Leaderboard) validateFilter(filter *GlobalFilter) error {
	validate := validator.New()
	if err := validate.Struct(filter); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return models.NewValidationError(strings.ToLower(errs[0].Field()), "out of allowed bounds")
		}
		return models.NewValidationError("filter", err.Error())
	}
	if filter.Limit > l.maxLimit {
		return models.NewValidationError("limit", fmt.Sprintf("must be at most %d", l.maxLimit))
	}
	return nil
}
