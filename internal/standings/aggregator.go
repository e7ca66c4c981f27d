// Package standings maintains per-group running totals and dense ranks,
// and computes the cross-group leaderboard.
package standings

import (
	"fmt"
	"sync"
	"time"

	"github.com/chicane-league/chicane/internal/models"
	"github.com/chicane-league/chicane/internal/store"
)

// Aggregator recomputes standings from point awards. A standing is a cache:
// totals are always re-derived in full from the award rows, never patched.
type Aggregator struct {
	store store.LeagueStore

	mu         sync.Mutex
	groupLocks map[int64]*sync.Mutex
}

func NewAggregator(s store.LeagueStore) *Aggregator {
	return &Aggregator{
		store:      s,
		groupLocks: make(map[int64]*sync.Mutex),
	}
}

// lockGroup serializes recomputation per group-season. The rank rewrite is
// a read-all/write-all over one group's rows and must not race with itself;
// different groups stay independent.
func (a *Aggregator) lockGroup(groupSeasonID int64) func() {
	a.mu.Lock()
	lock, ok := a.groupLocks[groupSeasonID]
	if !ok {
		lock = &sync.Mutex{}
		a.groupLocks[groupSeasonID] = lock
	}
	a.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// RecomputeStanding re-derives one user's total points and distinct scored
// event count from the award rows, upserts the standing, then recomputes
// ranks for the whole group.
func (a *Aggregator) RecomputeStanding(groupSeasonID, userID int64) (*models.Standing, error) {
	unlock := a.lockGroup(groupSeasonID)
	defer unlock()

	totals, err := a.store.UserTotals(groupSeasonID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute totals: %w", err)
	}

	now := time.Now().Unix()
	standing := &models.Standing{
		GroupSeasonID: groupSeasonID,
		UserID:        userID,
		TotalPoints:   totals.TotalPoints,
		EventsScored:  totals.EventsScored,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	existing, err := a.store.GetStanding(groupSeasonID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		standing.CreatedAt = existing.CreatedAt
		standing.Position = existing.Position
	}

	if err := a.store.UpsertStanding(standing); err != nil {
		return nil, err
	}

	if err := a.recomputeRanksLocked(groupSeasonID); err != nil {
		return nil, err
	}

	return standing, nil
}

// RecomputeRanks rewrites every position in the group: totalPoints desc,
// eventsScored desc, standing creation time asc. Full O(n) rewrite; group
// sizes are small.
func (a *Aggregator) RecomputeRanks(groupSeasonID int64) error {
	unlock := a.lockGroup(groupSeasonID)
	defer unlock()

	return a.recomputeRanksLocked(groupSeasonID)
}

func (a *Aggregator) recomputeRanksLocked(groupSeasonID int64) error {
	rows, err := a.store.ListStandings(groupSeasonID)
	if err != nil {
		return fmt.Errorf("failed to load standings for ranking: %w", err)
	}

	for i, row := range rows {
		if err := a.store.SetStandingPosition(groupSeasonID, row.UserID, i+1); err != nil {
			return err
		}
	}

	return nil
}

// GetWorkspaceStandings returns the full ordered table for one group.
// Positions are recomputed on read so the returned rank always matches the
// current sort, even if a persisted rank pass is stale.
func (a *Aggregator) GetWorkspaceStandings(groupSeasonID int64) ([]models.StandingWithUser, error) {
	gs, err := a.store.GetGroupSeason(groupSeasonID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, models.NewNotFoundError("group season", groupSeasonID)
	}

	rows, err := a.store.ListStandings(groupSeasonID)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		position := i + 1
		rows[i].Position = &position
	}

	return rows, nil
}

// GetTopStandings returns the first limit rows of the ordered table.
func (a *Aggregator) GetTopStandings(groupSeasonID int64, limit int) ([]models.StandingWithUser, error) {
	if limit < 1 {
		return nil, models.NewValidationError("limit", "must be at least 1")
	}

	rows, err := a.GetWorkspaceStandings(groupSeasonID)
	if err != nil {
		return nil, err
	}

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
