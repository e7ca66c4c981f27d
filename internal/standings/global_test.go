package standings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chicane-league/chicane/internal/models"
	"github.com/chicane-league/chicane/internal/store"
)

func seasonRow(groupID int64, groupName string, userID int64, userName string, points int, createdAt int64) store.SeasonStandingRow {
	return store.SeasonStandingRow{
		GroupSeasonID: groupID,
		GroupName:     groupName,
		UserID:        userID,
		UserName:      userName,
		TotalPoints:   points,
		CreatedAt:     createdAt,
	}
}

func TestLeaderboard_GetGlobalStandings_CollapsesToBestGroup(t *testing.T) {
	s := new(MockStore)
	s.On("ListSeasonStandingRows", "2026", "").Return([]store.SeasonStandingRow{
		seasonRow(1, "Paddock Club", 9, "jules", 80, 100),
		seasonRow(2, "Pit Wall", 9, "jules", 120, 200),
		seasonRow(1, "Paddock Club", 5, "nkto", 95, 100),
	}, nil).Once()

	rows, total, err := NewLeaderboard(s, 0).GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 50})

	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, rows, 2)

	assert.Equal(t, int64(9), rows[0].UserID)
	assert.Equal(t, 120, rows[0].BestPoints)
	assert.Equal(t, int64(2), rows[0].BestGroupID)
	assert.Equal(t, "Pit Wall", rows[0].BestGroupName)
	assert.Equal(t, 2, rows[0].TotalGroups)
	assert.Equal(t, 1, rows[0].GlobalPosition)

	assert.Equal(t, int64(5), rows[1].UserID)
	assert.Equal(t, 1, rows[1].TotalGroups)
	assert.Equal(t, 2, rows[1].GlobalPosition)
}

func TestLeaderboard_GetGlobalStandings_TieBreaks(t *testing.T) {
	s := new(MockStore)
	s.On("ListSeasonStandingRows", "2026", "").Return([]store.SeasonStandingRow{
		seasonRow(1, "Paddock Club", 9, "jules", 100, 500),
		seasonRow(2, "Pit Wall", 5, "nkto", 100, 100),
	}, nil).Once()

	rows, _, err := NewLeaderboard(s, 0).GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 50})

	assert.NoError(t, err)
	// Equal best points: earliest best-standing creation wins
	assert.Equal(t, int64(5), rows[0].UserID)
	assert.Equal(t, int64(9), rows[1].UserID)
}

func TestLeaderboard_GetGlobalStandings_DefaultsToActiveSeason(t *testing.T) {
	s := new(MockStore)
	s.On("ActiveSeason").Return("2026", nil).Once()
	s.On("ListSeasonStandingRows", "2026", "").Return([]store.SeasonStandingRow{}, nil).Once()

	rows, total, err := NewLeaderboard(s, 0).GetGlobalStandings(GlobalFilter{Limit: 20})

	assert.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, rows)
	s.AssertExpectations(t)
}

func TestLeaderboard_GetGlobalStandings_Pagination(t *testing.T) {
	s := new(MockStore)
	s.On("ListSeasonStandingRows", "2026", "").Return([]store.SeasonStandingRow{
		seasonRow(1, "Paddock Club", 1, "a", 50, 10),
		seasonRow(1, "Paddock Club", 2, "b", 40, 20),
		seasonRow(1, "Paddock Club", 3, "c", 30, 30),
	}, nil)

	t.Run("offset within range", func(t *testing.T) {
		rows, total, err := NewLeaderboard(s, 0).GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 1, Offset: 1})
		assert.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, rows, 1)
		assert.Equal(t, int64(2), rows[0].UserID)
		// Position reflects the full ranking, not the page
		assert.Equal(t, 2, rows[0].GlobalPosition)
	})

	t.Run("offset past the end", func(t *testing.T) {
		rows, total, err := NewLeaderboard(s, 0).GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 10, Offset: 10})
		assert.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, rows)
	})

	t.Run("limit out of bounds", func(t *testing.T) {
		_, _, err := NewLeaderboard(s, 0).GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 500})
		var invalid *models.ValidationError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestLeaderboard_GetGlobalStandings_ConfiguredMaxLimit(t *testing.T) {
	s := new(MockStore)
	s.On("ListSeasonStandingRows", "2026", "").Return([]store.SeasonStandingRow{
		seasonRow(1, "Paddock Club", 1, "a", 50, 10),
	}, nil)

	lb := NewLeaderboard(s, 25)

	_, _, err := lb.GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 26})
	var invalid *models.ValidationError
	assert.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "25")

	_, total, err := lb.GetGlobalStandings(GlobalFilter{Season: "2026", Limit: 25})
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestLeaderboard_CompareUsers_BuildsMatrix(t *testing.T) {
	s := new(MockStore)
	s.On("ListUserEventPoints", []int64{9, 5}).Return([]store.UserEventPointsRow{
		{UserID: 9, EventID: 7, Round: 7, EventName: "Hungarian Grand Prix", Points: 25, PredictionCount: 4},
		{UserID: 5, EventID: 7, Round: 7, EventName: "Hungarian Grand Prix", Points: 10, PredictionCount: 4},
		{UserID: 9, EventID: 2, Round: 2, EventName: "Chinese Grand Prix", Points: 15, PredictionCount: 3},
	}, nil).Once()

	cmp, err := NewLeaderboard(s, 0).CompareUsers([]int64{9, 5})

	assert.NoError(t, err)
	assert.Equal(t, []int64{9, 5}, cmp.UserIDs)
	assert.Len(t, cmp.Events, 2)

	// Ordered by round ascending
	assert.Equal(t, 2, cmp.Events[0].Round)
	assert.Equal(t, 7, cmp.Events[1].Round)

	// Users with no line in an event get a zero-filled entry
	assert.Equal(t, int64(5), cmp.Events[0].Users[1].UserID)
	assert.Equal(t, 0, cmp.Events[0].Users[1].Points)
	assert.Equal(t, 0, cmp.Events[0].Users[1].Predictions)

	assert.Equal(t, 25, cmp.Events[1].Users[0].Points)
	assert.Equal(t, 10, cmp.Events[1].Users[1].Points)
}

func TestLeaderboard_CompareUsers_Bounds(t *testing.T) {
	s := new(MockStore)
	lb := NewLeaderboard(s, 0)

	for _, ids := range [][]int64{{9}, {1, 2, 3, 4, 5}} {
		_, err := lb.CompareUsers(ids)
		var invalid *models.ValidationError
		assert.True(t, errors.As(err, &invalid))
	}
	s.AssertNotCalled(t, "ListUserEventPoints", mock.Anything)
}
