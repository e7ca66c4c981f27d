// internal/store/sqlite/store_test.go
package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicane-league/chicane/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

// setupLeagueData seeds two groups of one season, two events and a handful
// of predictions. Event 1 is fully resolved, event 2 is missing a result.
func setupLeagueData(t *testing.T, s *SQLiteStore) {
	_, err := s.DB.Exec(`
		INSERT INTO users (id, name, email, created_at) VALUES
		(1, 'jules', 'jules@example.com', 100),
		(2, 'nkto', 'nkto@example.com', 110),
		(3, 'remy', 'remy@example.com', 120)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO group_seasons (id, group_name, season, active, created_at) VALUES
		(1, 'Paddock Club', '2026', 1, 100),
		(2, 'Pit Wall', '2026', 1, 200),
		(3, 'Old Guard', '2025', 0, 50)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO group_members (group_season_id, user_id, joined_at) VALUES
		(1, 1, 100), (1, 2, 110), (2, 1, 200)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO events (id, round, name, starts_at, locks_at) VALUES
		(1, 1, 'Bahrain Grand Prix', 1000, 900),
		(2, 2, 'Chinese Grand Prix', 2000, 1900)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO question_templates (id, label, category, point_value) VALUES
		(1, 'Race winner', 'race', 25),
		(2, 'Pole position', 'qualifying', 10)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO questions (id, event_id, template_id, label, category, kind, options, point_value, display_order) VALUES
		(1, 1, 1, NULL, NULL, 'driver', '{"drivers":["VER","HAM","NOR"]}', NULL, 1),
		(2, 1, NULL, 'Safety car deployed', 'incidents', 'choice', '{"choices":["yes","no"]}', 5, 2),
		(3, 2, 1, 'Sprint winner', NULL, 'driver', '{"drivers":["VER","HAM","NOR"]}', 8, 1)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO official_results (question_id, answer, recorded_at) VALUES
		(1, 'VER', 1100), (2, 'yes', 1100)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO predictions (id, user_id, event_id, question_id, answer, updated_at) VALUES
		(1, 1, 1, 1, 'VER', 950),
		(2, 1, 1, 2, 'no', 950),
		(3, 2, 1, 1, 'HAM', 960),
		(4, 1, 2, 3, 'NOR', 1950)`)
	require.NoError(t, err)
}

func TestGetEvent(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	t.Run("existing event", func(t *testing.T) {
		event, err := s.GetEvent(1)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, 1, event.Round)
		assert.Equal(t, "Bahrain Grand Prix", event.Name)
	})

	t.Run("missing event returns nil", func(t *testing.T) {
		event, err := s.GetEvent(99)
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}

func TestQuestionCounts(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	total, err := s.CountTotalQuestions(1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	resolved, err := s.CountResolvedQuestions(1)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	total, err = s.CountTotalQuestions(2)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	resolved, err = s.CountResolvedQuestions(2)
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)
}

func TestListEventPredictions(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	rows, err := s.ListEventPredictions(1)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ordered by user, then display order
	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, int64(1), rows[0].QuestionID)
	assert.Equal(t, "VER", rows[0].Answer)
	assert.Equal(t, "VER", rows[0].OfficialAnswer)
	// Template defaults resolved into the row
	assert.Equal(t, "Race winner", rows[0].Label)
	assert.Equal(t, "race", rows[0].Category)
	assert.Equal(t, 25, rows[0].PointValue)

	// Question with its own values, no template
	assert.Equal(t, int64(2), rows[1].QuestionID)
	assert.Equal(t, "Safety car deployed", rows[1].Label)
	assert.Equal(t, "incidents", rows[1].Category)
	assert.Equal(t, 5, rows[1].PointValue)

	assert.Equal(t, int64(2), rows[2].UserID)
}

func TestUpsertOfficialResult_Correction(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	err := s.UpsertOfficialResult(&models.OfficialResult{QuestionID: 1, Answer: "HAM", RecordedAt: 1200})
	require.NoError(t, err)

	rows, err := s.ListEventPredictions(1)
	require.NoError(t, err)
	assert.Equal(t, "HAM", rows[0].OfficialAnswer)

	result, err := s.GetOfficialResult(1)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "HAM", result.Answer)
	assert.Equal(t, int64(1200), result.RecordedAt)
}

func TestPointAwards(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 1, GroupSeasonID: 1, Points: 25, ScoredAt: 1300}))
	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 2, GroupSeasonID: 1, Points: 0, ScoredAt: 1300}))

	t.Run("totals count distinct events", func(t *testing.T) {
		totals, err := s.UserTotals(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 25, totals.TotalPoints)
		assert.Equal(t, 1, totals.EventsScored)
	})

	t.Run("upsert overwrites instead of duplicating", func(t *testing.T) {
		require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 1, GroupSeasonID: 1, Points: 0, ScoredAt: 1400}))

		var count int
		require.NoError(t, s.DB.Get(&count, `SELECT COUNT(*) FROM point_awards WHERE prediction_id = 1`))
		assert.Equal(t, 1, count)

		totals, err := s.UserTotals(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, totals.TotalPoints)
	})

	t.Run("delete clears the event for one group", func(t *testing.T) {
		require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 1, GroupSeasonID: 2, Points: 25, ScoredAt: 1300}))

		require.NoError(t, s.DeleteEventAwards(1, 1))

		totals, err := s.UserTotals(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, totals.TotalPoints)
		assert.Equal(t, 0, totals.EventsScored)

		totals, err = s.UserTotals(2, 1)
		require.NoError(t, err)
		assert.Equal(t, 25, totals.TotalPoints)
	})
}

func TestStandings(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 1, UserID: 1, TotalPoints: 95, EventsScored: 4, CreatedAt: 500, UpdatedAt: 500}))
	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 1, UserID: 2, TotalPoints: 120, EventsScored: 4, CreatedAt: 600, UpdatedAt: 600}))
	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 1, UserID: 3, TotalPoints: 95, EventsScored: 3, CreatedAt: 400, UpdatedAt: 400}))

	t.Run("ordering", func(t *testing.T) {
		rows, err := s.ListStandings(1)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		// points desc, then events scored desc
		assert.Equal(t, int64(2), rows[0].UserID)
		assert.Equal(t, int64(1), rows[1].UserID)
		assert.Equal(t, int64(3), rows[2].UserID)
		assert.Equal(t, "nkto", rows[0].UserName)
	})

	t.Run("upsert keeps created_at", func(t *testing.T) {
		require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 1, UserID: 1, TotalPoints: 130, EventsScored: 5, CreatedAt: 500, UpdatedAt: 700}))

		standing, err := s.GetStanding(1, 1)
		require.NoError(t, err)
		require.NotNil(t, standing)
		assert.Equal(t, 130, standing.TotalPoints)
		assert.Equal(t, int64(500), standing.CreatedAt)
		assert.Equal(t, int64(700), standing.UpdatedAt)
	})

	t.Run("set position", func(t *testing.T) {
		require.NoError(t, s.SetStandingPosition(1, 2, 1))

		standing, err := s.GetStanding(1, 2)
		require.NoError(t, err)
		require.NotNil(t, standing.Position)
		assert.Equal(t, 1, *standing.Position)
	})

	t.Run("missing standing is nil", func(t *testing.T) {
		standing, err := s.GetStanding(2, 99)
		require.NoError(t, err)
		assert.Nil(t, standing)
	})
}

func TestListSeasonStandingRows(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 1, UserID: 1, TotalPoints: 80, EventsScored: 3, CreatedAt: 500, UpdatedAt: 500}))
	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 2, UserID: 1, TotalPoints: 120, EventsScored: 4, CreatedAt: 600, UpdatedAt: 600}))
	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 1, UserID: 2, TotalPoints: 95, EventsScored: 4, CreatedAt: 500, UpdatedAt: 500}))
	// Inactive group of another season must never show up
	require.NoError(t, s.UpsertStanding(&models.Standing{GroupSeasonID: 3, UserID: 1, TotalPoints: 999, EventsScored: 9, CreatedAt: 100, UpdatedAt: 100}))

	t.Run("active season only", func(t *testing.T) {
		rows, err := s.ListSeasonStandingRows("2026", "")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for _, row := range rows {
			assert.NotEqual(t, int64(3), row.GroupSeasonID)
		}
	})

	t.Run("search filters by name", func(t *testing.T) {
		rows, err := s.ListSeasonStandingRows("2026", "JUL")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, "jules", row.UserName)
		}
	})

	t.Run("unknown season is empty", func(t *testing.T) {
		rows, err := s.ListSeasonStandingRows("1950", "")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestListUserEventPoints(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	// Same prediction scored in two groups with different outcomes: the
	// comparison takes the best award per prediction.
	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 1, GroupSeasonID: 1, Points: 25, ScoredAt: 1300}))
	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 1, GroupSeasonID: 2, Points: 0, ScoredAt: 1300}))
	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 2, GroupSeasonID: 1, Points: 0, ScoredAt: 1300}))
	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 3, GroupSeasonID: 1, Points: 0, ScoredAt: 1300}))

	rows, err := s.ListUserEventPoints([]int64{1, 2})
	require.NoError(t, err)
	// Event 2 is unresolved and must not appear even though user 1
	// predicted it.
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, int64(1), rows[0].EventID)
	assert.Equal(t, "Bahrain Grand Prix", rows[0].EventName)
	assert.Equal(t, 25, rows[0].Points)
	assert.Equal(t, 2, rows[0].PredictionCount)

	assert.Equal(t, int64(2), rows[1].UserID)
	assert.Equal(t, 0, rows[1].Points)
	assert.Equal(t, 1, rows[1].PredictionCount)
}

func TestPointsNotifications(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	seen, err := s.HasPointsNotification(1, 1, "Bahrain Grand Prix")
	require.NoError(t, err)
	assert.False(t, seen)

	n := &models.PointsNotification{GroupSeasonID: 1, UserID: 1, EventName: "Bahrain Grand Prix", Points: 25, CreatedAt: 1300}
	require.NoError(t, s.CreatePointsNotification(n))

	seen, err = s.HasPointsNotification(1, 1, "Bahrain Grand Prix")
	require.NoError(t, err)
	assert.True(t, seen)

	// Second insert is a no-op, not an error
	require.NoError(t, s.CreatePointsNotification(n))
}

func TestListUserScoredRows(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 1, GroupSeasonID: 1, Points: 25, ScoredAt: 1300}))
	require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 2, GroupSeasonID: 1, Points: 0, ScoredAt: 1300}))

	rows, err := s.ListUserScoredRows(1, 1, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Bahrain Grand Prix", rows[0].EventName)
	assert.Equal(t, "race", rows[0].Category)
	assert.Equal(t, 25, rows[0].Points)
	assert.Equal(t, "incidents", rows[1].Category)
	assert.Equal(t, 0, rows[1].Points)

	t.Run("event filter", func(t *testing.T) {
		eventID := int64(2)
		rows, err := s.ListUserScoredRows(1, 1, &eventID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("own category wins over template", func(t *testing.T) {
		_, err := s.DB.Exec(`
			INSERT INTO questions (id, event_id, template_id, label, category, kind, options, point_value, display_order) VALUES
			(10, 1, 1, NULL, 'sprint', 'driver', '{"drivers":["VER","HAM","NOR"]}', NULL, 3)`)
		require.NoError(t, err)
		_, err = s.DB.Exec(`INSERT INTO official_results (question_id, answer, recorded_at) VALUES (10, 'HAM', 1100)`)
		require.NoError(t, err)
		_, err = s.DB.Exec(`INSERT INTO predictions (id, user_id, event_id, question_id, answer, updated_at) VALUES (10, 1, 1, 10, 'HAM', 950)`)
		require.NoError(t, err)
		require.NoError(t, s.UpsertPointAward(&models.PointAward{PredictionID: 10, GroupSeasonID: 1, Points: 25, ScoredAt: 1300}))

		rows, err := s.ListUserScoredRows(1, 1, nil)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "sprint", rows[2].Category)
	})
}

func TestActiveSeason(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	season, err := s.ActiveSeason()
	require.NoError(t, err)
	assert.Equal(t, "2026", season)
}

func TestListGroupMembers(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	setupLeagueData(t, s)

	users, err := s.ListGroupMembers(1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "jules", users[0].Name)
	assert.Equal(t, "nkto", users[1].Name)
}
