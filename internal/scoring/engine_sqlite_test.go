// internal/scoring/engine_sqlite_test.go
package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicane-league/chicane/internal/models"
	"github.com/chicane-league/chicane/internal/standings"
	"github.com/chicane-league/chicane/internal/store/sqlite"
)

// setupScoringStore seeds one fully resolved event with two opposing
// predictions: jules picks VER, nkto picks NOR, official answer VER.
func setupScoringStore(t *testing.T) (*sqlite.SQLiteStore, func()) {
	s, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err, "Failed to create store")

	_, err = s.DB.Exec(`
		INSERT INTO users (id, name, email, created_at) VALUES
		(1, 'jules', 'jules@example.com', 100),
		(2, 'nkto', 'nkto@example.com', 110)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO group_seasons (id, group_name, season, active, created_at) VALUES
		(1, 'Paddock Club', '2026', 1, 100)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO events (id, round, name, starts_at, locks_at) VALUES
		(1, 1, 'Bahrain Grand Prix', 1000, 900)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO question_templates (id, label, category, point_value) VALUES
		(1, 'Race winner', 'race', 25)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO questions (id, event_id, template_id, label, category, kind, options, point_value, display_order) VALUES
		(1, 1, 1, NULL, NULL, 'driver', '{"drivers":["VER","HAM","NOR"]}', NULL, 1)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO official_results (question_id, answer, recorded_at) VALUES
		(1, 'VER', 1100)`)
	require.NoError(t, err)

	_, err = s.DB.Exec(`
		INSERT INTO predictions (id, user_id, event_id, question_id, answer, updated_at) VALUES
		(1, 1, 1, 1, 'VER', 950),
		(2, 2, 1, 1, 'NOR', 960)`)
	require.NoError(t, err)

	cleanup := func() {
		require.NoError(t, s.Close())
	}
	return s, cleanup
}

func eventPointsByUser(t *testing.T, results []Result) map[int64]int {
	t.Helper()
	byUser := make(map[int64]int, len(results))
	for _, r := range results {
		byUser[r.UserID] = r.EventPoints
	}
	return byUser
}

// A corrected official result must flip awards wholesale on rescore: the
// points move from the old correct answer to the new one and the standings
// table follows, with the same total points in circulation.
func TestRescoreAfterResultCorrection(t *testing.T) {
	s, cleanup := setupScoringStore(t)
	defer cleanup()

	ctx := context.Background()
	engine := NewEngine(s, standings.NewAggregator(s), nil)

	results, err := engine.ScoreEvent(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)

	points := eventPointsByUser(t, results)
	assert.Equal(t, 25, points[1])
	assert.Equal(t, 0, points[2])

	// Re-running without any change converges to the same award rows.
	_, err = engine.ScoreEvent(ctx, 1, 1)
	require.NoError(t, err)

	var awardCount int
	require.NoError(t, s.DB.Get(&awardCount, "SELECT COUNT(*) FROM point_awards"))
	assert.Equal(t, 2, awardCount)

	totals, err := s.UserTotals(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 25, totals.TotalPoints)
	assert.Equal(t, 1, totals.EventsScored)

	// Stewards hand the win to NOR after the fact.
	require.NoError(t, s.UpsertOfficialResult(&models.OfficialResult{
		QuestionID: 1,
		Answer:     "NOR",
		RecordedAt: 1200,
	}))

	results, err = engine.RecalculateEventScoring(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)

	points = eventPointsByUser(t, results)
	assert.Equal(t, 0, points[1])
	assert.Equal(t, 25, points[2])

	require.NoError(t, s.DB.Get(&awardCount, "SELECT COUNT(*) FROM point_awards"))
	assert.Equal(t, 2, awardCount)

	rows, err := s.ListStandings(1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].UserID)
	assert.Equal(t, 25, rows[0].TotalPoints)
	assert.Equal(t, int64(1), rows[1].UserID)
	assert.Equal(t, 0, rows[1].TotalPoints)

	// Total points in the group are conserved across the correction.
	assert.Equal(t, 25, rows[0].TotalPoints+rows[1].TotalPoints)

	leader, err := s.GetStanding(1, 2)
	require.NoError(t, err)
	require.NotNil(t, leader)
	require.NotNil(t, leader.Position)
	assert.Equal(t, 1, *leader.Position)

	trailer, err := s.GetStanding(1, 1)
	require.NoError(t, err)
	require.NotNil(t, trailer)
	require.NotNil(t, trailer.Position)
	assert.Equal(t, 2, *trailer.Position)
}
