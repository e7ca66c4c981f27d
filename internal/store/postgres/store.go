package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/chicane-league/chicane/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func (s *PostgresStore) ListSeasonStandingRows(season, search string) ([]store.SeasonStandingRow, error) {
	query := `
		SELECT
			st.group_season_id,
			gs.group_name,
			st.user_id,
			u.name AS user_name,
			u.email AS user_email,
			st.total_points,
			st.events_scored,
			st.created_at
		FROM standings st
		JOIN group_seasons gs ON gs.id = st.group_season_id
		JOIN users u ON u.id = st.user_id
		WHERE gs.active
		AND gs.season = $1
		AND ($2 = '' OR u.name ILIKE '%' || $2 || '%' OR u.email ILIKE '%' || $2 || '%')
		ORDER BY st.user_id, st.created_at ASC
	`

	var rows []store.SeasonStandingRow
	err := s.DB.Select(&rows, query, season, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list season standings: %w", err)
	}

	return rows, nil
}

func (s *PostgresStore) ListUserEventPoints(userIDs []int64) ([]store.UserEventPointsRow, error) {
	query := `
		WITH best_awards AS (
			SELECT prediction_id, MAX(points) AS points
			FROM point_awards
			GROUP BY prediction_id
		),
		resolved_events AS (
			SELECT q.event_id
			FROM questions q
			LEFT JOIN official_results r ON r.question_id = q.id
			GROUP BY q.event_id
			HAVING COUNT(*) = COUNT(r.question_id)
		)
		SELECT
			p.user_id,
			p.event_id,
			e.round,
			e.name AS event_name,
			COALESCE(SUM(b.points), 0) AS points,
			COUNT(p.id) AS prediction_count
		FROM predictions p
		JOIN events e ON e.id = p.event_id
		JOIN resolved_events re ON re.event_id = p.event_id
		LEFT JOIN best_awards b ON b.prediction_id = p.id
		WHERE p.user_id = ANY($1)
		GROUP BY p.user_id, p.event_id, e.round, e.name
		ORDER BY e.round ASC, p.user_id ASC
	`

	var rows []store.UserEventPointsRow
	err := s.DB.Select(&rows, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list user event points: %w", err)
	}

	return rows, nil
}
