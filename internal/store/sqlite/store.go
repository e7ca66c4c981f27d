// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chicane-league/chicane/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// Single connection: sqlite allows one writer, and a pooled
	// :memory: DSN would hand every connection its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL PRIMARY KEY": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGSERIAL":             "INTEGER",
		"BIGINT":                "INTEGER",
		"BOOLEAN":               "INTEGER",
		"TRUE":                  "1",
		"FALSE":                 "0",
		"now()":                 "CURRENT_TIMESTAMP",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}

func (s *SQLiteStore) ListSeasonStandingRows(season, search string) ([]store.SeasonStandingRow, error) {
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
		AND gs.season = ?
		AND (? = '' OR LOWER(u.name) LIKE '%' || LOWER(?) || '%' OR LOWER(u.email) LIKE '%' || LOWER(?) || '%')
		ORDER BY st.user_id, st.created_at ASC
	`

	var rows []store.SeasonStandingRow
	err := s.DB.Select(&rows, query, season, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list season standings: %w", err)
	}

	return rows, nil
}

func (s *SQLiteStore) ListUserEventPoints(userIDs []int64) ([]store.UserEventPointsRow, error) {
	query, args, err := sqlx.In(`
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
		WHERE p.user_id IN (?)
		GROUP BY p.user_id, p.event_id, e.round, e.name
		ORDER BY e.round ASC, p.user_id ASC
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand user id list: %w", err)
	}

	var rows []store.UserEventPointsRow
	if err := s.DB.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list user event points: %w", err)
	}

	return rows, nil
}
