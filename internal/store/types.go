package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// ScorableRow is a prediction joined with its question (already resolved
// through the template chain) and the official answer. One row per
// submitted prediction of a fully resolved event.
type ScorableRow struct {
	PredictionID   int64
	UserID         int64
	QuestionID     int64
	Answer         string
	OfficialAnswer string
	Label          string
	Category       string
	PointValue     int
	DisplayOrder   int
}

// UserTotals carries the recomputed aggregate for one (group, user) pair.
type UserTotals struct {
	TotalPoints  int `db:"total_points"`
	EventsScored int `db:"events_scored"`
}

// SeasonStandingRow is one per-group standing joined with user and group
// identity, scoped to active group-seasons of one season. Input to the
// cross-group collapse.
type SeasonStandingRow struct {
	GroupSeasonID int64  `db:"group_season_id"`
	GroupName     string `db:"group_name"`
	UserID        int64  `db:"user_id"`
	UserName      string `db:"user_name"`
	UserEmail     string `db:"user_email"`
	TotalPoints   int    `db:"total_points"`
	EventsScored  int    `db:"events_scored"`
	CreatedAt     int64  `db:"created_at"`
}

// UserEventPointsRow aggregates one user's points and prediction count for
// one fully resolved event, group-independent (best award per prediction).
type UserEventPointsRow struct {
	UserID          int64  `db:"user_id"`
	EventID         int64  `db:"event_id"`
	Round           int    `db:"round"`
	EventName       string `db:"event_name"`
	Points          int    `db:"points"`
	PredictionCount int    `db:"prediction_count"`
}

// ScoredRow is one scored prediction of a user within a group, joined with
// event and resolved question data. Input to performance analytics.
type ScoredRow struct {
	EventID        int64
	Round          int
	EventName      string
	QuestionID     int64
	Category       string
	Answer         string
	OfficialAnswer string
	Points         int
}
