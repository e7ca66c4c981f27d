package models

// Standing is a user's cached total within one group-season. It is a
// materialized view over point_awards: always recomputed from scratch,
// never patched incrementally.
type Standing struct {
	GroupSeasonID int64 `db:"group_season_id" json:"group_season_id"`
	UserID        int64 `db:"user_id" json:"user_id"`
	TotalPoints   int   `db:"total_points" json:"total_points"`
	EventsScored  int   `db:"events_scored" json:"events_scored"`
	Position      *int  `db:"position" json:"position,omitempty"`
	CreatedAt     int64 `db:"created_at" json:"created_at"`
	UpdatedAt     int64 `db:"updated_at" json:"updated_at"`
}

// StandingWithUser is the read-side row for group standings pages.
type StandingWithUser struct {
	Standing
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

// GlobalStanding collapses a user's standings across groups for one season.
// Never persisted; computed per request.
type GlobalStanding struct {
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	BestPoints     int    `json:"best_points"`
	BestGroupID    int64  `json:"best_group_id"`
	BestGroupName  string `json:"best_group_name"`
	TotalGroups    int    `json:"total_groups"`
	GlobalPosition int    `json:"global_position"`
}
