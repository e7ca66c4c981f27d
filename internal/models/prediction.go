package models

import (
	"github.com/go-playground/validator/v10"
)

// Prediction is a user's submitted answer to one question. Unique per
// (user, event, question); resubmissions before the lock time overwrite
// in place. Read-only to the scoring engine.
type Prediction struct {
	ID         int64  `db:"id" json:"id"`
	UserID     int64  `db:"user_id" json:"user_id" validate:"required"`
	EventID    int64  `db:"event_id" json:"event_id" validate:"required"`
	QuestionID int64  `db:"question_id" json:"question_id" validate:"required"`
	Answer     string `db:"answer" json:"answer" validate:"required"`
	UpdatedAt  int64  `db:"updated_at" json:"updated_at"`
}

// PointAward is the scored outcome of one prediction within one group.
// The scoring engine is the only writer; re-scoring overwrites the row.
type PointAward struct {
	PredictionID  int64 `db:"prediction_id" json:"prediction_id"`
	GroupSeasonID int64 `db:"group_season_id" json:"group_season_id"`
	Points        int   `db:"points" json:"points" validate:"min=0"`
	ScoredAt      int64 `db:"scored_at" json:"scored_at"`
}

// PointsNotification records that a points-earned notification was emitted
// for (group, user, event name). Its existence suppresses duplicates on
// re-scoring.
type PointsNotification struct {
	GroupSeasonID int64  `db:"group_season_id" json:"group_season_id"`
	UserID        int64  `db:"user_id" json:"user_id"`
	EventName     string `db:"event_name" json:"event_name"`
	Points        int    `db:"points" json:"points"`
	CreatedAt     int64  `db:"created_at" json:"created_at"`
}

func (p *Prediction) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

func (a *PointAward) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
