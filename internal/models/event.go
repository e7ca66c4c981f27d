package models

import (
	"github.com/go-playground/validator/v10"
)

type Event struct {
	ID       int64  `db:"id" json:"id"`
	Round    int    `db:"round" json:"round" validate:"required,min=1"`
	Name     string `db:"name" json:"name" validate:"required"`
	StartsAt int64  `db:"starts_at" json:"starts_at"`
	LocksAt  int64  `db:"locks_at" json:"locks_at"`
}

// QuestionTemplate holds shared defaults a question can fall back on
// when it carries no per-event values of its own.
type QuestionTemplate struct {
	ID         int64  `db:"id" json:"id"`
	Label      string `db:"label" json:"label" validate:"required"`
	Category   string `db:"category" json:"category" validate:"required"`
	PointValue int    `db:"point_value" json:"point_value" validate:"min=0"`
}

type Question struct {
	ID           int64   `db:"id" json:"id"`
	EventID      int64   `db:"event_id" json:"event_id"`
	TemplateID   *int64  `db:"template_id" json:"template_id,omitempty"`
	Label        *string `db:"label" json:"label,omitempty"`
	Category     *string `db:"category" json:"category,omitempty"`
	Kind         string  `db:"kind" json:"kind"`
	Options      *string `db:"options" json:"options,omitempty"`
	PointValue   *int    `db:"point_value" json:"point_value,omitempty"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
}

type OfficialResult struct {
	QuestionID int64  `db:"question_id" json:"question_id"`
	Answer     string `db:"answer" json:"answer" validate:"required"`
	RecordedAt int64  `db:"recorded_at" json:"recorded_at"`
}

// ResolvedQuestion is the scoring-ready view of a question: label, category
// and point value settled once through the override chain instead of
// null-coalescing at every call site.
type ResolvedQuestion struct {
	QuestionID   int64
	EventID      int64
	Label        string
	Category     string
	Kind         string
	PointValue   int
	DisplayOrder int
}

// ResolveQuestion applies the precedence chain: per-event question fields
// win over template defaults. A question with neither a template nor its
// own values resolves to an empty label/category and zero points.
func ResolveQuestion(q Question, tpl *QuestionTemplate) ResolvedQuestion {
	r := ResolvedQuestion{
		QuestionID:   q.ID,
		EventID:      q.EventID,
		Kind:         q.Kind,
		DisplayOrder: q.DisplayOrder,
	}
	if tpl != nil {
		r.Label = tpl.Label
		r.Category = tpl.Category
		r.PointValue = tpl.PointValue
	}
	if q.Label != nil {
		r.Label = *q.Label
	}
	if q.Category != nil {
		r.Category = *q.Category
	}
	if q.PointValue != nil {
		r.PointValue = *q.PointValue
	}
	return r
}

func (e *Event) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}

func (r *OfficialResult) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
