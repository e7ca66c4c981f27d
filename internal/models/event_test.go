package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestResolveQuestion(t *testing.T) {
	tpl := &QuestionTemplate{
		ID:         4,
		Label:      "Race winner",
		Category:   "race",
		PointValue: 25,
	}

	t.Run("template defaults apply", func(t *testing.T) {
		q := Question{ID: 41, EventID: 7, TemplateID: &tpl.ID, Kind: KindDriver, DisplayOrder: 1}

		r := ResolveQuestion(q, tpl)

		assert.Equal(t, "Race winner", r.Label)
		assert.Equal(t, "race", r.Category)
		assert.Equal(t, 25, r.PointValue)
		assert.Equal(t, KindDriver, r.Kind)
	})

	t.Run("question fields win over template", func(t *testing.T) {
		q := Question{
			ID:         41,
			EventID:    7,
			TemplateID: &tpl.ID,
			Label:      strPtr("Sprint winner"),
			PointValue: intPtr(8),
			Kind:       KindDriver,
		}

		r := ResolveQuestion(q, tpl)

		assert.Equal(t, "Sprint winner", r.Label)
		assert.Equal(t, "race", r.Category)
		assert.Equal(t, 8, r.PointValue)
	})

	t.Run("no template, own values only", func(t *testing.T) {
		q := Question{
			ID:         42,
			EventID:    7,
			Label:      strPtr("Safety car deployed"),
			Category:   strPtr("incidents"),
			PointValue: intPtr(5),
			Kind:       KindChoice,
		}

		r := ResolveQuestion(q, nil)

		assert.Equal(t, "Safety car deployed", r.Label)
		assert.Equal(t, "incidents", r.Category)
		assert.Equal(t, 5, r.PointValue)
	})

	t.Run("explicit zero points overrides template", func(t *testing.T) {
		q := Question{ID: 43, EventID: 7, TemplateID: &tpl.ID, PointValue: intPtr(0), Kind: KindText}

		r := ResolveQuestion(q, tpl)

		assert.Equal(t, 0, r.PointValue)
	})
}

func TestParseQuestionOptions(t *testing.T) {
	t.Run("text needs no payload", func(t *testing.T) {
		opts, err := ParseQuestionOptions(KindText, nil)
		require.NoError(t, err)
		assert.Equal(t, KindText, opts.Kind)
	})

	t.Run("choice", func(t *testing.T) {
		opts, err := ParseQuestionOptions(KindChoice, strPtr(`{"choices":["yes","no"]}`))
		require.NoError(t, err)
		assert.True(t, opts.AllowsAnswer("yes"))
		assert.False(t, opts.AllowsAnswer("maybe"))
	})

	t.Run("choice with one option rejected", func(t *testing.T) {
		_, err := ParseQuestionOptions(KindChoice, strPtr(`{"choices":["yes"]}`))
		assert.Error(t, err)
	})

	t.Run("driver roster", func(t *testing.T) {
		opts, err := ParseQuestionOptions(KindDriver, strPtr(`{"drivers":["VER","NOR","PIA"]}`))
		require.NoError(t, err)
		assert.True(t, opts.AllowsAnswer("NOR"))
		assert.False(t, opts.AllowsAnswer("ver"))
	})

	t.Run("number bounds", func(t *testing.T) {
		opts, err := ParseQuestionOptions(KindNumber, strPtr(`{"min":0,"max":20}`))
		require.NoError(t, err)
		assert.True(t, opts.AllowsAnswer("0"))
		assert.True(t, opts.AllowsAnswer("20"))
		assert.False(t, opts.AllowsAnswer("21"))
		assert.False(t, opts.AllowsAnswer("plenty"))
	})

	t.Run("inverted number bounds rejected", func(t *testing.T) {
		_, err := ParseQuestionOptions(KindNumber, strPtr(`{"min":5,"max":1}`))
		assert.Error(t, err)
	})

	t.Run("missing payload", func(t *testing.T) {
		_, err := ParseQuestionOptions(KindDriver, nil)
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseQuestionOptions("essay", strPtr(`{}`))
		assert.Error(t, err)
	})
}
