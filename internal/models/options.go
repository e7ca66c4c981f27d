package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Question kinds. The kind selects which options payload a question carries
// and is fixed at question creation time.
const (
	KindText   = "text"
	KindChoice = "choice"
	KindDriver = "driver"
	KindNumber = "number"
)

// ChoiceOptions lists the accepted answers for a multiple-choice question.
type ChoiceOptions struct {
	Choices []string `json:"choices" validate:"required,min=2"`
}

// DriverOptions restricts answers to a driver roster, optionally a subset.
type DriverOptions struct {
	Drivers []string `json:"drivers" validate:"required,min=1"`
}

// NumberOptions bounds a numeric answer.
type NumberOptions struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// QuestionOptions is the tagged variant for per-question configuration.
// Exactly one of the payload fields is set, matching Kind. Text questions
// carry no payload.
type QuestionOptions struct {
	Kind   string
	Choice *ChoiceOptions
	Driver *DriverOptions
	Number *NumberOptions
}

// ParseQuestionOptions decodes the raw options blob for the given kind.
// Validation happens here, at the boundary, so the scoring core never sees
// untyped payloads.
func ParseQuestionOptions(kind string, raw *string) (*QuestionOptions, error) {
	opts := &QuestionOptions{Kind: kind}

	if kind == KindText {
		return opts, nil
	}
	if raw == nil {
		return nil, fmt.Errorf("question kind %q requires an options payload", kind)
	}

	switch kind {
	case KindChoice:
		var c ChoiceOptions
		if err := json.Unmarshal([]byte(*raw), &c); err != nil {
			return nil, fmt.Errorf("invalid choice options: %w", err)
		}
		if len(c.Choices) < 2 {
			return nil, fmt.Errorf("choice question needs at least 2 choices, got %d", len(c.Choices))
		}
		opts.Choice = &c
	case KindDriver:
		var d DriverOptions
		if err := json.Unmarshal([]byte(*raw), &d); err != nil {
			return nil, fmt.Errorf("invalid driver options: %w", err)
		}
		if len(d.Drivers) == 0 {
			return nil, fmt.Errorf("driver question needs a non-empty roster")
		}
		opts.Driver = &d
	case KindNumber:
		var n NumberOptions
		if err := json.Unmarshal([]byte(*raw), &n); err != nil {
			return nil, fmt.Errorf("invalid number options: %w", err)
		}
		if n.Max < n.Min {
			return nil, fmt.Errorf("number question bounds inverted: [%d, %d]", n.Min, n.Max)
		}
		opts.Number = &n
	default:
		return nil, fmt.Errorf("unknown question kind: %q", kind)
	}

	return opts, nil
}

// AllowsAnswer reports whether the answer is admissible for this question
// configuration. Used by the prediction intake; scoring itself only ever
// compares stored answers for exact equality.
func (o *QuestionOptions) AllowsAnswer(answer string) bool {
	switch o.Kind {
	case KindChoice:
		for _, c := range o.Choice.Choices {
			if c == answer {
				return true
			}
		}
		return false
	case KindDriver:
		for _, d := range o.Driver.Drivers {
			if d == answer {
				return true
			}
		}
		return false
	case KindNumber:
		n, err := strconv.Atoi(answer)
		if err != nil {
			return false
		}
		return n >= o.Number.Min && n <= o.Number.Max
	default:
		return true
	}
}
