// Package answer defines the closed set of question types and the canonical
// encodings used to store correct answers and student answers.
package answer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrMalformedEncoding   = errors.New("malformed answer encoding")
)

// QuestionType is the declared kind of a question.
type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	Text           QuestionType = "TEXT"
	TrueFalse      QuestionType = "TRUE_FALSE"
	Ordering       QuestionType = "ORDERING"
	Matching       QuestionType = "MATCHING"
	FillInTheBlank QuestionType = "FILL_IN_THE_BLANK"
)

// QuestionTypes lists every supported type in display order.
var QuestionTypes = []QuestionType{
	MultipleChoice,
	Text,
	TrueFalse,
	Ordering,
	Matching,
	FillInTheBlank,
}

// ParseQuestionType converts a stored or submitted value into a QuestionType.
// Values outside the closed set yield ErrUnknownQuestionType.
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(s)
	switch t {
	case MultipleChoice, Text, TrueFalse, Ordering, Matching, FillInTheBlank:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuestionType, s)
}

func (t QuestionType) String() string { return string(t) }

// SelectionMode tells whether a multiple choice question accepts one or many options.
type SelectionMode string

const (
	SelectionNone     SelectionMode = ""
	SelectionSingle   SelectionMode = "SINGLE"
	SelectionMultiple SelectionMode = "MULTIPLE"
)

// ParseSelectionMode accepts SINGLE, MULTIPLE or the empty string.
func ParseSelectionMode(s string) (SelectionMode, error) {
	m := SelectionMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case SelectionNone, SelectionSingle, SelectionMultiple:
		return m, nil
	}
	return "", fmt.Errorf("unknown selection mode %q", s)
}

// DeriveSelectionMode resolves the selection mode of a question. An explicit
// mode wins; otherwise a multiple choice answer key beginning with '[' means
// several options are correct. Non multiple choice types have no mode.
func DeriveSelectionMode(t QuestionType, explicit SelectionMode, correct *string) SelectionMode {
	if t != MultipleChoice {
		return SelectionNone
	}
	if explicit != SelectionNone {
		return explicit
	}
	if correct != nil && strings.HasPrefix(strings.TrimSpace(*correct), "[") {
		return SelectionMultiple
	}
	return SelectionSingle
}
