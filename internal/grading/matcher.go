// Package grading decides whether a student answer is correct and turns a set
// of answers into an awarded score. Everything here is pure: no clock, no I/O.
package grading

import (
	"strings"
	"unicode"

	"github.com/yufurikuto/EduExam/internal/answer"
)

// Question is the view of a question needed for grading.
type Question struct {
	ID            string
	Type          answer.QuestionType
	SelectionMode answer.SelectionMode
	Options       []string
	CorrectAnswer *string
	Score         int
}

// IsCorrect reports whether raw is a correct answer to q. It never panics:
// malformed keys or answers are simply not correct.
func IsCorrect(q Question, raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}

	switch q.Type {
	case answer.MultipleChoice:
		mode := answer.DeriveSelectionMode(q.Type, q.SelectionMode, q.CorrectAnswer)
		if mode == answer.SelectionMultiple {
			return matchChoiceSet(q.CorrectAnswer, raw)
		}
		return matchChoice(q.CorrectAnswer, raw)
	case answer.TrueFalse:
		return matchTrueFalse(q.CorrectAnswer, raw)
	case answer.Text:
		return matchText(q.CorrectAnswer, raw)
	case answer.Ordering:
		return matchOrdering(q.Options, raw)
	case answer.Matching:
		return matchPairs(q.Options, raw)
	case answer.FillInTheBlank:
		return matchBlanks(q.CorrectAnswer, raw)
	}
	return false
}

func matchChoiceSet(correct *string, raw string) bool {
	if correct == nil {
		return false
	}
	want, err := answer.DecodeChoiceSet(*correct)
	if err != nil {
		return false
	}
	got, err := answer.DecodeChoiceSet(raw)
	if err != nil {
		return false
	}
	return got.Equal(want)
}

func matchChoice(correct *string, raw string) bool {
	if correct == nil {
		return false
	}
	want, err := answer.DecodeChoiceScalar(*correct)
	if err != nil {
		return false
	}
	got, err := answer.DecodeChoiceScalar(raw)
	if err != nil {
		return false
	}
	return got == want
}

func matchTrueFalse(correct *string, raw string) bool {
	if correct == nil || (*correct != "true" && *correct != "false") {
		return false
	}
	return raw == *correct
}

func matchText(correct *string, raw string) bool {
	if correct == nil {
		return false
	}
	return trimText(raw) == trimText(*correct)
}

// trimText strips surrounding whitespace and byte order marks, which pasted
// answers often carry.
func trimText(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

// matchOrdering compares against the authored options sequence, which is the
// correct order. Best effort: an option containing a comma cannot round-trip.
func matchOrdering(options []string, raw string) bool {
	if len(options) == 0 {
		return false
	}
	return strings.TrimSpace(raw) == answer.EncodeOrdering(options)
}

func matchPairs(options []string, raw string) bool {
	if len(options) == 0 {
		return false
	}
	if _, err := answer.DecodePairs(options); err != nil {
		return false
	}
	got, err := answer.DecodeMatching(raw)
	if err != nil {
		return false
	}
	return answer.EncodeMatching(got) == answer.EncodeMatching(answer.IdentityMatching(len(options)))
}

// matchBlanks only grades when an explicit key was stored; blank questions
// are otherwise reviewed by hand.
func matchBlanks(correct *string, raw string) bool {
	if correct == nil {
		return false
	}
	want, err := answer.DecodeBlanks(*correct)
	if err != nil || len(want) == 0 {
		return false
	}
	got, err := answer.DecodeBlanks(raw)
	if err != nil {
		return false
	}
	return answer.EncodeBlanks(got) == answer.EncodeBlanks(want)
}
