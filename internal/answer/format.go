package answer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrSelectionMismatch = errors.New("single choice answer must not be a list")
	ErrChoiceSetRequired = errors.New("multiple choice answer must be a list of options")
)

// CanonicalCorrectAnswer normalises an answer key when a question is saved.
// Multi-select keys are re-encoded sorted; a single-select key that looks
// like a list is rejected because the leading '[' is what marks multi-select,
// and a multi-select key that is not a list could never be matched.
func CanonicalCorrectAnswer(t QuestionType, mode SelectionMode, correct *string) (*string, error) {
	if correct == nil {
		return nil, nil
	}
	if t != MultipleChoice {
		v := *correct
		return &v, nil
	}

	switch mode {
	case SelectionMultiple:
		set, err := DecodeChoiceSet(*correct)
		if err != nil {
			return nil, ErrChoiceSetRequired
		}
		v := EncodeChoiceSet(set)
		return &v, nil
	default:
		v := strings.TrimSpace(*correct)
		if strings.HasPrefix(v, "[") {
			return nil, ErrSelectionMismatch
		}
		return &v, nil
	}
}

// FormatCorrectAnswer renders an answer key for teachers reviewing a result.
func FormatCorrectAnswer(t QuestionType, text string, options []string, correct *string) string {
	switch t {
	case MultipleChoice:
		if correct == nil {
			return ""
		}
		var indices []string
		if set, err := DecodeChoiceSet(*correct); err == nil {
			indices = set
		} else if v, err := DecodeChoiceScalar(*correct); err == nil {
			indices = []string{v}
		} else {
			indices = []string{*correct}
		}
		labels := make([]string, len(indices))
		for i, idx := range indices {
			labels[i] = optionLabel(options, idx)
		}
		return strings.Join(labels, ", ")

	case TrueFalse:
		if correct != nil && *correct == "true" {
			return "○ (True)"
		}
		return "× (False)"

	case Ordering:
		lines := make([]string, len(options))
		for i, opt := range options {
			lines[i] = fmt.Sprintf("%d. %s", i+1, opt)
		}
		return strings.Join(lines, "\n")

	case Matching:
		pairs, err := DecodePairs(options)
		if err != nil {
			return ""
		}
		lines := make([]string, len(pairs))
		for i, p := range pairs {
			lines[i] = p.Left + " ↔ " + p.Right
		}
		return strings.Join(lines, "\n")

	case FillInTheBlank:
		if tokens := ParseBlanks(text); len(tokens) > 0 {
			return strings.Join(tokens, ", ")
		}
		if correct != nil {
			return *correct
		}
		return ""

	case Text:
		if correct != nil {
			return *correct
		}
		return ""
	}
	return ""
}

func optionLabel(options []string, idx string) string {
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err == nil && n >= 1 && n <= len(options) && options[n-1] != "" {
		return options[n-1]
	}
	return "Option " + idx
}
