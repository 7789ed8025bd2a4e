// Package importer turns pasted plain text into multiple choice question drafts.
//
// The accepted layout is one question line followed by its option lines:
//
//	What is the capital of Japan?
//	1. Osaka
//	*2. Tokyo
//	3. Kyoto
//
// A leading '*' marks the correct option.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yufurikuto/EduExam/internal/answer"
)

// DefaultScore is the score given to every imported question.
const DefaultScore = 10

const maxLineSize = 1024 * 1024

var (
	optionLine   = regexp.MustCompile(`^\*?(?:[A-D1-5][.)]|[-•])\s+`)
	optionPrefix = regexp.MustCompile(`^[*\-•A-D1-5.)]+\s+`)
)

// Question is a parsed but unsaved question.
type Question struct {
	Text          string
	Type          answer.QuestionType
	Options       []string
	CorrectAnswer *string
	Score         int
}

// ErrLineTooLong is returned when a single line exceeds the scanner buffer.
var ErrLineTooLong = errors.New("import line is too long")

// ParseText reads questions from text. Blank lines are ignored and option
// lines that appear before any question are dropped.
func ParseText(text string) ([]Question, error) {
	questions := []Question{}
	var current *Question

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if optionLine.MatchString(line) {
			if current == nil {
				continue
			}
			current.Options = append(current.Options, strings.TrimSpace(optionPrefix.ReplaceAllString(line, "")))
			if strings.HasPrefix(line, "*") {
				idx := strconv.Itoa(len(current.Options))
				current.CorrectAnswer = &idx
			}
			continue
		}

		if current != nil {
			questions = append(questions, *current)
		}
		current = &Question{
			Text:    line,
			Type:    answer.MultipleChoice,
			Options: []string{},
			Score:   DefaultScore,
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrLineTooLong
		}
		return nil, fmt.Errorf("scan import text: %w", err)
	}

	if current != nil {
		questions = append(questions, *current)
	}
	return questions, nil
}
