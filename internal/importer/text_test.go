package importer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yufurikuto/EduExam/internal/answer"
)

func TestParseText(t *testing.T) {
	input := `
1. orphan option

What is the capital of Japan?
  A. Osaka
*B) Tokyo
C. Kyoto

Pick a fruit
- Apple
*• Banana
`
	got, err := ParseText(input)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parsed %d questions, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Text != "What is the capital of Japan?" || first.Type != answer.MultipleChoice || first.Score != DefaultScore {
		t.Fatalf("first = %+v", first)
	}
	if !reflect.DeepEqual(first.Options, []string{"Osaka", "Tokyo", "Kyoto"}) {
		t.Fatalf("first options = %q", first.Options)
	}
	if first.CorrectAnswer == nil || *first.CorrectAnswer != "2" {
		t.Fatalf("first correct = %v, want 2", first.CorrectAnswer)
	}

	second := got[1]
	if !reflect.DeepEqual(second.Options, []string{"Apple", "Banana"}) {
		t.Fatalf("second options = %q", second.Options)
	}
	if second.CorrectAnswer == nil || *second.CorrectAnswer != "2" {
		t.Fatalf("second correct = %v, want 2", second.CorrectAnswer)
	}
}

func TestParseText_EdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Question
	}{
		{name: "empty", input: "  \n\n", want: []Question{}},
		{
			name:  "question without options or key",
			input: "Explain photosynthesis",
			want:  []Question{{Text: "Explain photosynthesis", Type: answer.MultipleChoice, Options: []string{}, Score: DefaultScore}},
		},
		{
			name:  "option letter outside A-D starts a question",
			input: "Q1\nE. not an option",
			want: []Question{
				{Text: "Q1", Type: answer.MultipleChoice, Options: []string{}, Score: DefaultScore},
				{Text: "E. not an option", Type: answer.MultipleChoice, Options: []string{}, Score: DefaultScore},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseText(tc.input)
			if err != nil || !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %+v, %v, want %+v", got, err, tc.want)
			}
		})
	}
}

func TestParseText_LastMarkedOptionWins(t *testing.T) {
	got, _ := ParseText("Q\n*1. a\n*2. b\n3. c")
	if len(got) != 1 || got[0].CorrectAnswer == nil || *got[0].CorrectAnswer != "2" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseText_LineTooLong(t *testing.T) {
	input := "Q\n" + strings.Repeat("x", maxLineSize+1) + "\n*1. a"
	got, err := ParseText(input)
	if !errors.Is(err, ErrLineTooLong) || got != nil {
		t.Fatalf("got %+v, %v, want ErrLineTooLong", got, err)
	}
}
