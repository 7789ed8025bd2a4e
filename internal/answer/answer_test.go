package answer

import (
	"errors"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestParseQuestionType(t *testing.T) {
	for _, qt := range QuestionTypes {
		got, err := ParseQuestionType(string(qt))
		if err != nil || got != qt {
			t.Fatalf("ParseQuestionType(%q) = %q, %v", qt, got, err)
		}
	}

	for _, bad := range []string{"", "ESSAY", "multiple_choice"} {
		if _, err := ParseQuestionType(bad); !errors.Is(err, ErrUnknownQuestionType) {
			t.Fatalf("ParseQuestionType(%q) err = %v, want ErrUnknownQuestionType", bad, err)
		}
	}
}

func TestDeriveSelectionMode(t *testing.T) {
	tests := []struct {
		name     string
		qt       QuestionType
		explicit SelectionMode
		correct  *string
		want     SelectionMode
	}{
		{name: "bracket prefix is multiple", qt: MultipleChoice, correct: strPtr(`["1","3"]`), want: SelectionMultiple},
		{name: "scalar is single", qt: MultipleChoice, correct: strPtr("2"), want: SelectionSingle},
		{name: "nil key is single", qt: MultipleChoice, want: SelectionSingle},
		{name: "explicit wins", qt: MultipleChoice, explicit: SelectionMultiple, correct: strPtr("2"), want: SelectionMultiple},
		{name: "other types have no mode", qt: Text, explicit: SelectionMultiple, correct: strPtr("[x]"), want: SelectionNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveSelectionMode(tc.qt, tc.explicit, tc.correct); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestChoiceSet(t *testing.T) {
	set, err := DecodeChoiceSet(`["3","1"]`)
	if err != nil {
		t.Fatalf("DecodeChoiceSet: %v", err)
	}
	if !set.Equal(NewChoiceSet("1", "3")) {
		t.Fatalf("set = %v, want sorted [1 3]", set)
	}
	if got := EncodeChoiceSet(ChoiceSet{"3", "1"}); got != `["1","3"]` {
		t.Fatalf("EncodeChoiceSet = %s", got)
	}

	mixed, err := DecodeChoiceSet(`[3, "1", 2.0]`)
	if err != nil || !mixed.Equal(NewChoiceSet("1", "2", "3")) {
		t.Fatalf("numeric set = %v, %v", mixed, err)
	}

	for _, bad := range []string{`null`, `"1"`, `[[1]]`, `[{"a":1}]`, `[1] [2]`, `[`, ``} {
		if _, err := DecodeChoiceSet(bad); !errors.Is(err, ErrMalformedEncoding) {
			t.Fatalf("DecodeChoiceSet(%q) err = %v, want ErrMalformedEncoding", bad, err)
		}
	}
}

func TestDecodeChoiceScalar(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "2", want: "2"},
		{raw: `"2"`, want: "2"},
		{raw: " 2 ", want: "2"},
		{raw: "2.0", want: "2"},
		{raw: "B", want: "B"},
		{raw: "true", want: "true"},
		{raw: `["2"]`, wantErr: true},
		{raw: `{"a":1}`, wantErr: true},
		{raw: "  ", wantErr: true},
	}

	for _, tc := range tests {
		got, err := DecodeChoiceScalar(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("DecodeChoiceScalar(%q) = %q, want error", tc.raw, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("DecodeChoiceScalar(%q) = %q, %v; want %q", tc.raw, got, err, tc.want)
		}
	}
}

func TestOrdering(t *testing.T) {
	items := OrderedList{"Apple", "Orange", "Banana"}
	encoded := EncodeOrdering(items)
	if encoded != "Apple,Orange,Banana" {
		t.Fatalf("EncodeOrdering = %q", encoded)
	}
	if got := DecodeOrdering(encoded); !reflect.DeepEqual(got, items) {
		t.Fatalf("DecodeOrdering = %v", got)
	}
	if got := DecodeOrdering(" "); got != nil {
		t.Fatalf("DecodeOrdering(blank) = %v, want nil", got)
	}
}

func TestMatching(t *testing.T) {
	set, err := DecodeMatching("2:2, 0:1,1:0")
	if err != nil {
		t.Fatalf("DecodeMatching: %v", err)
	}
	want := MatchSet{{0, 1}, {1, 0}, {2, 2}}
	if !reflect.DeepEqual(set, want) {
		t.Fatalf("DecodeMatching = %v, want %v", set, want)
	}
	if got := EncodeMatching(set); got != "0:1,1:0,2:2" {
		t.Fatalf("EncodeMatching = %q", got)
	}
	if got := EncodeMatching(IdentityMatching(3)); got != "0:0,1:1,2:2" {
		t.Fatalf("IdentityMatching = %q", got)
	}

	for _, bad := range []string{"", "0-1", "a:1", "0:1,0:2", "-1:0"} {
		if _, err := DecodeMatching(bad); !errors.Is(err, ErrMalformedEncoding) {
			t.Fatalf("DecodeMatching(%q) err = %v, want ErrMalformedEncoding", bad, err)
		}
	}
}

func TestDecodePairs(t *testing.T) {
	opts := []string{EncodePair(Pair{Left: "犬", Right: "dog"}), `{"left":"猫","right":"cat"}`}
	pairs, err := DecodePairs(opts)
	if err != nil {
		t.Fatalf("DecodePairs: %v", err)
	}
	if pairs[0] != (Pair{Left: "犬", Right: "dog"}) || pairs[1].Right != "cat" {
		t.Fatalf("pairs = %+v", pairs)
	}
	if _, err := DecodePairs([]string{"not json"}); !errors.Is(err, ErrMalformedEncoding) {
		t.Fatalf("err = %v, want ErrMalformedEncoding", err)
	}
}

func TestBlanks(t *testing.T) {
	b, err := DecodeBlanks(`{"1":"blue","0":"red"}`)
	if err != nil {
		t.Fatalf("DecodeBlanks: %v", err)
	}
	if b[0] != "red" || b[1] != "blue" {
		t.Fatalf("blanks = %v", b)
	}
	if got := EncodeBlanks(b); got != `{"0":"red","1":"blue"}` {
		t.Fatalf("EncodeBlanks = %s", got)
	}
	for _, bad := range []string{`null`, `{"x":"a"}`, `["a"]`, `{"0":1}`} {
		if _, err := DecodeBlanks(bad); !errors.Is(err, ErrMalformedEncoding) {
			t.Fatalf("DecodeBlanks(%q) err = %v, want ErrMalformedEncoding", bad, err)
		}
	}
}

func TestParseBlanks(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{text: "Apple is {red} and sky is { blue }.", want: []string{"red", "blue"}},
		{text: "りんごは｛赤｝い", want: []string{"赤"}},
		{text: "no blanks {} here", want: []string{}},
	}

	for _, tc := range tests {
		if got := ParseBlanks(tc.text); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseBlanks(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}

	if got := NormalizeBrackets("｛赤｝カタカナ"); got != "{赤}カタカナ" {
		t.Fatalf("NormalizeBrackets = %q", got)
	}
}

func TestCanonicalCorrectAnswer(t *testing.T) {
	got, err := CanonicalCorrectAnswer(MultipleChoice, SelectionMultiple, strPtr(`["3", "1"]`))
	if err != nil || *got != `["1","3"]` {
		t.Fatalf("multi = %v, %v", got, err)
	}

	got, err = CanonicalCorrectAnswer(MultipleChoice, SelectionSingle, strPtr(" 2 "))
	if err != nil || *got != "2" {
		t.Fatalf("single = %v, %v", got, err)
	}

	if _, err := CanonicalCorrectAnswer(MultipleChoice, SelectionSingle, strPtr(`["1"]`)); !errors.Is(err, ErrSelectionMismatch) {
		t.Fatalf("err = %v, want ErrSelectionMismatch", err)
	}

	got, err = CanonicalCorrectAnswer(MultipleChoice, SelectionMultiple, strPtr("[1,3]"))
	if err != nil || *got != `["1","3"]` {
		t.Fatalf("numeric multi = %v, %v", got, err)
	}

	for _, bad := range []string{"[broken", "2"} {
		if _, err := CanonicalCorrectAnswer(MultipleChoice, SelectionMultiple, strPtr(bad)); !errors.Is(err, ErrChoiceSetRequired) {
			t.Fatalf("multi key %q err = %v, want ErrChoiceSetRequired", bad, err)
		}
	}

	if got, _ := CanonicalCorrectAnswer(Text, SelectionNone, nil); got != nil {
		t.Fatalf("nil key = %v", *got)
	}
}

func TestFormatCorrectAnswer(t *testing.T) {
	opts := []string{"Tokyo", "Osaka", "Kyoto"}
	tests := []struct {
		name    string
		qt      QuestionType
		text    string
		options []string
		correct *string
		want    string
	}{
		{name: "single choice", qt: MultipleChoice, options: opts, correct: strPtr("2"), want: "Osaka"},
		{name: "multi choice", qt: MultipleChoice, options: opts, correct: strPtr(`["1","3"]`), want: "Tokyo, Kyoto"},
		{name: "out of range", qt: MultipleChoice, options: opts, correct: strPtr("9"), want: "Option 9"},
		{name: "true", qt: TrueFalse, correct: strPtr("true"), want: "○ (True)"},
		{name: "false", qt: TrueFalse, correct: strPtr("false"), want: "× (False)"},
		{name: "ordering", qt: Ordering, options: []string{"a", "b"}, want: "1. a\n2. b"},
		{name: "matching", qt: Matching, options: []string{`{"left":"A","right":"B"}`}, want: "A ↔ B"},
		{name: "blanks", qt: FillInTheBlank, text: "Apple is {red}, sky is ｛blue｝", want: "red, blue"},
		{name: "text", qt: Text, correct: strPtr("answer"), want: "answer"},
		{name: "text without key", qt: Text, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCorrectAnswer(tc.qt, tc.text, tc.options, tc.correct); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMaskBlanks(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Apple is {red} and sky is {blue}.", want: "Apple is {1} and sky is {2}."},
		{text: "full width ｛赤｝", want: "full width {1}"},
		{text: "no blanks", want: "no blanks"},
	}
	for _, tc := range tests {
		if got := MaskBlanks(tc.text); got != tc.want {
			t.Fatalf("MaskBlanks(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
