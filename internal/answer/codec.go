package answer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ─── Multiple choice ───────────────────────────────────────────────

// ChoiceSet is a multi-select answer: 1-based option indices kept sorted.
type ChoiceSet []string

// NewChoiceSet returns a sorted copy of the given indices.
func NewChoiceSet(indices ...string) ChoiceSet {
	set := make(ChoiceSet, len(indices))
	copy(set, indices)
	sort.Strings(set)
	return set
}

// Equal reports whether both sets hold the same indices in the same order.
func (s ChoiceSet) Equal(other ChoiceSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// EncodeChoiceSet renders the set as a JSON string array, e.g. ["1","3"].
func EncodeChoiceSet(s ChoiceSet) string {
	sorted := NewChoiceSet(s...)
	b, _ := json.Marshal([]string(sorted))
	return string(b)
}

// DecodeChoiceSet parses a JSON array of option indices and returns it
// sorted. Elements are stringified like single-select values, so [1,3] and
// ["3","1"] decode to the same set. Nested arrays and objects are rejected.
func DecodeChoiceSet(raw string) (ChoiceSet, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()
	var values []any
	if err := dec.Decode(&values); err != nil || dec.More() {
		return nil, fmt.Errorf("%w: choice set is not a JSON array", ErrMalformedEncoding)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: choice set is null", ErrMalformedEncoding)
	}

	set := make([]string, 0, len(values))
	for i, v := range values {
		s, ok := scalarString(v)
		if !ok {
			return nil, fmt.Errorf("%w: choice set element %d is not a scalar", ErrMalformedEncoding, i)
		}
		set = append(set, s)
	}
	return NewChoiceSet(set...), nil
}

// DecodeChoiceScalar normalises a single-select value. JSON scalars are
// stringified so 2 and "2" decode to the same value; text that is not JSON
// is taken as is. Arrays and objects are rejected.
func DecodeChoiceScalar(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty choice", ErrMalformedEncoding)
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return trimmed, nil
	}
	s, ok := scalarString(v)
	if !ok {
		return "", fmt.Errorf("%w: choice is not a scalar", ErrMalformedEncoding)
	}
	return s, nil
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case nil:
		return "null", true
	}
	return "", false
}

// ─── Ordering ──────────────────────────────────────────────────────

// OrderedList is an ordering answer. The correct order of an ordering
// question is its options sequence as authored.
type OrderedList []string

// EncodeOrdering joins the items with commas, the format the exam page submits.
func EncodeOrdering(items OrderedList) string {
	return strings.Join(items, ",")
}

// DecodeOrdering splits a comma-joined ordering answer.
func DecodeOrdering(raw string) OrderedList {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// ─── Matching ──────────────────────────────────────────────────────

// Pair is one authored matching option. Left i is correctly matched with right i.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// EncodePair serialises a matching option the way it is stored in options.
func EncodePair(p Pair) string {
	b, _ := json.Marshal(p)
	return string(b)
}

// DecodePairs parses stored matching options. Each option is a JSON object
// with left and right keys.
func DecodePairs(options []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(options))
	for i, opt := range options {
		var p Pair
		if err := json.Unmarshal([]byte(opt), &p); err != nil {
			return nil, fmt.Errorf("%w: matching option %d: %v", ErrMalformedEncoding, i, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// IndexPair links a left item to a right item by their authored indices.
type IndexPair struct {
	Left  int
	Right int
}

// MatchSet is a matching answer ordered by left index.
type MatchSet []IndexPair

// IdentityMatching is the correct answer for n authored pairs.
func IdentityMatching(n int) MatchSet {
	set := make(MatchSet, n)
	for i := range set {
		set[i] = IndexPair{Left: i, Right: i}
	}
	return set
}

// EncodeMatching renders the set as "l:r,l:r" sorted by left index.
func EncodeMatching(set MatchSet) string {
	sorted := make(MatchSet, len(set))
	copy(sorted, set)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Left < sorted[j].Left })

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p.Left) + ":" + strconv.Itoa(p.Right)
	}
	return strings.Join(parts, ",")
}

// DecodeMatching parses "l:r,l:r". Duplicate left indices are rejected.
func DecodeMatching(raw string) (MatchSet, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty matching", ErrMalformedEncoding)
	}

	seen := make(map[int]struct{})
	var set MatchSet
	for _, part := range strings.Split(trimmed, ",") {
		l, r, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("%w: matching pair %q", ErrMalformedEncoding, part)
		}
		left, err := strconv.Atoi(strings.TrimSpace(l))
		if err != nil || left < 0 {
			return nil, fmt.Errorf("%w: matching left %q", ErrMalformedEncoding, l)
		}
		right, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil || right < 0 {
			return nil, fmt.Errorf("%w: matching right %q", ErrMalformedEncoding, r)
		}
		if _, dup := seen[left]; dup {
			return nil, fmt.Errorf("%w: left %d matched twice", ErrMalformedEncoding, left)
		}
		seen[left] = struct{}{}
		set = append(set, IndexPair{Left: left, Right: right})
	}

	sort.Slice(set, func(i, j int) bool { return set[i].Left < set[j].Left })
	return set, nil
}

// ─── Fill in the blank ─────────────────────────────────────────────

// Blanks maps a 0-based blank index to the text typed into it.
type Blanks map[int]string

// EncodeBlanks renders the answers as a JSON object with keys in index order.
func EncodeBlanks(b Blanks) string {
	keys := make([]int, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(strconv.Itoa(k))
		val, _ := json.Marshal(b[k])
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.String()
}

// DecodeBlanks parses a JSON object of blank index to answer.
func DecodeBlanks(raw string) (Blanks, error) {
	var m map[string]string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &m); err != nil {
		return nil, fmt.Errorf("%w: blanks: %v", ErrMalformedEncoding, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: blanks are null", ErrMalformedEncoding)
	}

	b := make(Blanks, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: blank index %q", ErrMalformedEncoding, k)
		}
		b[idx] = v
	}
	return b, nil
}
