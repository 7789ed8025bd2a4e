package worker

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/analysis"
	"github.com/yufurikuto/EduExam/internal/model"
)

func TestUniqueExamIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := UniqueExamIDs([]string{a.String(), "garbage", b.String(), a.String(), ""})
	if want := []uuid.UUID{a, b}; !reflect.DeepEqual(got, want) {
		t.Fatalf("UniqueExamIDs = %v, want %v", got, want)
	}
}

type recordingRefresher struct {
	calls []uuid.UUID
	fail  uuid.UUID
}

func (r *recordingRefresher) Refresh(_ context.Context, id uuid.UUID) (*analysis.Report, error) {
	r.calls = append(r.calls, id)
	if id == r.fail {
		return nil, errors.New("boom")
	}
	return &analysis.Report{}, nil
}

func TestAnalysisWorker_FlushRefreshesEachExamOnce(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ref := &recordingRefresher{fail: a}
	w := NewAnalysisWorker(ref, nil, zerolog.Nop())

	w.flush(context.Background(), []string{a.String(), b.String(), a.String(), b.String()})

	if want := []uuid.UUID{a, b}; !reflect.DeepEqual(ref.calls, want) {
		t.Fatalf("refreshed %v, want %v", ref.calls, want)
	}
}

type fakeDraftStore struct {
	batchErr error
	batches  [][]model.AnswerDraft
	singles  []model.AnswerDraft
}

func (f *fakeDraftStore) UpsertBatch(_ context.Context, drafts []model.AnswerDraft) error {
	f.batches = append(f.batches, append([]model.AnswerDraft(nil), drafts...))
	return f.batchErr
}

func (f *fakeDraftStore) Upsert(_ context.Context, d model.AnswerDraft) error {
	f.singles = append(f.singles, d)
	return nil
}

func TestAutosaveWorker_FlushFallsBackToSingleUpserts(t *testing.T) {
	drafts := []model.AnswerDraft{
		{ExamID: uuid.New(), DraftID: uuid.New(), QuestionID: uuid.New(), Answer: "a"},
		{ExamID: uuid.New(), DraftID: uuid.New(), QuestionID: uuid.New(), Answer: "b"},
	}

	ok := &fakeDraftStore{}
	NewAutosaveWorker(ok, nil, zerolog.Nop()).flushSafe(context.Background(), drafts)
	if len(ok.batches) != 1 || len(ok.singles) != 0 {
		t.Fatalf("healthy store: batches=%d singles=%d", len(ok.batches), len(ok.singles))
	}

	failing := &fakeDraftStore{batchErr: errors.New("deadlock")}
	NewAutosaveWorker(failing, nil, zerolog.Nop()).flushSafe(context.Background(), drafts)
	if len(failing.singles) != 2 {
		t.Fatalf("fallback upserts = %d, want 2", len(failing.singles))
	}

	empty := &fakeDraftStore{}
	NewAutosaveWorker(empty, nil, zerolog.Nop()).flushSafe(context.Background(), nil)
	if len(empty.batches) != 0 {
		t.Fatal("empty batch must not hit the store")
	}
}

func TestDecodeDraft(t *testing.T) {
	want := model.AnswerDraft{ExamID: uuid.New(), DraftID: uuid.New(), QuestionID: uuid.New(), Answer: `["1","2"]`}
	raw := `{"exam_id":"` + want.ExamID.String() + `","draft_id":"` + want.DraftID.String() +
		`","question_id":"` + want.QuestionID.String() + `","answer":"[\"1\",\"2\"]","updated_at":"0001-01-01T00:00:00Z"}`

	got, err := decodeDraft(raw)
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("decodeDraft = %+v, %v", got, err)
	}
	if _, err := decodeDraft("{"); err == nil {
		t.Fatal("malformed payload decoded")
	}
}
