package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/grading"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/repository"
)

var nopLog = zerolog.Nop()

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		PaperCacheTTL:    time.Minute,
		AnalysisCacheTTL: time.Minute,
		DraftTTL:         time.Hour,
	}
}

func ptr[T any](v T) *T { return &v }

// ─── Cache ──────────────────────────────────────────────────────────

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	hashes map[string]map[string]string
	lists  map[string][]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: map[string]string{},
		hashes: map[string]map[string]string{},
		lists:  map[string][]string{},
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = stringify(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			n++
		}
		if _, ok := f.hashes[k]; ok {
			n++
		}
		delete(f.values, k)
		delete(f.hashes, k)
		delete(f.lists, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeCache) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeCache) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[stringify(values[i])] = stringify(values[i+1])
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeCache) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeCache) Expire(_ context.Context, key string, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.hashes[key]
	return redis.NewBoolResult(ok, nil)
}

func (f *fakeCache) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.lists[key] = append(f.lists[key], stringify(v))
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok
}

func (f *fakeCache) list(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...)
}

// ─── Repositories ───────────────────────────────────────────────────

type fakeSubjects struct {
	byID map[uuid.UUID]*model.Subject
}

func newFakeSubjects() *fakeSubjects { return &fakeSubjects{byID: map[uuid.UUID]*model.Subject{}} }

func (f *fakeSubjects) Create(_ context.Context, s *model.Subject) error {
	for _, existing := range f.byID {
		if existing.TeacherID == s.TeacherID && existing.Name == s.Name {
			return repository.ErrDuplicateSubject
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSubjects) ListByTeacher(_ context.Context, teacherID string) ([]model.Subject, error) {
	out := []model.Subject{}
	for _, s := range f.byID {
		if s.TeacherID == teacherID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSubjects) GetByID(_ context.Context, id uuid.UUID) (*model.Subject, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubjects) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeExams struct {
	byID map[uuid.UUID]*model.Exam
}

func newFakeExams() *fakeExams { return &fakeExams{byID: map[uuid.UUID]*model.Exam{}} }

func (f *fakeExams) add(e model.Exam) *model.Exam {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.byID[e.ID] = &e
	return &e
}

func (f *fakeExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExams) ListByTeacher(_ context.Context, teacherID string, subjectID *uuid.UUID) ([]model.Exam, error) {
	out := []model.Exam{}
	for _, e := range f.byID {
		if e.TeacherID != teacherID {
			continue
		}
		if subjectID != nil && (e.SubjectID == nil || *e.SubjectID != *subjectID) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeExams) Create(_ context.Context, e *model.Exam) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExams) Update(_ context.Context, e *model.Exam) error {
	if _, ok := f.byID[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	e.UpdatedAt = time.Now()
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExams) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeQuestions struct {
	byExam map[uuid.UUID][]model.Question
	lists  int
}

func newFakeQuestions() *fakeQuestions { return &fakeQuestions{byExam: map[uuid.UUID][]model.Question{}} }

func (f *fakeQuestions) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	f.lists++
	return append([]model.Question{}, f.byExam[examID]...), nil
}

func (f *fakeQuestions) ReplaceAll(_ context.Context, examID uuid.UUID, questions []model.Question) error {
	for i := range questions {
		questions[i].ExamID = examID
		questions[i].Position = i
		if questions[i].ID == uuid.Nil {
			questions[i].ID = uuid.New()
		}
	}
	f.byExam[examID] = append([]model.Question{}, questions...)
	return nil
}

type fakeResults struct {
	byID  map[uuid.UUID]*model.ExamResult
	order []uuid.UUID
}

func newFakeResults() *fakeResults { return &fakeResults{byID: map[uuid.UUID]*model.ExamResult{}} }

func (f *fakeResults) Create(_ context.Context, res *model.ExamResult) error {
	res.ID = uuid.New()
	res.SubmittedAt = time.Now()
	for i := range res.Details {
		res.Details[i].ID = uuid.New()
		res.Details[i].ExamResultID = res.ID
	}
	cp := *res
	cp.Details = append([]model.AnswerDetail{}, res.Details...)
	f.byID[res.ID] = &cp
	f.order = append(f.order, res.ID)
	return nil
}

func (f *fakeResults) ListByExam(_ context.Context, examID uuid.UUID, filter repository.ResultFilter) ([]model.ExamResult, int, error) {
	out := []model.ExamResult{}
	q := strings.ToLower(filter.Query)
	for _, id := range f.order {
		r := f.byID[id]
		if r.ExamID != examID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.StudentName+" "+r.StudentNumber+" "+r.StudentClass), q) {
			continue
		}
		cp := *r
		cp.Details = nil
		out = append(out, cp)
	}
	total := len(out)
	if filter.Limit > 0 {
		start := min(filter.Offset, total)
		out = out[start:min(start+filter.Limit, total)]
	}
	return out, total, nil
}

func (f *fakeResults) ListWithDetailsByExam(_ context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	out := []model.ExamResult{}
	for _, id := range f.order {
		if r := f.byID[id]; r.ExamID == examID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResults) GetByID(_ context.Context, id uuid.UUID) (*model.ExamResult, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	cp.Details = append([]model.AnswerDetail{}, r.Details...)
	return &cp, nil
}

func (f *fakeResults) OverrideDetail(_ context.Context, resultID, detailID uuid.UUID, score int, isCorrect bool, comment *string) (*model.ExamResult, error) {
	r, ok := f.byID[resultID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	found := false
	graded := make([]grading.Detail, len(r.Details))
	for i := range r.Details {
		d := &r.Details[i]
		if d.ID == detailID {
			d.Score, d.IsCorrect, d.IsManualGraded = score, isCorrect, true
			if comment != nil {
				d.TeacherComment = comment
			}
			found = true
		}
		graded[i] = grading.Detail{Score: d.Score}
	}
	if !found {
		return nil, pgx.ErrNoRows
	}
	r.Score = grading.RecomputeTotal(graded)
	return f.GetByID(context.Background(), resultID)
}

type fakeDrafts struct {
	saved   map[string]map[string]string
	deleted []string
}

func newFakeDrafts() *fakeDrafts { return &fakeDrafts{saved: map[string]map[string]string{}} }

func draftKey(examID, draftID uuid.UUID) string { return examID.String() + "/" + draftID.String() }

func (f *fakeDrafts) ListByDraft(_ context.Context, examID, draftID uuid.UUID) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range f.saved[draftKey(examID, draftID)] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeDrafts) DeleteByDraft(_ context.Context, examID, draftID uuid.UUID) error {
	k := draftKey(examID, draftID)
	delete(f.saved, k)
	f.deleted = append(f.deleted, k)
	return nil
}
