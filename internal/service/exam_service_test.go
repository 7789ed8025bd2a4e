package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/model"
)

func TestExamService_CreateChecksSubjectOwner(t *testing.T) {
	ctx := context.Background()
	subjects := newFakeSubjects()
	sub := &model.Subject{TeacherID: "teacher_b", Name: "History"}
	if err := subjects.Create(ctx, sub); err != nil {
		t.Fatal(err)
	}
	svc := NewExamService(newFakeExams(), newFakeQuestions(), subjects, newFakeCache(), testConfig(), nopLog)

	if _, err := svc.Create(ctx, "teacher_a", model.CreateExamRequest{Title: "x", SubjectID: &sub.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	exam, err := svc.Create(ctx, "teacher_a", model.CreateExamRequest{Title: "Quiz", ClassName: ptr("")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if exam.ClassName != nil {
		t.Fatalf("empty class name should be stored as none, got %q", *exam.ClassName)
	}
}

func TestExamService_UpdateAppliesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExams()
	cache := newFakeCache()
	exam := exams.add(model.Exam{TeacherID: "teacher_a", Title: "Quiz", TimeLimit: ptr(30), IsShuffle: true})
	svc := NewExamService(exams, newFakeQuestions(), newFakeSubjects(), cache, testConfig(), nopLog)

	paperKey := config.CacheKey.StudentPaperKey(exam.ID.String())
	cache.Set(ctx, paperKey, "stale", 0)

	got, err := svc.Update(ctx, exam.ID, "teacher_a", model.UpdateExamRequest{PassingScore: ptr(60)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Quiz" || got.TimeLimit == nil || *got.TimeLimit != 30 || !got.IsShuffle || *got.PassingScore != 60 {
		t.Fatalf("updated = %+v", got)
	}
	if cache.has(paperKey) {
		t.Fatal("paper cache not invalidated")
	}

	if _, err := svc.Update(ctx, exam.ID, "teacher_b", model.UpdateExamRequest{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update err = %v", err)
	}
}

func TestExamService_StudentPaperHidesKeys(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExams()
	questions := newFakeQuestions()
	exam := exams.add(model.Exam{TeacherID: "teacher_a", Title: "Quiz"})
	questions.byExam[exam.ID] = []model.Question{
		{ID: uuid.New(), Text: "pick", Type: answer.MultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: ptr(`["1","2"]`), Score: 4},
		{ID: uuid.New(), Text: "Apple is {red}.", Type: answer.FillInTheBlank, Score: 3},
		{ID: uuid.New(), Text: "match", Type: answer.Matching, Score: 2, Options: []string{
			answer.EncodePair(answer.Pair{Left: "cat", Right: "neko"}),
			answer.EncodePair(answer.Pair{Left: "dog", Right: "inu"}),
		}},
		{ID: uuid.New(), Text: "order", Type: answer.Ordering, Options: []string{"1", "2", "3"}, Score: 1},
	}
	svc := NewExamService(exams, questions, newFakeSubjects(), newFakeCache(), testConfig(), nopLog)

	paper, err := svc.GetStudentPaper(ctx, exam.ID)
	if err != nil {
		t.Fatalf("GetStudentPaper: %v", err)
	}
	if paper.TotalScore != 10 || len(paper.Questions) != 4 {
		t.Fatalf("paper = %+v", paper)
	}

	mc, blank, match, order := paper.Questions[0], paper.Questions[1], paper.Questions[2], paper.Questions[3]
	if mc.SelectionMode != answer.SelectionMultiple {
		t.Fatalf("selection mode = %q", mc.SelectionMode)
	}
	if blank.Text != "Apple is {1}." || blank.BlankCount != 1 {
		t.Fatalf("blank = %+v", blank)
	}
	if len(match.Options) != 0 || len(match.MatchLeft) != 2 || len(match.MatchRight) != 2 {
		t.Fatalf("match = %+v", match)
	}
	for _, r := range match.MatchRight {
		want := []string{"neko", "inu"}[r.Index]
		if r.Text != want {
			t.Fatalf("right item %d = %q, want %q", r.Index, r.Text, want)
		}
	}
	sorted := append([]string(nil), order.Options...)
	sort.Strings(sorted)
	if len(sorted) != 3 || sorted[0] != "1" || sorted[2] != "3" {
		t.Fatalf("ordering options = %v", order.Options)
	}

	// Served from cache the second time.
	before := questions.lists
	if _, err := svc.GetStudentPaper(ctx, exam.ID); err != nil {
		t.Fatal(err)
	}
	if questions.lists != before {
		t.Fatal("second read should come from the cache")
	}
}

func TestExamService_StudentPaperMissingExam(t *testing.T) {
	svc := NewExamService(newFakeExams(), newFakeQuestions(), newFakeSubjects(), newFakeCache(), testConfig(), nopLog)
	if _, err := svc.GetStudentPaper(context.Background(), uuid.New()); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}
