package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/importer"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/response"
	"github.com/yufurikuto/EduExam/internal/service"
	"github.com/yufurikuto/EduExam/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

type fakePapers struct {
	papers map[uuid.UUID]*model.StudentPaper
}

func (f *fakePapers) GetStudentPaper(_ context.Context, id uuid.UUID) (*model.StudentPaper, error) {
	if p, ok := f.papers[id]; ok {
		return p, nil
	}
	return nil, service.ErrExamNotFound
}

type fakeSubmitter struct {
	mu        sync.Mutex
	saved     map[string]string
	submitted []model.SubmitExamRequest
	drafts    map[uuid.UUID]map[string]string
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{saved: map[string]string{}, drafts: map[uuid.UUID]map[string]string{}}
}

func (f *fakeSubmitter) Submit(_ context.Context, _ uuid.UUID, req model.SubmitExamRequest) (*model.SubmitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	res := &model.SubmitResponse{Score: len(req.Answers), TotalScore: 10, Preview: req.Preview}
	if !req.Preview {
		id := uuid.New()
		res.ResultID = &id
	}
	return res, nil
}

func (f *fakeSubmitter) Preview(ctx context.Context, examID uuid.UUID, answers map[string]string) (*model.SubmitResponse, error) {
	return f.Submit(ctx, examID, model.SubmitExamRequest{Answers: answers, Preview: true})
}

func (f *fakeSubmitter) Autosave(_ context.Context, _, _, questionID uuid.UUID, ans string) error {
	if len(ans) > 5 {
		return service.ErrAnswerTooLong
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[questionID.String()] = ans
	return nil
}

func (f *fakeSubmitter) LoadDraft(_ context.Context, _, draftID uuid.UUID) (map[string]string, error) {
	return f.drafts[draftID], nil
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
		{service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
		{fmt.Errorf("load: %w", service.ErrExamNotFound), http.StatusNotFound, response.ErrExamNotFound},
		{service.ErrResultNotFound, http.StatusNotFound, response.ErrNotFound},
		{service.ErrDetailNotFound, http.StatusNotFound, response.ErrNotFound},
		{service.ErrSubjectExists, http.StatusConflict, response.ErrSubjectExists},
		{service.ErrScoreExceedsMax, http.StatusBadRequest, response.ErrScoreExceedsMax},
		{service.ErrNegativeScore, http.StatusBadRequest, response.ErrValidation},
		{importer.ErrLineTooLong, http.StatusBadRequest, response.ErrValidation},
		{errors.New("connection refused"), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tc := range tests {
		status, code := statusFor(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("statusFor(%v) = %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestFailWithError_InvalidQuestion(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		failWithError(c, &service.InvalidQuestionError{Index: 2, Err: answer.ErrSelectionMismatch})
	})

	w := do(r, http.MethodGet, "/", "")
	env := decode(t, w)
	if w.Code != http.StatusBadRequest || env.Error.Code != response.ErrSelectionMismatch {
		t.Fatalf("got %d %+v", w.Code, env.Error)
	}
	if _, ok := env.Error.Fields["questions[2]"]; !ok {
		t.Fatalf("fields = %v, want questions[2]", env.Error.Fields)
	}
}

func TestQuestionErrCode(t *testing.T) {
	if got := questionErrCode(answer.ErrChoiceSetRequired); got != response.ErrSelectionMismatch {
		t.Fatalf("multi key without list = %s", got)
	}
	if got := questionErrCode(answer.ErrUnknownQuestionType); got != response.ErrUnknownQuestionType {
		t.Fatalf("unknown type = %s", got)
	}
	if got := questionErrCode(service.ErrInvalidScore); got != response.ErrValidation {
		t.Fatalf("invalid score = %s", got)
	}
}

func TestQuestionHandler_SaveValidation(t *testing.T) {
	h := NewQuestionHandler(nil)
	r := gin.New()
	r.PUT("/exams/:exam_id/questions", h.SaveQuestions)

	w := do(r, http.MethodPut, "/exams/"+uuid.NewString()+"/questions",
		`{"questions":[{"text":"ok","type":"MULTIPLE_CHOICE","score":1},{"text":"x","type":"ESSAY","score":1}]}`)
	env := decode(t, w)
	if w.Code != http.StatusBadRequest || env.Error.Code != response.ErrValidation {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if _, ok := env.Error.Fields["questions[1].type"]; !ok {
		t.Fatalf("fields = %v, want questions[1].type", env.Error.Fields)
	}

	w = do(r, http.MethodPut, "/exams/not-a-uuid/questions", `{}`)
	if env := decode(t, w); w.Code != http.StatusBadRequest || env.Error.Code != response.ErrInvalidID {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestResultHandler_ListRejectsUnknownSort(t *testing.T) {
	h := NewResultHandler(nil, nil)
	r := gin.New()
	r.GET("/exams/:exam_id/results", h.ListResults)

	w := do(r, http.MethodGet, "/exams/"+uuid.NewString()+"/results?sort_by=password", "")
	env := decode(t, w)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d", w.Code)
	}
	if _, ok := env.Error.Fields["sort_by"]; !ok {
		t.Fatalf("fields = %v", env.Error.Fields)
	}
}

func TestStudentHandler(t *testing.T) {
	examID := uuid.New()
	draftID := uuid.New()
	papers := &fakePapers{papers: map[uuid.UUID]*model.StudentPaper{
		examID: {ExamID: examID, Title: "Quiz", Questions: []model.QuestionForStudent{}},
	}}
	sub := newFakeSubmitter()
	sub.drafts[draftID] = map[string]string{"q": "1"}

	h := NewStudentHandler(papers, sub)
	r := gin.New()
	r.GET("/exams/:exam_id", h.GetExamPaper)
	r.POST("/exams/:exam_id/submit", h.SubmitExam)
	r.GET("/exams/:exam_id/drafts/:draft_id", h.GetDraft)
	base := "/exams/" + examID.String()

	t.Run("paper", func(t *testing.T) {
		w := do(r, http.MethodGet, base, "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"title":"Quiz"`) {
			t.Fatalf("got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown exam", func(t *testing.T) {
		w := do(r, http.MethodGet, "/exams/"+uuid.NewString(), "")
		if env := decode(t, w); w.Code != http.StatusNotFound || env.Error.Code != response.ErrExamNotFound {
			t.Fatalf("got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("submit requires student", func(t *testing.T) {
		w := do(r, http.MethodPost, base+"/submit", `{"answers":{"q":"1"}}`)
		env := decode(t, w)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("got %d", w.Code)
		}
		if _, ok := env.Error.Fields["student_name"]; !ok {
			t.Fatalf("fields = %v", env.Error.Fields)
		}
	})

	t.Run("submit stores", func(t *testing.T) {
		w := do(r, http.MethodPost, base+"/submit", `{"student_name":"Aki","student_number":"7","answers":{"q":"1"}}`)
		if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"result_id"`) {
			t.Fatalf("got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("submit preview", func(t *testing.T) {
		w := do(r, http.MethodPost, base+"/submit", `{"student_name":"Aki","student_number":"7","preview":true}`)
		if w.Code != http.StatusOK || strings.Contains(w.Body.String(), `"result_id"`) {
			t.Fatalf("got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("draft", func(t *testing.T) {
		w := do(r, http.MethodGet, base+"/drafts/"+draftID.String(), "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"answers":{"q":"1"}`) {
			t.Fatalf("got %d %s", w.Code, w.Body.String())
		}

		w = do(r, http.MethodGet, base+"/drafts/"+uuid.NewString(), "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"answers":{}`) {
			t.Fatalf("missing draft: got %d %s", w.Code, w.Body.String())
		}
	})
}
