package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/grading"
	"github.com/yufurikuto/EduExam/internal/metrics"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/repository"
)

var (
	ErrResultNotFound  = errors.New("result not found")
	ErrDetailNotFound  = errors.New("answer detail not found")
	ErrScoreExceedsMax = errors.New("score exceeds the question score")
	ErrNegativeScore   = errors.New("score must not be negative")
)

type resultStore interface {
	ListByExam(ctx context.Context, examID uuid.UUID, f repository.ResultFilter) ([]model.ExamResult, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error)
	OverrideDetail(ctx context.Context, resultID, detailID uuid.UUID, score int, isCorrect bool, comment *string) (*model.ExamResult, error)
}

// ResultService lets teachers review and manually grade submissions.
type ResultService struct {
	exams     examStore
	questions questionLister
	results   resultStore
	cache     Cache
	log       zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(exams examStore, questions questionLister, results resultStore, cache Cache, log zerolog.Logger) *ResultService {
	return &ResultService{
		exams:     exams,
		questions: questions,
		results:   results,
		cache:     cache,
		log:       log.With().Str("component", "result_service").Logger(),
	}
}

// List returns one page of the exam's results filtered by q and sorted as
// requested.
func (s *ResultService) List(ctx context.Context, examID uuid.UUID, teacherID string, q model.ResultListQuery) (*model.ResultPage, error) {
	if _, err := loadOwnedExam(ctx, s.exams, examID, teacherID); err != nil {
		return nil, err
	}

	page := max(q.Page, 1)
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = model.DefaultResultsPerPage
	}

	results, total, err := s.results.ListByExam(ctx, examID, repository.ResultFilter{
		Query:     q.Query,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return &model.ResultPage{Results: results, Page: page, PerPage: perPage, Total: total}, nil
}

// Get returns a result with each detail's question and formatted answer key.
func (s *ResultService) Get(ctx context.Context, resultID uuid.UUID, teacherID string) (*model.ResultView, error) {
	res, exam, questions, err := s.loadOwnedResult(ctx, resultID, teacherID)
	if err != nil {
		return nil, err
	}
	return buildResultView(res, exam, questions), nil
}

// Override sets the score and correctness of one answer. The result's score
// becomes the sum of its details.
func (s *ResultService) Override(
	ctx context.Context,
	resultID, detailID uuid.UUID,
	teacherID string,
	req model.OverrideDetailRequest,
) (*model.ResultView, error) {
	res, exam, questions, err := s.loadOwnedResult(ctx, resultID, teacherID)
	if err != nil {
		return nil, err
	}

	var detail *model.AnswerDetail
	for i := range res.Details {
		if res.Details[i].ID == detailID {
			detail = &res.Details[i]
			break
		}
	}
	if detail == nil {
		return nil, ErrDetailNotFound
	}

	score := *req.Score
	if score < 0 {
		return nil, ErrNegativeScore
	}
	// A deleted question has no cap left to check against.
	if q, ok := questions[detail.QuestionID]; ok && score > q.Score {
		return nil, ErrScoreExceedsMax
	}

	updated, err := s.results.OverrideDetail(ctx, resultID, detailID, score, *req.IsCorrect, req.TeacherComment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("override detail: %w", err)
	}

	metrics.ManualOverrides.Inc()
	scheduleAnalysisRefresh(ctx, s.cache, exam.ID, s.log)

	s.log.Info().
		Str("result_id", resultID.String()).
		Str("detail_id", detailID.String()).
		Int("score", score).
		Int("result_score", updated.Score).
		Msg("Answer manually graded")

	return buildResultView(updated, exam, questions), nil
}

func (s *ResultService) loadOwnedResult(ctx context.Context, resultID uuid.UUID, teacherID string) (
	*model.ExamResult, *model.Exam, map[uuid.UUID]model.Question, error,
) {
	res, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, ErrResultNotFound
		}
		return nil, nil, nil, fmt.Errorf("get result: %w", err)
	}

	exam, err := loadOwnedExam(ctx, s.exams, res.ExamID, teacherID)
	if err != nil {
		return nil, nil, nil, err
	}

	list, err := s.questions.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list questions: %w", err)
	}
	questions := make(map[uuid.UUID]model.Question, len(list))
	for _, q := range list {
		questions[q.ID] = q
	}
	return res, exam, questions, nil
}

func buildResultView(res *model.ExamResult, exam *model.Exam, questions map[uuid.UUID]model.Question) *model.ResultView {
	view := &model.ResultView{
		ExamResult: *res,
		ExamTitle:  exam.Title,
		Passed:     grading.Passed(res.Score, exam.PassingScore),
		Details:    make([]model.ResultDetailView, 0, len(res.Details)),
	}
	view.ExamResult.Details = nil

	for _, q := range questions {
		view.TotalScore += q.Score
	}

	for _, d := range res.Details {
		dv := model.ResultDetailView{AnswerDetail: d}
		if q, ok := questions[d.QuestionID]; ok {
			dv.Question = &q
			dv.CorrectAnswer = answer.FormatCorrectAnswer(q.Type, q.Text, q.Options, q.CorrectAnswer)
		}
		view.Details = append(view.Details, dv)
	}
	return view
}
