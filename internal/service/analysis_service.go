package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/analysis"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/model"
)

type resultDetailLister interface {
	ListWithDetailsByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error)
}

// AnalysisService serves per-exam statistics, cached in Redis.
type AnalysisService struct {
	exams     examStore
	questions questionLister
	results   resultDetailLister
	cache     Cache
	cfg       *config.Config
	log       zerolog.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	exams examStore,
	questions questionLister,
	results resultDetailLister,
	cache Cache,
	cfg *config.Config,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		exams:     exams,
		questions: questions,
		results:   results,
		cache:     cache,
		cfg:       cfg,
		log:       log.With().Str("component", "analysis_service").Logger(),
	}
}

// Get returns the analysis of one of the teacher's exams.
func (s *AnalysisService) Get(ctx context.Context, examID uuid.UUID, teacherID string) (*analysis.Report, error) {
	if _, err := loadOwnedExam(ctx, s.exams, examID, teacherID); err != nil {
		return nil, err
	}

	raw, err := s.cache.Get(ctx, config.CacheKey.ExamAnalysisKey(examID.String())).Result()
	if err == nil {
		var report analysis.Report
		if jsonErr := json.Unmarshal([]byte(raw), &report); jsonErr == nil {
			return &report, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Analysis cache read failed")
	}

	return s.Refresh(ctx, examID)
}

// Refresh recomputes the analysis from stored results and caches it.
func (s *AnalysisService) Refresh(ctx context.Context, examID uuid.UUID) (*analysis.Report, error) {
	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	results, err := s.results.ListWithDetailsByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	report := analysis.Aggregate(toAnalysisResults(results), toAnalysisQuestions(questions))

	if data, err := json.Marshal(report); err == nil {
		key := config.CacheKey.ExamAnalysisKey(examID.String())
		if err := s.cache.Set(ctx, key, data, s.cfg.AnalysisCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Analysis cache write failed")
		}
	}
	return &report, nil
}

func toAnalysisResults(results []model.ExamResult) []analysis.Result {
	out := make([]analysis.Result, len(results))
	for i, r := range results {
		details := make([]analysis.Detail, len(r.Details))
		for j, d := range r.Details {
			details[j] = analysis.Detail{QuestionID: d.QuestionID.String(), IsCorrect: d.IsCorrect}
		}
		out[i] = analysis.Result{Score: r.Score, Details: details}
	}
	return out
}

func toAnalysisQuestions(questions []model.Question) []analysis.Question {
	out := make([]analysis.Question, len(questions))
	for i, q := range questions {
		out[i] = analysis.Question{ID: q.ID.String(), Text: q.Text}
	}
	return out
}
