package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/grading"
	"github.com/yufurikuto/EduExam/internal/metrics"
	"github.com/yufurikuto/EduExam/internal/model"
)

const maxAnswerLength = 10000

var ErrAnswerTooLong = errors.New("answer is too long")

type resultCreator interface {
	Create(ctx context.Context, res *model.ExamResult) error
}

type draftStore interface {
	ListByDraft(ctx context.Context, examID, draftID uuid.UUID) (map[string]string, error)
	DeleteByDraft(ctx context.Context, examID, draftID uuid.UUID) error
}

// SubmissionService grades student submissions and keeps their drafts.
type SubmissionService struct {
	exams     examStore
	questions questionLister
	results   resultCreator
	drafts    draftStore
	cache     Cache
	cfg       *config.Config
	log       zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	exams examStore,
	questions questionLister,
	results resultCreator,
	drafts draftStore,
	cache Cache,
	cfg *config.Config,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		exams:     exams,
		questions: questions,
		results:   results,
		drafts:    drafts,
		cache:     cache,
		cfg:       cfg,
		log:       log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit grades the answers against the exam's current questions. Unless the
// request is a preview, the result and its details are stored, the student's
// draft is cleared and the exam analysis is queued for a refresh.
//
// When a draft id is given, saved draft answers fill in any question the
// request leaves out.
func (s *SubmissionService) Submit(ctx context.Context, examID uuid.UUID, req model.SubmitExamRequest) (*model.SubmitResponse, error) {
	exam, err := loadExam(ctx, s.exams, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	answers := make(map[string]string, len(questions))
	if req.DraftID != nil {
		saved, err := s.LoadDraft(ctx, examID, *req.DraftID)
		if err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Draft unavailable, grading request answers only")
		}
		for qid, a := range saved {
			answers[qid] = a
		}
	}
	for qid, a := range req.Answers {
		answers[qid] = a
	}

	graded := grading.Grade(toGradingQuestions(questions), answers)
	passed := grading.Passed(graded.EarnedScore, exam.PassingScore)

	for i, d := range graded.Details {
		metrics.ObserveAnswer(questions[i].Type.String(), d.IsCorrect)
	}

	resp := &model.SubmitResponse{
		Score:      graded.EarnedScore,
		TotalScore: graded.TotalScore,
		Passed:     passed,
		Preview:    req.Preview,
	}
	if req.Preview {
		metrics.Submissions.WithLabelValues("preview").Inc()
		return resp, nil
	}

	studentClass := req.StudentClass
	if exam.ClassName != nil && *exam.ClassName != "" {
		studentClass = *exam.ClassName
	}

	result := &model.ExamResult{
		ExamID:        examID,
		StudentName:   req.StudentName,
		StudentNumber: req.StudentNumber,
		StudentClass:  studentClass,
		Score:         graded.EarnedScore,
		Answers:       make(map[string]string, len(graded.Details)),
		Details:       make([]model.AnswerDetail, 0, len(graded.Details)),
	}
	for i, d := range graded.Details {
		if d.Answer != "" {
			result.Answers[d.QuestionID] = d.Answer
		}
		result.Details = append(result.Details, model.AnswerDetail{
			QuestionID: questions[i].ID,
			Answer:     d.Answer,
			IsCorrect:  d.IsCorrect,
			Score:      d.Score,
		})
	}

	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	metrics.Submissions.WithLabelValues("submit").Inc()

	if req.DraftID != nil {
		s.clearDraft(ctx, examID, *req.DraftID)
	}
	scheduleAnalysisRefresh(ctx, s.cache, examID, s.log)

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("result_id", result.ID.String()).
		Int("score", graded.EarnedScore).
		Int("total", graded.TotalScore).
		Msg("Submission graded")

	resp.ResultID = &result.ID
	return resp, nil
}

// Autosave stores one in-progress answer in Redis and queues it for durable
// storage.
func (s *SubmissionService) Autosave(ctx context.Context, examID, draftID, questionID uuid.UUID, ans string) error {
	if len(ans) > maxAnswerLength {
		return ErrAnswerTooLong
	}

	key := config.CacheKey.DraftAnswersKey(examID.String(), draftID.String())
	if err := s.cache.HSet(ctx, key, questionID.String(), ans).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	s.cache.Expire(ctx, key, s.cfg.DraftTTL)

	payload, err := json.Marshal(model.AnswerDraft{
		ExamID:     examID,
		DraftID:    draftID,
		QuestionID: questionID,
		Answer:     ans,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.cache.RPush(ctx, config.WorkerKey.PersistDraftsQueue, payload).Err(); err != nil {
		return fmt.Errorf("queue draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved answers of a draft, from Redis when present and
// from PostgreSQL otherwise.
func (s *SubmissionService) LoadDraft(ctx context.Context, examID, draftID uuid.UUID) (map[string]string, error) {
	key := config.CacheKey.DraftAnswersKey(examID.String(), draftID.String())
	answers, err := s.cache.HGetAll(ctx, key).Result()
	if err == nil && len(answers) > 0 {
		return answers, nil
	}
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Draft cache read failed")
	}

	answers, err = s.drafts.ListByDraft(ctx, examID, draftID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return answers, nil
}

// Preview grades answers without storing anything.
func (s *SubmissionService) Preview(ctx context.Context, examID uuid.UUID, answers map[string]string) (*model.SubmitResponse, error) {
	return s.Submit(ctx, examID, model.SubmitExamRequest{Answers: answers, Preview: true})
}

func (s *SubmissionService) clearDraft(ctx context.Context, examID, draftID uuid.UUID) {
	key := config.CacheKey.DraftAnswersKey(examID.String(), draftID.String())
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("Draft cache clear failed")
	}
	if err := s.drafts.DeleteByDraft(ctx, examID, draftID); err != nil {
		s.log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("Draft delete failed")
	}
}

func toGradingQuestions(questions []model.Question) []grading.Question {
	out := make([]grading.Question, len(questions))
	for i, q := range questions {
		out[i] = grading.Question{
			ID:            q.ID.String(),
			Type:          q.Type,
			SelectionMode: q.SelectionMode,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Score:         q.Score,
		}
	}
	return out
}

// scheduleAnalysisRefresh drops the cached analysis and asks the analysis
// worker to rebuild it.
func scheduleAnalysisRefresh(ctx context.Context, cache Cache, examID uuid.UUID, log zerolog.Logger) {
	if err := cache.Del(ctx, config.CacheKey.ExamAnalysisKey(examID.String())).Err(); err != nil {
		log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Analysis cache invalidation failed")
	}
	if err := cache.RPush(ctx, config.WorkerKey.RefreshAnalysisQueue, examID.String()).Err(); err != nil {
		log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Analysis refresh enqueue failed")
	}
}
