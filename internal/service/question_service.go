package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/importer"
	"github.com/yufurikuto/EduExam/internal/model"
)

var ErrInvalidScore = errors.New("question score must be positive")

// InvalidQuestionError reports which question of a save payload was rejected.
type InvalidQuestionError struct {
	Index int
	Err   error
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index, e.Err)
}

func (e *InvalidQuestionError) Unwrap() error { return e.Err }

type questionStore interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
	ReplaceAll(ctx context.Context, examID uuid.UUID, questions []model.Question) error
}

// QuestionService authors the question set of an exam.
type QuestionService struct {
	exams     examStore
	questions questionStore
	cache     Cache
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(exams examStore, questions questionStore, cache Cache, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		exams:     exams,
		questions: questions,
		cache:     cache,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// List returns the exam's questions with their answer keys, in authored order.
func (s *QuestionService) List(ctx context.Context, examID uuid.UUID, teacherID string) ([]model.Question, error) {
	if _, err := loadOwnedExam(ctx, s.exams, examID, teacherID); err != nil {
		return nil, err
	}
	return s.questions.ListByExam(ctx, examID)
}

// Save validates every input and makes them the exam's complete question set.
// Nothing is written when any input is rejected.
func (s *QuestionService) Save(ctx context.Context, examID uuid.UUID, teacherID string, inputs []model.QuestionInput) ([]model.Question, error) {
	if _, err := loadOwnedExam(ctx, s.exams, examID, teacherID); err != nil {
		return nil, err
	}

	existing, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, q := range existing {
		known[q.ID] = true
	}

	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		q, err := BuildQuestion(in)
		if err != nil {
			return nil, &InvalidQuestionError{Index: i, Err: err}
		}
		// Ids of other exams, or repeated ones, become new questions.
		if in.ID != nil && known[*in.ID] {
			q.ID = *in.ID
			delete(known, *in.ID)
		}
		questions = append(questions, q)
	}

	if err := s.questions.ReplaceAll(ctx, examID, questions); err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}

	s.cache.Del(ctx,
		config.CacheKey.StudentPaperKey(examID.String()),
		config.CacheKey.ExamAnalysisKey(examID.String()),
	)
	s.log.Info().Str("exam_id", examID.String()).Int("count", len(questions)).Msg("Questions saved")
	return questions, nil
}

// BuildQuestion turns one authoring input into a storable question: the type
// is checked, the selection mode resolved and the answer key canonicalised.
func BuildQuestion(in model.QuestionInput) (model.Question, error) {
	t, err := answer.ParseQuestionType(in.Type)
	if err != nil {
		return model.Question{}, err
	}
	explicit, err := answer.ParseSelectionMode(in.SelectionMode)
	if err != nil {
		return model.Question{}, err
	}
	if in.Score <= 0 {
		return model.Question{}, ErrInvalidScore
	}

	mode := answer.DeriveSelectionMode(t, explicit, in.CorrectAnswer)
	correct, err := answer.CanonicalCorrectAnswer(t, mode, in.CorrectAnswer)
	if err != nil {
		return model.Question{}, err
	}

	options := in.Options
	if options == nil {
		options = []string{}
	}

	return model.Question{
		Text:          in.Text,
		Type:          t,
		SelectionMode: mode,
		Options:       options,
		CorrectAnswer: correct,
		ImageURL:      emptyToNil(in.ImageURL),
		Score:         in.Score,
	}, nil
}

// ImportText parses pasted text into question drafts for the editor. Drafts
// are not saved.
func (s *QuestionService) ImportText(text string) ([]model.QuestionInput, error) {
	parsed, err := importer.ParseText(text)
	if err != nil {
		return nil, err
	}
	drafts := make([]model.QuestionInput, 0, len(parsed))
	for _, q := range parsed {
		drafts = append(drafts, model.QuestionInput{
			Text:          q.Text,
			Type:          q.Type.String(),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Score:         q.Score,
		})
	}
	return drafts, nil
}

// CopyFromExam returns the questions of another of the teacher's exams as
// drafts without ids, ready to be appended in the editor.
func (s *QuestionService) CopyFromExam(ctx context.Context, sourceExamID uuid.UUID, teacherID string) ([]model.QuestionInput, error) {
	questions, err := s.List(ctx, sourceExamID, teacherID)
	if err != nil {
		return nil, err
	}

	drafts := make([]model.QuestionInput, 0, len(questions))
	for _, q := range questions {
		drafts = append(drafts, model.QuestionInput{
			Text:          q.Text,
			Type:          q.Type.String(),
			SelectionMode: string(q.SelectionMode),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			ImageURL:      q.ImageURL,
			Score:         q.Score,
		})
	}
	return drafts, nil
}
