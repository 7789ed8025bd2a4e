package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/model"
)

var ErrExamNotFound = errors.New("exam not found")

type examStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListByTeacher(ctx context.Context, teacherID string, subjectID *uuid.UUID) ([]model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	Update(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type questionLister interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// ExamService handles exam settings and the cached student paper.
type ExamService struct {
	exams     examStore
	questions questionLister
	subjects  subjectStore
	cache     Cache
	cfg       *config.Config
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	exams examStore,
	questions questionLister,
	subjects subjectStore,
	cache Cache,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:     exams,
		questions: questions,
		subjects:  subjects,
		cache:     cache,
		cfg:       cfg,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// loadOwnedExam returns the exam when it exists and belongs to teacherID.
func loadOwnedExam(ctx context.Context, exams examStore, id uuid.UUID, teacherID string) (*model.Exam, error) {
	exam, err := loadExam(ctx, exams, id)
	if err != nil {
		return nil, err
	}
	if exam.TeacherID != teacherID {
		return nil, ErrForbidden
	}
	return exam, nil
}

func loadExam(ctx context.Context, exams examStore, id uuid.UUID) (*model.Exam, error) {
	exam, err := exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// List returns the teacher's exams, most recently updated first.
func (s *ExamService) List(ctx context.Context, teacherID string, subjectID *uuid.UUID) ([]model.Exam, error) {
	return s.exams.ListByTeacher(ctx, teacherID, subjectID)
}

// Get returns one of the teacher's exams.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID, teacherID string) (*model.Exam, error) {
	return loadOwnedExam(ctx, s.exams, id, teacherID)
}

// Create inserts a new exam without questions.
func (s *ExamService) Create(ctx context.Context, teacherID string, req model.CreateExamRequest) (*model.Exam, error) {
	if req.SubjectID != nil {
		if err := ensureSubjectOwned(ctx, s.subjects, *req.SubjectID, teacherID); err != nil {
			return nil, err
		}
	}

	exam := &model.Exam{
		TeacherID:    teacherID,
		SubjectID:    req.SubjectID,
		Title:        req.Title,
		Description:  req.Description,
		TimeLimit:    req.TimeLimit,
		PassingScore: req.PassingScore,
		IsShuffle:    req.IsShuffle,
		ClassName:    emptyToNil(req.ClassName),
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Str("teacher_id", teacherID).Msg("Exam created")
	return exam, nil
}

// Update applies the non-nil fields of req to the exam settings.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, teacherID string, req model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := loadOwnedExam(ctx, s.exams, id, teacherID)
	if err != nil {
		return nil, err
	}

	if req.SubjectID != nil {
		if err := ensureSubjectOwned(ctx, s.subjects, *req.SubjectID, teacherID); err != nil {
			return nil, err
		}
		exam.SubjectID = req.SubjectID
	}
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = emptyToNil(req.Description)
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = req.TimeLimit
	}
	if req.PassingScore != nil {
		exam.PassingScore = req.PassingScore
	}
	if req.IsShuffle != nil {
		exam.IsShuffle = *req.IsShuffle
	}
	if req.ClassName != nil {
		exam.ClassName = emptyToNil(req.ClassName)
	}

	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	s.InvalidatePaper(ctx, id)
	return exam, nil
}

// Delete removes the exam together with its questions and results.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID, teacherID string) error {
	if _, err := loadOwnedExam(ctx, s.exams, id, teacherID); err != nil {
		return err
	}
	if err := s.exams.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExamNotFound
		}
		return fmt.Errorf("delete exam: %w", err)
	}

	s.InvalidatePaper(ctx, id)
	s.cache.Del(ctx, config.CacheKey.ExamAnalysisKey(id.String()))
	s.log.Info().Str("exam_id", id.String()).Msg("Exam deleted")
	return nil
}

// GetStudentPaper returns the exam as shown to students: no answer keys and,
// when the exam shuffles, a fresh question order on every call.
func (s *ExamService) GetStudentPaper(ctx context.Context, id uuid.UUID) (*model.StudentPaper, error) {
	paper, err := s.cachedPaper(ctx, id)
	if err != nil {
		return nil, err
	}

	if paper.IsShuffle {
		rand.Shuffle(len(paper.Questions), func(i, j int) {
			paper.Questions[i], paper.Questions[j] = paper.Questions[j], paper.Questions[i]
		})
	}
	return paper, nil
}

func (s *ExamService) cachedPaper(ctx context.Context, id uuid.UUID) (*model.StudentPaper, error) {
	key := config.CacheKey.StudentPaperKey(id.String())

	raw, err := s.cache.Get(ctx, key).Result()
	if err == nil {
		var paper model.StudentPaper
		if jsonErr := json.Unmarshal([]byte(raw), &paper); jsonErr == nil {
			return &paper, nil
		}
		s.log.Warn().Str("exam_id", id.String()).Msg("Discarding unreadable cached paper")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Paper cache read failed")
	}

	paper, err := s.buildPaper(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(paper); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.PaperCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Paper cache write failed")
		}
	}
	return paper, nil
}

func (s *ExamService) buildPaper(ctx context.Context, id uuid.UUID) (*model.StudentPaper, error) {
	exam, err := loadExam(ctx, s.exams, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	paper := &model.StudentPaper{
		ExamID:      exam.ID,
		Title:       exam.Title,
		Description: exam.Description,
		TimeLimit:   exam.TimeLimit,
		ClassName:   exam.ClassName,
		IsShuffle:   exam.IsShuffle,
		Questions:   make([]model.QuestionForStudent, 0, len(questions)),
	}
	for _, q := range questions {
		paper.TotalScore += q.Score
		paper.Questions = append(paper.Questions, studentQuestion(q))
	}
	return paper, nil
}

func studentQuestion(q model.Question) model.QuestionForStudent {
	sq := model.QuestionForStudent{
		ID:            q.ID,
		Text:          q.Text,
		Type:          q.Type,
		SelectionMode: answer.DeriveSelectionMode(q.Type, q.SelectionMode, q.CorrectAnswer),
		Options:       q.Options,
		ImageURL:      q.ImageURL,
		Score:         q.Score,
	}
	if sq.Options == nil {
		sq.Options = []string{}
	}

	switch q.Type {
	case answer.FillInTheBlank:
		sq.BlankCount = len(answer.ParseBlanks(q.Text))
		sq.Text = answer.MaskBlanks(q.Text)
	case answer.Ordering:
		// The authored order is the answer key.
		shuffled := append([]string(nil), sq.Options...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		sq.Options = shuffled
	case answer.Matching:
		// Authored pairs are the answer key; only the two sides are shown.
		pairs, err := answer.DecodePairs(q.Options)
		if err != nil {
			break
		}
		sq.Options = []string{}
		sq.MatchLeft = make([]string, len(pairs))
		sq.MatchRight = make([]model.MatchChoice, len(pairs))
		for i, p := range pairs {
			sq.MatchLeft[i] = p.Left
			sq.MatchRight[i] = model.MatchChoice{Index: i, Text: p.Right}
		}
		rand.Shuffle(len(sq.MatchRight), func(i, j int) {
			sq.MatchRight[i], sq.MatchRight[j] = sq.MatchRight[j], sq.MatchRight[i]
		})
	}
	return sq
}

// InvalidatePaper drops the cached student paper so the next read rebuilds it.
func (s *ExamService) InvalidatePaper(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Del(ctx, config.CacheKey.StudentPaperKey(id.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Paper cache invalidation failed")
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
