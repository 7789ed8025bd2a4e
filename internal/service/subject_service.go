package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/repository"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrSubjectExists   = errors.New("subject name already exists")
	ErrForbidden       = errors.New("resource belongs to another teacher")
)

type subjectStore interface {
	Create(ctx context.Context, s *model.Subject) error
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Subject, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubjectService manages the subjects a teacher groups exams under.
type SubjectService struct {
	subjects subjectStore
	log      zerolog.Logger
}

func NewSubjectService(subjects subjectStore, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjects: subjects,
		log:      log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *SubjectService) List(ctx context.Context, teacherID string) ([]model.Subject, error) {
	return s.subjects.ListByTeacher(ctx, teacherID)
}

func (s *SubjectService) Create(ctx context.Context, teacherID string, req model.CreateSubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{TeacherID: teacherID, Name: req.Name, Color: req.Color}
	if err := s.subjects.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubject) {
			return nil, ErrSubjectExists
		}
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return sub, nil
}

// Delete removes a subject of the teacher. Its exams stay, without a subject.
func (s *SubjectService) Delete(ctx context.Context, id uuid.UUID, teacherID string) error {
	if err := ensureSubjectOwned(ctx, s.subjects, id, teacherID); err != nil {
		return err
	}
	if err := s.subjects.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	s.log.Info().Str("subject_id", id.String()).Str("teacher_id", teacherID).Msg("Subject deleted")
	return nil
}

func ensureSubjectOwned(ctx context.Context, subjects subjectStore, id uuid.UUID, teacherID string) error {
	sub, err := subjects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("get subject: %w", err)
	}
	if sub.TeacherID != teacherID {
		return ErrForbidden
	}
	return nil
}
