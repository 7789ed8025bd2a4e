package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yufurikuto/EduExam/internal/model"
)

var ErrDuplicateSubject = errors.New("subject name already exists")

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (teacher_id, name, color) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.TeacherID, s.Name, s.Color).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSubject
		}
		return err
	}
	return nil
}

func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID string) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, name, color, created_at
		 FROM subjects WHERE teacher_id = $1
		 ORDER BY name ASC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.TeacherID, &s.Name, &s.Color, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, teacher_id, name, color, created_at FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.TeacherID, &s.Name, &s.Color, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a subject. Exams of the subject keep existing without one.
func (r *SubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return err
}
