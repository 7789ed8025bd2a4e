package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yufurikuto/EduExam/internal/model"
)

const examColumns = `e.id, e.teacher_id, e.subject_id, s.name, e.title, e.description,
	e.time_limit, e.passing_score, e.is_shuffle, e.class_name, e.created_at, e.updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgx.Row, e *model.Exam, extra ...any) error {
	dest := []any{&e.ID, &e.TeacherID, &e.SubjectID, &e.SubjectName, &e.Title, &e.Description,
		&e.TimeLimit, &e.PassingScore, &e.IsShuffle, &e.ClassName, &e.CreatedAt, &e.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	row := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+`
		 FROM exams e LEFT JOIN subjects s ON s.id = e.subject_id
		 WHERE e.id = $1`, id)
	if err := scanExam(row, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByTeacher returns a teacher's exams, most recently updated first, with
// question and result counts. A non-nil subjectID narrows to that subject.
func (r *ExamRepository) ListByTeacher(ctx context.Context, teacherID string, subjectID *uuid.UUID) ([]model.Exam, error) {
	query := `SELECT ` + examColumns + `,
	                 (SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id),
	                 (SELECT COUNT(*) FROM exam_results er WHERE er.exam_id = e.id)
	          FROM exams e LEFT JOIN subjects s ON s.id = e.subject_id
	          WHERE e.teacher_id = $1`
	args := []any{teacherID}
	if subjectID != nil {
		args = append(args, *subjectID)
		query += fmt.Sprintf(" AND e.subject_id = $%d", len(args))
	}
	query += ` ORDER BY e.updated_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		var e model.Exam
		if err := scanExam(rows, &e, &e.QuestionCount, &e.ResultCount); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (teacher_id, subject_id, title, description, time_limit, passing_score, is_shuffle, class_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.TeacherID, e.SubjectID, e.Title, e.Description,
		e.TimeLimit, e.PassingScore, e.IsShuffle, e.ClassName,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update writes every editable field of the exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET subject_id = $1, title = $2, description = $3, time_limit = $4,
		     passing_score = $5, is_shuffle = $6, class_name = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING updated_at`,
		e.SubjectID, e.Title, e.Description, e.TimeLimit,
		e.PassingScore, e.IsShuffle, e.ClassName, e.ID,
	).Scan(&e.UpdatedAt)
}

// Delete removes an exam with its questions and results.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
