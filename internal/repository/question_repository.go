package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yufurikuto/EduExam/internal/model"
)

const questionColumns = `id, exam_id, position, text, type, selection_mode, options, correct_answer, image_url, score`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row, q *model.Question) error {
	return row.Scan(&q.ID, &q.ExamID, &q.Position, &q.Text, &q.Type, &q.SelectionMode,
		&q.Options, &q.CorrectAnswer, &q.ImageURL, &q.Score)
}

// ListByExam retrieves all questions for a given exam in authored order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE exam_id = $1
		 ORDER BY position`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceAll makes questions the complete question set of the exam in one
// transaction. Questions whose id already belongs to the exam are updated in
// place; the exam's other questions are removed and the rest are inserted.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, examID uuid.UUID, questions []model.Question) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		keep := make([]uuid.UUID, 0, len(questions))
		for _, q := range questions {
			if q.ID != uuid.Nil {
				keep = append(keep, q.ID)
			}
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM questions WHERE exam_id = $1 AND NOT (id = ANY($2::uuid[]))`,
			examID, keep,
		); err != nil {
			return err
		}

		for i := range questions {
			q := &questions[i]
			q.ExamID = examID
			q.Position = i
			if q.ID == uuid.Nil {
				q.ID = uuid.New()
			}

			if _, err := tx.Exec(ctx,
				`INSERT INTO questions (id, exam_id, position, text, type, selection_mode, options, correct_answer, image_url, score)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				 ON CONFLICT (id) DO UPDATE
				 SET position = EXCLUDED.position, text = EXCLUDED.text, type = EXCLUDED.type,
				     selection_mode = EXCLUDED.selection_mode, options = EXCLUDED.options,
				     correct_answer = EXCLUDED.correct_answer, image_url = EXCLUDED.image_url,
				     score = EXCLUDED.score
				 WHERE questions.exam_id = EXCLUDED.exam_id`,
				q.ID, q.ExamID, q.Position, q.Text, q.Type, q.SelectionMode,
				q.Options, q.CorrectAnswer, q.ImageURL, q.Score,
			); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `UPDATE exams SET updated_at = NOW() WHERE id = $1`, examID)
		return err
	})
}
