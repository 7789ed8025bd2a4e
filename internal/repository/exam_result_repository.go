package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yufurikuto/EduExam/internal/grading"
	"github.com/yufurikuto/EduExam/internal/model"
)

const resultColumns = `id, exam_id, student_name, student_number, student_class, score, answers, submitted_at`

// resultSortColumns whitelists sortable columns of the results table.
var resultSortColumns = map[string]string{
	"score":          "score",
	"submitted_at":   "submitted_at",
	"student_number": "student_number",
	"student_class":  "student_class",
}

// ResultFilter narrows and orders a results listing.
type ResultFilter struct {
	Query     string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ExamResultRepository handles exam results and their graded details.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

func scanResult(row pgx.Row, res *model.ExamResult) error {
	return row.Scan(&res.ID, &res.ExamID, &res.StudentName, &res.StudentNumber,
		&res.StudentClass, &res.Score, &res.Answers, &res.SubmittedAt)
}

// Create writes a result and all of its details in one transaction.
func (r *ExamResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO exam_results (exam_id, student_name, student_number, student_class, score, answers)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, submitted_at`,
			res.ExamID, res.StudentName, res.StudentNumber, res.StudentClass, res.Score, res.Answers,
		).Scan(&res.ID, &res.SubmittedAt); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}

		batch := &pgx.Batch{}
		for i := range res.Details {
			d := &res.Details[i]
			d.ID = uuid.New()
			d.ExamResultID = res.ID
			batch.Queue(
				`INSERT INTO answer_details (id, exam_result_id, question_id, position, answer, is_correct, score)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				d.ID, d.ExamResultID, d.QuestionID, i, d.Answer, d.IsCorrect, d.Score,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert details: %w", err)
		}
		return nil
	})
}

// ListByExam returns one page of an exam's results and the number of results
// matching the filter. Query matches name, number or class
// case-insensitively; the default order is newest submission first. A zero
// Limit returns every match.
func (r *ExamResultRepository) ListByExam(ctx context.Context, examID uuid.UUID, f ResultFilter) ([]model.ExamResult, int, error) {
	where := ` WHERE exam_id = $1`
	args := []any{examID}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (student_name ILIKE $%d OR student_number ILIKE $%d OR student_class ILIKE $%d)`, n, n, n)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exam_results`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}

	col, ok := resultSortColumns[f.SortBy]
	if !ok {
		col = "submitted_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	query := `SELECT ` + resultColumns + ` FROM exam_results` + where + fmt.Sprintf(` ORDER BY %s %s, id`, col, dir)
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []model.ExamResult{}
	for rows.Next() {
		var res model.ExamResult
		if err := scanResult(rows, &res); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// GetByID returns a result with its details in authored order.
func (r *ExamResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	if err := scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM exam_results WHERE id = $1`, id), res); err != nil {
		return nil, err
	}

	details, err := listDetails(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	res.Details = details
	return res, nil
}

// ListWithDetailsByExam loads every result of an exam with its details, for analysis.
func (r *ExamResultRepository) ListWithDetailsByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	results, _, err := r.ListByExam(ctx, examID, ResultFilter{SortBy: "submitted_at", SortOrder: "asc"})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT d.id, d.exam_result_id, d.question_id, d.answer, d.is_correct, d.score, d.is_manual_graded, d.teacher_comment
		 FROM answer_details d
		 JOIN exam_results er ON er.id = d.exam_result_id
		 WHERE er.exam_id = $1
		 ORDER BY d.exam_result_id, d.position`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[uuid.UUID]int, len(results))
	for i, res := range results {
		index[res.ID] = i
	}
	for rows.Next() {
		var d model.AnswerDetail
		if err := scanDetail(rows, &d); err != nil {
			return nil, err
		}
		if i, ok := index[d.ExamResultID]; ok {
			results[i].Details = append(results[i].Details, d)
		}
	}
	return results, rows.Err()
}

// OverrideDetail applies a manual grade to one detail and recomputes the
// parent's score from all of its details. The result row is locked for the
// duration so readers never see a detail change without the new total.
func (r *ExamResultRepository) OverrideDetail(
	ctx context.Context,
	resultID, detailID uuid.UUID,
	score int, isCorrect bool, comment *string,
) (*model.ExamResult, error) {
	var updated *model.ExamResult

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		res := &model.ExamResult{}
		if err := scanResult(tx.QueryRow(ctx,
			`SELECT `+resultColumns+` FROM exam_results WHERE id = $1 FOR UPDATE`, resultID), res); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE answer_details
			 SET score = $1, is_correct = $2, teacher_comment = COALESCE($3, teacher_comment), is_manual_graded = TRUE
			 WHERE id = $4 AND exam_result_id = $5`,
			score, isCorrect, comment, detailID, resultID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		details, err := listDetails(ctx, tx, resultID)
		if err != nil {
			return err
		}

		graded := make([]grading.Detail, len(details))
		for i, d := range details {
			graded[i] = grading.Detail{QuestionID: d.QuestionID.String(), Answer: d.Answer, IsCorrect: d.IsCorrect, Score: d.Score}
		}
		res.Score = grading.RecomputeTotal(graded)

		if _, err := tx.Exec(ctx, `UPDATE exam_results SET score = $1 WHERE id = $2`, res.Score, resultID); err != nil {
			return err
		}

		res.Details = details
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listDetails(ctx context.Context, db querier, resultID uuid.UUID) ([]model.AnswerDetail, error) {
	rows, err := db.Query(ctx,
		`SELECT id, exam_result_id, question_id, answer, is_correct, score, is_manual_graded, teacher_comment
		 FROM answer_details WHERE exam_result_id = $1
		 ORDER BY position`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []model.AnswerDetail{}
	for rows.Next() {
		var d model.AnswerDetail
		if err := scanDetail(rows, &d); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func scanDetail(row pgx.Row, d *model.AnswerDetail) error {
	return row.Scan(&d.ID, &d.ExamResultID, &d.QuestionID, &d.Answer, &d.IsCorrect,
		&d.Score, &d.IsManualGraded, &d.TeacherComment)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
