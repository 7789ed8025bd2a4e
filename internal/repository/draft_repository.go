package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yufurikuto/EduExam/internal/model"
)

// DraftRepository persists autosaved answers so a student can resume after
// the Redis copy expires.
type DraftRepository struct {
	pool *pgxpool.Pool
}

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

type draftKey struct {
	examID, draftID, questionID uuid.UUID
}

// UpsertBatch writes many drafts in a single statement. When the batch holds
// the same answer slot more than once, the last one wins.
func (r *DraftRepository) UpsertBatch(ctx context.Context, drafts []model.AnswerDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	latest := make(map[draftKey]int, len(drafts))
	for i, d := range drafts {
		latest[draftKey{d.ExamID, d.DraftID, d.QuestionID}] = i
	}

	n := len(latest)
	examIDs := make([]uuid.UUID, 0, n)
	draftIDs := make([]uuid.UUID, 0, n)
	questionIDs := make([]uuid.UUID, 0, n)
	answers := make([]string, 0, n)
	for i, d := range drafts {
		if latest[draftKey{d.ExamID, d.DraftID, d.QuestionID}] != i {
			continue
		}
		examIDs = append(examIDs, d.ExamID)
		draftIDs = append(draftIDs, d.DraftID)
		questionIDs = append(questionIDs, d.QuestionID)
		answers = append(answers, d.Answer)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO answer_drafts (exam_id, draft_id, question_id, answer)
		 SELECT u.exam_id, u.draft_id, u.question_id, u.answer
		 FROM UNNEST($1::uuid[], $2::uuid[], $3::uuid[], $4::text[])
		      AS u (exam_id, draft_id, question_id, answer)
		 JOIN exams e ON e.id = u.exam_id
		 ON CONFLICT (exam_id, draft_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, updated_at = NOW()`,
		examIDs, draftIDs, questionIDs, answers,
	)
	return err
}

// Upsert writes one draft answer.
func (r *DraftRepository) Upsert(ctx context.Context, d model.AnswerDraft) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answer_drafts (exam_id, draft_id, question_id, answer)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, draft_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, updated_at = NOW()`,
		d.ExamID, d.DraftID, d.QuestionID, d.Answer,
	)
	return err
}

// ListByDraft returns the saved answers of one draft keyed by question id.
func (r *DraftRepository) ListByDraft(ctx context.Context, examID, draftID uuid.UUID) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, answer FROM answer_drafts
		 WHERE exam_id = $1 AND draft_id = $2`, examID, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(map[string]string)
	for rows.Next() {
		var qid uuid.UUID
		var a string
		if err := rows.Scan(&qid, &a); err != nil {
			return nil, err
		}
		answers[qid.String()] = a
	}
	return answers, rows.Err()
}

// DeleteByDraft removes a draft once it has been submitted.
func (r *DraftRepository) DeleteByDraft(ctx context.Context, examID, draftID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM answer_drafts WHERE exam_id = $1 AND draft_id = $2`, examID, draftID)
	return err
}
