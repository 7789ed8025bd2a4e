package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerDraft is an autosaved, not yet submitted answer.
type AnswerDraft struct {
	ExamID     uuid.UUID `json:"exam_id"`
	DraftID    uuid.UUID `json:"draft_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Answer     string    `json:"answer"`
	UpdatedAt  time.Time `json:"updated_at"`
}
