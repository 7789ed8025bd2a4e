package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/yufurikuto/EduExam/internal/answer"
)

// Exam represents an exam authored by a teacher and taken through its share link.
type Exam struct {
	ID           uuid.UUID  `json:"id"`
	TeacherID    string     `json:"teacher_id"`
	SubjectID    *uuid.UUID `json:"subject_id,omitempty"`
	SubjectName  *string    `json:"subject_name,omitempty"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	TimeLimit    *int       `json:"time_limit,omitempty"`
	PassingScore *int       `json:"passing_score,omitempty"`
	IsShuffle    bool       `json:"is_shuffle"`
	ClassName    *string    `json:"class_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Populated by list queries only.
	QuestionCount int `json:"question_count"`
	ResultCount   int `json:"result_count"`
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title        string     `json:"title" binding:"required,min=1,max=255"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	SubjectID    *uuid.UUID `json:"subject_id" binding:"omitempty"`
	TimeLimit    *int       `json:"time_limit" binding:"omitempty,min=1,max=600"`
	PassingScore *int       `json:"passing_score" binding:"omitempty,min=0"`
	IsShuffle    bool       `json:"is_shuffle"`
	ClassName    *string    `json:"class_name" binding:"omitempty,max=100"`
}

// UpdateExamRequest is the payload for the exam settings dialog. Nil fields
// are left unchanged.
type UpdateExamRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	SubjectID    *uuid.UUID `json:"subject_id" binding:"omitempty"`
	TimeLimit    *int       `json:"time_limit" binding:"omitempty,min=1,max=600"`
	PassingScore *int       `json:"passing_score" binding:"omitempty,min=0"`
	IsShuffle    *bool      `json:"is_shuffle"`
	ClassName    *string    `json:"class_name" binding:"omitempty,max=100"`
}

// StudentPaper is the Redis-cached exam sent to students (no correct answers).
type StudentPaper struct {
	ExamID      uuid.UUID            `json:"exam_id"`
	Title       string               `json:"title"`
	Description *string              `json:"description,omitempty"`
	TimeLimit   *int                 `json:"time_limit,omitempty"`
	ClassName   *string              `json:"class_name,omitempty"`
	IsShuffle   bool                 `json:"is_shuffle"`
	TotalScore  int                  `json:"total_score"`
	Questions   []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question without its answer key.
type QuestionForStudent struct {
	ID            uuid.UUID            `json:"id"`
	Text          string               `json:"text"`
	Type          answer.QuestionType  `json:"type"`
	SelectionMode answer.SelectionMode `json:"selection_mode,omitempty"`
	Options       []string             `json:"options"`
	ImageURL      *string              `json:"image_url,omitempty"`
	Score         int                  `json:"score"`
	BlankCount    int                  `json:"blank_count,omitempty"`
	MatchLeft     []string             `json:"match_left,omitempty"`
	MatchRight    []MatchChoice        `json:"match_right,omitempty"`
}

// MatchChoice is a right-hand matching item in shuffled display order. Index
// is its authored position, which is what answers refer to.
type MatchChoice struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}
