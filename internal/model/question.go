package model

import (
	"github.com/google/uuid"
	"github.com/yufurikuto/EduExam/internal/answer"
)

// Question represents a single exam question in authored order.
type Question struct {
	ID            uuid.UUID            `json:"id"`
	ExamID        uuid.UUID            `json:"exam_id"`
	Position      int                  `json:"position"`
	Text          string               `json:"text"`
	Type          answer.QuestionType  `json:"type"`
	SelectionMode answer.SelectionMode `json:"selection_mode,omitempty"`
	Options       []string             `json:"options"`
	CorrectAnswer *string              `json:"correct_answer"`
	ImageURL      *string              `json:"image_url,omitempty"`
	Score         int                  `json:"score"`
}

// QuestionInput is one question in a save payload. A known id keeps the
// question's identity so graded answers stay linked to it.
type QuestionInput struct {
	ID            *uuid.UUID `json:"id" binding:"omitempty"`
	Text          string     `json:"text" binding:"required,max=5000"`
	Type          string     `json:"type" binding:"required,question_type"`
	SelectionMode string     `json:"selection_mode" binding:"omitempty,selection_mode"`
	Options       []string   `json:"options" binding:"omitempty,max=50,dive,max=1000"`
	CorrectAnswer *string    `json:"correct_answer" binding:"omitempty,max=5000"`
	ImageURL      *string    `json:"image_url" binding:"omitempty,url,max=2048"`
	Score         int        `json:"score" binding:"required,min=1,max=1000"`
}

// SaveQuestionsRequest replaces every question of an exam.
type SaveQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" binding:"max=500,dive"`
}

// ImportTextRequest carries pasted plain text to turn into question drafts.
type ImportTextRequest struct {
	Text string `json:"text" binding:"required,max=200000"`
}
