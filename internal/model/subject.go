package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject groups a teacher's exams.
type Subject struct {
	ID        uuid.UUID `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100"`
	Color *string `json:"color" binding:"omitempty,max=32"`
}
