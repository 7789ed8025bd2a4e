package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamResult is one graded submission.
type ExamResult struct {
	ID            uuid.UUID         `json:"id"`
	ExamID        uuid.UUID         `json:"exam_id"`
	StudentName   string            `json:"student_name"`
	StudentNumber string            `json:"student_number"`
	StudentClass  string            `json:"student_class"`
	Score         int               `json:"score"`
	Answers       map[string]string `json:"answers"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	Details       []AnswerDetail    `json:"details,omitempty"`
}

// AnswerDetail is the graded outcome of one question within a result.
type AnswerDetail struct {
	ID             uuid.UUID `json:"id"`
	ExamResultID   uuid.UUID `json:"exam_result_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	Answer         string    `json:"answer"`
	IsCorrect      bool      `json:"is_correct"`
	Score          int       `json:"score"`
	IsManualGraded bool      `json:"is_manual_graded"`
	TeacherComment *string   `json:"teacher_comment,omitempty"`
}

// ResultDetailView is a detail with its question and a readable answer key.
type ResultDetailView struct {
	AnswerDetail
	Question      *Question `json:"question,omitempty"`
	CorrectAnswer string    `json:"correct_answer_display"`
}

// ResultView is a result as shown on the teacher's review page.
type ResultView struct {
	ExamResult
	ExamTitle  string             `json:"exam_title"`
	TotalScore int                `json:"total_score"`
	Passed     bool               `json:"passed"`
	Details    []ResultDetailView `json:"details"`
}

// SubmitExamRequest is the payload a student sends when finishing an exam.
type SubmitExamRequest struct {
	StudentName   string            `json:"student_name" binding:"required,max=100"`
	StudentNumber string            `json:"student_number" binding:"required,max=50"`
	StudentClass  string            `json:"student_class" binding:"omitempty,max=100"`
	Answers       map[string]string `json:"answers" binding:"omitempty,max=500"`
	DraftID       *uuid.UUID        `json:"draft_id" binding:"omitempty"`
	Preview       bool              `json:"preview"`
}

// SubmitResponse is returned to the student after grading.
type SubmitResponse struct {
	ResultID   *uuid.UUID `json:"result_id,omitempty"`
	Score      int        `json:"score"`
	TotalScore int        `json:"total_score"`
	Passed     bool       `json:"passed"`
	Preview    bool       `json:"preview"`
}

// OverrideDetailRequest is a teacher's manual grading of one answer.
type OverrideDetailRequest struct {
	Score          *int    `json:"score" binding:"required,min=0"`
	IsCorrect      *bool   `json:"is_correct" binding:"required"`
	TeacherComment *string `json:"teacher_comment" binding:"omitempty,max=2000"`
}

// DefaultResultsPerPage is the results table page size when none is given.
const DefaultResultsPerPage = 50

// ResultListQuery is the search, sort and page of the results table.
type ResultListQuery struct {
	Query     string `form:"q" binding:"omitempty,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=score submitted_at student_number student_class"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=200"`
}

// ResultPage is one page of a results listing.
type ResultPage struct {
	Results []ExamResult
	Page    int
	PerPage int
	Total   int
}
