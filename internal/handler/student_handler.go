package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/response"
	"github.com/yufurikuto/EduExam/internal/validator"
)

// PaperSource serves the student view of an exam. *service.ExamService
// satisfies it.
type PaperSource interface {
	GetStudentPaper(ctx context.Context, id uuid.UUID) (*model.StudentPaper, error)
}

// Submitter grades and drafts student answers. *service.SubmissionService
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, examID uuid.UUID, req model.SubmitExamRequest) (*model.SubmitResponse, error)
	Preview(ctx context.Context, examID uuid.UUID, answers map[string]string) (*model.SubmitResponse, error)
	Autosave(ctx context.Context, examID, draftID, questionID uuid.UUID, ans string) error
	LoadDraft(ctx context.Context, examID, draftID uuid.UUID) (map[string]string, error)
}

// StudentHandler handles the public, link-based exam taking endpoints.
type StudentHandler struct {
	papers      PaperSource
	submissions Submitter
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(papers PaperSource, submissions Submitter) *StudentHandler {
	return &StudentHandler{papers: papers, submissions: submissions}
}

// GetExamPaper godoc
// GET /api/v1/public/exams/:exam_id
// Returns the exam without answer keys. Shuffled exams come back in a new
// order on every request.
func (h *StudentHandler) GetExamPaper(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	paper, err := h.papers.GetStudentPaper(c.Request.Context(), examID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": paper})
}

// SubmitExam godoc
// POST /api/v1/public/exams/:exam_id/submit
// Grades the answers. With preview=true the result is returned but not stored.
func (h *StudentHandler) SubmitExam(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.submissions.Submit(c.Request.Context(), examID, req)
	if err != nil {
		failWithError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Preview {
		status = http.StatusOK
	}
	response.Success(c, status, gin.H{"result": res})
}

// GetDraft godoc
// GET /api/v1/public/exams/:exam_id/drafts/:draft_id
// Returns autosaved answers so a student can resume after a reload.
func (h *StudentHandler) GetDraft(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}
	draftID, ok := parseID(c, "draft_id")
	if !ok {
		return
	}

	answers, err := h.submissions.LoadDraft(c.Request.Context(), examID, draftID)
	if err != nil {
		failWithError(c, err)
		return
	}
	if answers == nil {
		answers = map[string]string{}
	}

	response.Success(c, http.StatusOK, gin.H{"draft_id": draftID, "answers": answers})
}
