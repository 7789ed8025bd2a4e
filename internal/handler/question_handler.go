package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yufurikuto/EduExam/internal/middleware"
	"github.com/yufurikuto/EduExam/internal/model"
	"github.com/yufurikuto/EduExam/internal/response"
	"github.com/yufurikuto/EduExam/internal/service"
	"github.com/yufurikuto/EduExam/internal/validator"
)

// QuestionHandler handles question authoring endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/teacher/exams/:exam_id/questions
// Returns the questions with their answer keys, in authored order.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	questions, err := h.questionService.List(c.Request.Context(), examID, middleware.TeacherID(c))
	if err != nil {
		failWithError(c, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// SaveQuestions godoc
// PUT /api/v1/teacher/exams/:exam_id/questions
// Replaces the question set of an exam. Nothing is saved when one question
// is invalid; the error names it as questions[i].
func (h *QuestionHandler) SaveQuestions(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	var req model.SaveQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.Save(c.Request.Context(), examID, middleware.TeacherID(c), req.Questions)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ImportText godoc
// POST /api/v1/teacher/questions/import
// Parses pasted text into question drafts. Nothing is stored.
func (h *QuestionHandler) ImportText(c *gin.Context) {
	var req model.ImportTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	drafts, err := h.questionService.ImportText(req.Text)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": drafts})
}

// CopyQuestions godoc
// GET /api/v1/teacher/exams/:exam_id/questions/copy
// Returns the questions of another owned exam as drafts without ids.
func (h *QuestionHandler) CopyQuestions(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	drafts, err := h.questionService.CopyFromExam(c.Request.Context(), examID, middleware.TeacherID(c))
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": drafts})
}
