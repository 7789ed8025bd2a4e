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

// ResultHandler handles result review and manual grading endpoints.
type ResultHandler struct {
	resultService   *service.ResultService
	analysisService *service.AnalysisService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService, analysisService *service.AnalysisService) *ResultHandler {
	return &ResultHandler{
		resultService:   resultService,
		analysisService: analysisService,
	}
}

// ListResults godoc
// GET /api/v1/teacher/exams/:exam_id/results?q=&sort_by=&sort_order=&page=&per_page=
// Lists submissions of an exam. q searches name, number and class.
func (h *ResultHandler) ListResults(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	var q model.ResultListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	page, err := h.resultService.List(c.Request.Context(), examID, middleware.TeacherID(c), q)
	if err != nil {
		failWithError(c, err)
		return
	}
	results := page.Results
	if results == nil {
		results = []model.ExamResult{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results},
		response.NewPagination(page.Page, page.PerPage, page.Total))
}

// GetResult godoc
// GET /api/v1/teacher/results/:result_id
// Returns one result with every answer, its question and the readable key.
func (h *ResultHandler) GetResult(c *gin.Context) {
	resultID, ok := parseID(c, "result_id")
	if !ok {
		return
	}

	view, err := h.resultService.Get(c.Request.Context(), resultID, middleware.TeacherID(c))
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": view})
}

// OverrideDetail godoc
// PATCH /api/v1/teacher/results/:result_id/details/:detail_id
// Manually grades one answer. The result score becomes the sum of its answers.
func (h *ResultHandler) OverrideDetail(c *gin.Context) {
	resultID, ok := parseID(c, "result_id")
	if !ok {
		return
	}
	detailID, ok := parseID(c, "detail_id")
	if !ok {
		return
	}

	var req model.OverrideDetailRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.resultService.Override(c.Request.Context(), resultID, detailID, middleware.TeacherID(c), req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": view})
}

// GetAnalysis godoc
// GET /api/v1/teacher/exams/:exam_id/analysis
// Returns score statistics, the score distribution and per-question rates.
func (h *ResultHandler) GetAnalysis(c *gin.Context) {
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	report, err := h.analysisService.Get(c.Request.Context(), examID, middleware.TeacherID(c))
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analysis": report})
}
