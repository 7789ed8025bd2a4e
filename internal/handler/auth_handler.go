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

// AuthHandler handles teacher authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// TeacherLogin godoc
// POST /api/v1/auth/teacher/login
// Derives the teacher identity from the identifier and returns a JWT.
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	var req model.TeacherLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// TeacherLogout godoc
// POST /api/v1/auth/teacher/logout
// Ends the session of the presented token.
func (h *AuthHandler) TeacherLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.TeacherID, claims.ID); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetTeacherProfile godoc
// GET /api/v1/auth/teacher/me
func (h *AuthHandler) GetTeacherProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"teacher": model.Teacher{ID: claims.TeacherID, Name: claims.Name},
	})
}
