package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yufurikuto/EduExam/internal/answer"
	"github.com/yufurikuto/EduExam/internal/importer"
	"github.com/yufurikuto/EduExam/internal/response"
	"github.com/yufurikuto/EduExam/internal/service"
)

// failWithError maps a service error to its HTTP status and error code.
// Unknown errors are attached to the context for the request logger and
// answered with 500.
func failWithError(c *gin.Context, err error) {
	var invalid *service.InvalidQuestionError
	if errors.As(err, &invalid) {
		field := fmt.Sprintf("questions[%d]", invalid.Index)
		response.FailWithFields(c, http.StatusBadRequest, questionErrCode(invalid.Err), map[string]string{
			field: invalid.Err.Error(),
		})
		return
	}

	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Fail(c, status, code)
}

func statusFor(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case errors.Is(err, service.ErrSessionInvalidated):
		return http.StatusUnauthorized, response.ErrSessionInvalidated
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, response.ErrForbidden
	case errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound, response.ErrExamNotFound
	case errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrDetailNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrSubjectExists):
		return http.StatusConflict, response.ErrSubjectExists
	case errors.Is(err, service.ErrScoreExceedsMax):
		return http.StatusBadRequest, response.ErrScoreExceedsMax
	case errors.Is(err, service.ErrNegativeScore),
		errors.Is(err, service.ErrAnswerTooLong),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, importer.ErrLineTooLong):
		return http.StatusBadRequest, response.ErrValidation
	}
	return http.StatusInternalServerError, response.ErrInternal
}

func questionErrCode(err error) response.ErrCode {
	switch {
	case errors.Is(err, answer.ErrUnknownQuestionType):
		return response.ErrUnknownQuestionType
	case errors.Is(err, answer.ErrSelectionMismatch), errors.Is(err, answer.ErrChoiceSetRequired):
		return response.ErrSelectionMismatch
	}
	return response.ErrValidation
}

// parseID reads a UUID path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
