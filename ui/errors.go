package ui

import (
	"log"
	"net/http"

	"prodflow/domain/initiative"
	apperrors "prodflow/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps an application error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case apperrors.CodeValidationError:
		return http.StatusUnprocessableEntity
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeDuplicateEscalation:
		return http.StatusConflict
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorBody renders err as the API error envelope
func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error(), "code": apperrors.GetCode(err)}
	if v, ok := initiative.AsViolation(err); ok {
		body["rule"] = v.Rule
		body["reason"] = v.Reason
	}
	return body
}

func (s *Server) respondError(c *gin.Context, op string, err error) {
	status := statusFor(apperrors.GetCode(err))
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] ERROR: %v", op, err)
		_ = c.Error(err)
	}
	c.JSON(status, errorBody(err))
}

func (s *Server) respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(apperrors.Wrap(apperrors.InvalidInput("malformed request body"), err.Error())))
}
