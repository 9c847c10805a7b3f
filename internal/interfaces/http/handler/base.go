package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/erplink/backend/internal/domain/erp"
	"github.com/erplink/backend/internal/interfaces/http/dto"
	"github.com/erplink/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// session collects the caller identity passed on request headers. Operations
// fall back to the session customer when a request omits one.
func session(c *gin.Context) erp.Session {
	return erp.Session{
		CustomerID: c.GetHeader("X-Customer-ID"),
		ContactID:  c.GetHeader("X-Contact-ID"),
		Operator:   c.GetHeader("X-Operator"),
	}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("BAD_REQUEST", message))
}

// BindError sends a 400 response for a failed request binding, with
// per-field details when the failure came from validation.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(validationErrors))
		return
	}
	h.BadRequest(c, err.Error())
}

// Unavailable sends a 503 response when no backend is configured
func (h *BaseHandler) Unavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("BACKEND_UNAVAILABLE", message))
}
