package handler

import (
	"errors"
	"net/http"

	"storybook-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

func (h *StorybookHandler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrBookNotFound):
		statusCode = http.StatusNotFound
		message = models.ErrBookNotFound.Error()
	case errors.Is(err, models.ErrOrderNotFound):
		statusCode = http.StatusNotFound
		message = models.ErrOrderNotFound.Error()
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = models.ErrNotFound.Error()
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		message = models.ErrUserAlreadyExists.Error()
	case errors.Is(err, models.ErrStoryGenerationFailed):
		// Детали ошибки провайдера клиенту не отдаем
		h.logger.Error("Story generation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = models.ErrStoryGenerationFailed.Error()
	default:
		h.logger.Error("Unhandled internal error in handleServiceError", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = internalErrorMessage
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}
