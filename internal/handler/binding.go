package handler

import (
	"errors"
	"fmt"
	"net/http"

	"storybook-server/internal/models"
	"storybook-server/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxRequestBodyBytes ограничивает размер JSON-тела запросов /api.
const maxRequestBodyBytes = 64 << 10

const requestTooLargeMessage = "request body too large"

// bindJSON читает тело не больше maxRequestBodyBytes и биндит его в obj.
// При ошибке сам отвечает клиенту (413 или 400) и возвращает false.
func (h *StorybookHandler) bindJSON(c *gin.Context, obj any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("Request body too large",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("limit", tooLarge.Limit),
		)
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: requestTooLargeMessage})
		return false
	}

	h.handleServiceError(c, fmt.Errorf("%w: %s", models.ErrValidation, validation.Message(err)))
	return false
}
