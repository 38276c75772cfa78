package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"storybook-server/internal/models"

	"github.com/gin-gonic/gin"
)

// @Summary Генерация персональной книги
// @Description Генерирует историю, обложку и иллюстрации страниц и сохраняет книгу
// @Tags books
// @Accept json
// @Produce json
// @Param request body models.BookRequest true "Параметры книги"
// @Success 200 {object} models.GenerateBookResponse "Сгенерированная книга"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 413 {object} models.ErrorResponse "Слишком большое тело запроса"
// @Failure 500 {object} models.ErrorResponse "Не удалось сгенерировать историю"
// @Router /books/generate [post]
func (h *StorybookHandler) generateBook(c *gin.Context) {
	var req models.BookRequest
	if !h.bindJSON(c, &req) {
		bookRequestsTotal.WithLabelValues("invalid").Inc()
		return
	}

	resp, err := h.books.GenerateBook(c.Request.Context(), &req)
	if err != nil {
		bookRequestsTotal.WithLabelValues("error").Inc()
		h.handleServiceError(c, err)
		return
	}

	bookRequestsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, resp)
}

// @Summary Получение книги
// @Tags books
// @Produce json
// @Param id path int true "ID книги"
// @Success 200 {object} models.Book
// @Failure 400 {object} models.ErrorResponse "Неверный ID"
// @Failure 404 {object} models.ErrorResponse "Книга не найдена"
// @Router /books/{id} [get]
func (h *StorybookHandler) getBook(c *gin.Context) {
	id, ok := h.parseID(c, "book")
	if !ok {
		return
	}

	book, err := h.books.GetBook(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// parseID читает положительный :id из пути. При ошибке сам отвечает 400.
func (h *StorybookHandler) parseID(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.handleServiceError(c, fmt.Errorf("%w: invalid %s id", models.ErrBadRequest, entity))
		return 0, false
	}
	return id, true
}
