package handler

import (
	"net/http"

	"storybook-server/internal/models"

	"github.com/gin-gonic/gin"
)

// @Summary Оформление заказа
// @Description Фиксирует формат и цену книги и создает заказ в статусе pending
// @Tags orders
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Данные заказа"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 413 {object} models.ErrorResponse "Слишком большое тело запроса"
// @Failure 404 {object} models.ErrorResponse "Книга не найдена"
// @Failure 500 {object} models.ErrorResponse "Внутренняя ошибка"
// @Router /orders [post]
func (h *StorybookHandler) createOrder(c *gin.Context) {
	var req models.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	ordersCreatedTotal.Inc()
	c.JSON(http.StatusCreated, order)
}

// @Summary Получение заказа
// @Tags orders
// @Produce json
// @Param id path int true "ID заказа"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.ErrorResponse "Неверный ID"
// @Failure 404 {object} models.ErrorResponse "Заказ не найден"
// @Router /orders/{id} [get]
func (h *StorybookHandler) getOrder(c *gin.Context) {
	id, ok := h.parseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
