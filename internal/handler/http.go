package handler

import (
	"context"
	"net/http"
	"strings"

	"storybook-server/api"
	"storybook-server/internal/illustration"
	"storybook-server/internal/models"
	"storybook-server/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookUseCase - операции с книгами, которые нужны HTTP-слою.
type BookUseCase interface {
	GenerateBook(ctx context.Context, req *models.BookRequest) (*models.GenerateBookResponse, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
}

// OrderUseCase - операции с заказами, которые нужны HTTP-слою.
type OrderUseCase interface {
	CreateOrder(ctx context.Context, req *models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

// StorybookHandler обслуживает REST API книг и заказов.
type StorybookHandler struct {
	books  BookUseCase
	orders OrderUseCase
	logger *zap.Logger
}

func NewStorybookHandler(books BookUseCase, orders OrderUseCase, logger *zap.Logger) *StorybookHandler {
	// Правила валидатора должны быть зарегистрированы до первого биндинга
	validation.Register()
	return &StorybookHandler{
		books:  books,
		orders: orders,
		logger: logger.Named("handler"),
	}
}

// RegisterRoutes регистрирует маршруты /api. Переданные middleware (например, rate limit) применяются ко всей группе.
func (h *StorybookHandler) RegisterRoutes(router gin.IRouter, middlewares ...gin.HandlerFunc) {
	apiGroup := router.Group("/api", middlewares...)
	{
		books := apiGroup.Group("/books")
		books.POST("/generate", h.generateBook)
		books.GET("/:id", h.getBook)

		orders := apiGroup.Group("/orders")
		orders.POST("", h.createOrder)
		orders.GET("/:id", h.getOrder)
	}
}

// RegisterDocsRoutes отдает OpenAPI-описание сервиса.
func RegisterDocsRoutes(router gin.IRouter) {
	router.GET("/api/docs/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", api.OpenAPIDocument)
	})
}

// RegisterFallbackRoutes раздает встроенный запасной пул иллюстраций по baseURL.
// Абсолютные URL (CDN) не регистрируются: пул тогда обслуживается снаружи.
func RegisterFallbackRoutes(router gin.IRouter, baseURL string) bool {
	if !strings.HasPrefix(baseURL, "/") {
		return false
	}
	router.StaticFS(strings.TrimSuffix(baseURL, "/"), http.FS(illustration.FallbackImages()))
	return true
}

// Health отвечает на проверки живости.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
