package service

import (
	"context"
	"fmt"
	"strings"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"
	"storybook-server/internal/validation"

	"go.uber.org/zap"
)

// OrderService оформляет заказы на сгенерированные книги.
type OrderService struct {
	books     interfaces.BookRepository
	orders    interfaces.OrderRepository
	publisher interfaces.OrderEventPublisher
	logger    *zap.Logger
}

func NewOrderService(
	books interfaces.BookRepository,
	orders interfaces.OrderRepository,
	publisher interfaces.OrderEventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		books:     books,
		orders:    orders,
		publisher: publisher,
		logger:    logger.Named("order_service"),
	}
}

// CreateOrder проверяет запрос, обновляет формат и цену книги и создает заказ в статусе pending.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CheckoutRequest) (*models.Order, error) {
	if err := validation.ValidateCheckoutRequest(req); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.Int64("book_id", req.BookID))

	// Книга должна существовать; формат и цена обновляются одной операцией хранилища
	book, err := s.books.UpdateBookFormat(ctx, req.BookID, strings.TrimSpace(req.Format), req.Total)
	if err != nil {
		log.Warn("Failed to update book for order", zap.Error(err))
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, &models.Order{
		BookID:    book.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Format:    strings.TrimSpace(req.Format),
		Total:     req.Total,
		Status:    models.OrderStatusPending,
	})
	if err != nil {
		log.Error("Failed to create order", zap.Error(err))
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ошибка публикации события не отменяет заказ
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		log.Error("Failed to publish order event", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	log.Info("Order created", zap.Int64("order_id", order.ID), zap.String("format", order.Format))
	return order, nil
}

// GetOrder возвращает сохраненный заказ.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order id must be positive", models.ErrBadRequest)
	}
	return s.orders.GetOrderByID(ctx, id)
}
