package interfaces

import (
	"context"

	"storybook-server/internal/models"
)

// OrderEventPublisher публикует события о заказах во внешнюю шину.
type OrderEventPublisher interface {
	// PublishOrderCreated отправляет событие order.created.
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	Close() error
}
