package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// EventTypeOrderCreated - тип события о новом заказе.
	EventTypeOrderCreated = "order.created"

	appID          = "storybook-server"
	publishTimeout = 10 * time.Second
	publishRetries = 3
)

var orderEventsPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storybook_order_events_published_total",
		Help: "Total number of order events published to the message broker.",
	},
	[]string{"event_type", "status"},
)

// OrderEvent - сообщение об изменении заказа.
type OrderEvent struct {
	EventType string    `json:"eventType"`
	OrderID   int64     `json:"orderId"`
	BookID    int64     `json:"bookId"`
	Email     string    `json:"email"`
	Format    string    `json:"format"`
	Total     string    `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// RabbitMQOrderPublisher публикует события заказов в очередь RabbitMQ.
type RabbitMQOrderPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

var _ interfaces.OrderEventPublisher = (*RabbitMQOrderPublisher)(nil)

// NewRabbitMQOrderPublisher открывает канал и объявляет durable-очередь.
func NewRabbitMQOrderPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQOrderPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("order publisher: failed to open channel: %w", err)
	}
	if _, err = ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("order publisher: failed to declare queue '%s': %w", queueName, err)
	}

	log := logger.Named("order_publisher").With(zap.String("queue", queueName))
	log.Info("Order events queue declared")
	return &RabbitMQOrderPublisher{channel: ch, queueName: queueName, logger: log}, nil
}

// PublishOrderCreated отправляет событие order.created.
func (p *RabbitMQOrderPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("order publisher: order is nil")
	}
	body, err := json.Marshal(OrderEvent{
		EventType: EventTypeOrderCreated,
		OrderID:   order.ID,
		BookID:    order.BookID,
		Email:     order.Email,
		Format:    order.Format,
		Total:     order.Total,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("order publisher: failed to marshal event: %w", err)
	}

	if err := p.publishMessage(ctx, body); err != nil {
		orderEventsPublished.WithLabelValues(EventTypeOrderCreated, "error").Inc()
		return err
	}
	orderEventsPublished.WithLabelValues(EventTypeOrderCreated, "success").Inc()
	return nil
}

func (p *RabbitMQOrderPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		return errors.New("order publisher: RabbitMQ channel is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishRetries; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // default exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        appID,
			},
		)
		if err == nil {
			p.logger.Debug("Message published", zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("order publisher: publish to %s aborted: %w", p.queueName, ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("order publisher: publish to %s failed after retries: %w", p.queueName, err)
}

// Close закрывает канал публикации.
func (p *RabbitMQOrderPublisher) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}

// NoopOrderPublisher используется, когда брокер не настроен.
type NoopOrderPublisher struct {
	logger *zap.Logger
}

var _ interfaces.OrderEventPublisher = (*NoopOrderPublisher)(nil)

func NewNoopOrderPublisher(logger *zap.Logger) *NoopOrderPublisher {
	return &NoopOrderPublisher{logger: logger.Named("order_publisher")}
}

func (p *NoopOrderPublisher) PublishOrderCreated(_ context.Context, order *models.Order) error {
	if order != nil {
		p.logger.Debug("Message broker not configured, order event skipped", zap.Int64("order_id", order.ID))
	}
	return nil
}

func (p *NoopOrderPublisher) Close() error { return nil }

// ConnectRabbitMQ подключается к RabbitMQ с несколькими попытками.
func ConnectRabbitMQ(url string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}
