package event

import (
	"context"
	"log/slog"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/pkg/kafka"
	"github.com/industriassp/storefront/pkg/logger"
)

const (
	TopicCartUpdated = "storefront.cart.updated"
	TopicCartCleared = "storefront.cart.cleared"

	sourceName    = "storefront"
	aggregateCart = "cart"
)

// CartUpdatedPayload describes the cart after a mutation.
type CartUpdatedPayload struct {
	SessionID string            `json:"session_id"`
	Items     []domain.LineItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

// CartClearedPayload marks a cart wiped by its owner.
type CartClearedPayload struct {
	SessionID string `json:"session_id"`
}

// Publisher sends cart lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	CartUpdated(ctx context.Context, view domain.CartView)
	CartCleared(ctx context.Context, sessionID string)
}

// KafkaPublisher emits cart events to Kafka. Event publication is
// best-effort: a broker outage is logged and never fails the cart operation
// that triggered it.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaPublisher wraps a producer.
func NewKafkaPublisher(producer *kafka.Producer, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{producer: producer, logger: log}
}

func (p *KafkaPublisher) CartUpdated(ctx context.Context, view domain.CartView) {
	payload := CartUpdatedPayload{
		SessionID: view.SessionID,
		Items:     view.Items,
		Total:     view.Total,
		ItemCount: view.ItemCount,
	}
	p.publish(ctx, TopicCartUpdated, view.SessionID, payload)
}

func (p *KafkaPublisher) CartCleared(ctx context.Context, sessionID string) {
	p.publish(ctx, TopicCartCleared, sessionID, CartClearedPayload{SessionID: sessionID})
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, sessionID string, payload any) {
	ev, err := kafka.NewEvent(topic, sessionID, aggregateCart, sourceName, payload)
	if err != nil {
		p.logger.Error("failed to build cart event", "topic", topic, "error", err)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		ev.WithCorrelationID(cid)
	}
	if err := p.producer.Publish(ctx, topic, ev); err != nil {
		p.logger.Warn("failed to publish cart event", "topic", topic, "session_id", sessionID, "error", err)
	}
}

// NopPublisher drops all events. Used when no brokers are configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) CartUpdated(context.Context, domain.CartView) {}
func (NopPublisher) CartCleared(context.Context, string)          {}
