package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shoplane/cart-service/internal/domain"
	pkgkafka "github.com/shoplane/cart-service/pkg/kafka"
	"github.com/shoplane/cart-service/pkg/logger"
)

// Kafka topics for cart domain events.
const (
	TopicCartUpdated    = "shoplane.cart.updated"
	TopicCartCleared    = "shoplane.cart.cleared"
	TopicCartCheckedOut = "shoplane.cart.checked_out"
)

const (
	aggregateTypeCart = "cart"
	sourceCartService = "cart-service"
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Items      []CartItemData `json:"items"`
	ItemCount  int            `json:"item_count"`
	TotalMinor int64          `json:"total_minor"`
	Currency   string         `json:"currency"`
	Status     string         `json:"status"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ItemID         string `json:"item_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Quantity       int    `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// CartCheckedOutData is the payload for a cart.checked_out event.
type CartCheckedOutData struct {
	OrderID       string    `json:"order_id"`
	SessionID     string    `json:"session_id"`
	SubtotalMinor int64     `json:"subtotal_minor"`
	TaxMinor      int64     `json:"tax_minor"`
	TotalMinor    int64     `json:"total_minor"`
	Currency      string    `json:"currency"`
	ItemCount     int       `json:"item_count"`
	CheckoutAt    time.Time `json:"checkout_at"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the cart service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ItemID:         item.ItemID,
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			UnitPriceMinor: item.UnitPrice.AmountMinor,
			Quantity:       item.Quantity.Value(),
		}
	}

	data := CartUpdatedData{
		SessionID:  cart.SessionID.String(),
		Items:      items,
		ItemCount:  cart.TotalItemCount(),
		TotalMinor: cart.Total().AmountMinor,
		Currency:   string(cart.Currency),
		Status:     string(cart.Status),
	}

	return p.publish(ctx, TopicCartUpdated, cart.SessionID.String(), data)
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID domain.SessionID) error {
	return p.publish(ctx, TopicCartCleared, sessionID.String(), CartClearedData{
		SessionID: sessionID.String(),
	})
}

// PublishCartCheckedOut publishes a cart.checked_out event from the derived
// order summary.
func (p *Producer) PublishCartCheckedOut(ctx context.Context, result domain.CheckoutResult) error {
	return p.publish(ctx, TopicCartCheckedOut, result.SessionID.String(), CartCheckedOutData{
		OrderID:       result.OrderID,
		SessionID:     result.SessionID.String(),
		SubtotalMinor: result.Subtotal.AmountMinor,
		TaxMinor:      result.Tax.AmountMinor,
		TotalMinor:    result.Total.AmountMinor,
		Currency:      string(result.Total.Currency),
		ItemCount:     result.ItemCount,
		CheckoutAt:    result.CheckoutAt,
	})
}

func (p *Producer) publish(ctx context.Context, topic, sessionID string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, sessionID, aggregateTypeCart, sourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	// Carry the request's correlation id so consumers can tie the event back
	// to the originating HTTP request.
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published cart event",
		slog.String("topic", topic),
		slog.String("session_id", sessionID),
	)

	return nil
}
