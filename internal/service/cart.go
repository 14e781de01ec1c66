package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shoplane/cart-service/internal/domain"
	"github.com/shoplane/cart-service/internal/event"
	"github.com/shoplane/cart-service/internal/repository"
	apperrors "github.com/shoplane/cart-service/pkg/errors"
)

// Clock supplies the current time. Injected so tests can pin timestamps.
type Clock func() time.Time

// IDGenerator supplies unique identifiers for new items and orders.
// Injected so tests can assert exact ids.
type IDGenerator func() string

// SystemClock returns the current UTC time.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator returns a random UUID string.
func UUIDGenerator() string {
	return uuid.New().String()
}

// AddItemInput holds the parameters for adding an item to a cart. Shape
// validation happens on the transport DTOs; the domain constructors enforce
// the business rules.
type AddItemInput struct {
	ItemID         string
	ProductID      string
	ProductName    string
	UnitPriceMinor int64
	Quantity       float64
}

// CheckoutInput holds the parameters for checking out a cart.
type CheckoutInput struct {
	TaxRate *float64
}

// CartService implements the cart use cases: load a cart, apply one pure
// aggregate transformation, persist the result, publish the change. Event
// publish failures are logged but never fail the request.
type CartService struct {
	repo           repository.CartRepository
	producer       *event.Producer
	logger         *slog.Logger
	clock          Clock
	ids            IDGenerator
	defaultTaxRate float64
}

// NewCartService creates a new cart service.
func NewCartService(
	repo repository.CartRepository,
	producer *event.Producer,
	logger *slog.Logger,
	clock Clock,
	ids IDGenerator,
	defaultTaxRate float64,
) *CartService {
	return &CartService{
		repo:           repo,
		producer:       producer,
		logger:         logger,
		clock:          clock,
		ids:            ids,
		defaultTaxRate: defaultTaxRate,
	}
}

// GetCart retrieves the cart for a session. If none is stored, an empty
// active cart is returned without being persisted; it only gets saved once
// the first item lands in it.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	sid, err := domain.NewSessionID(sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.repo.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID, domain.USD, s.clock())
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds a product to the session's cart, creating the cart on first
// use. Adding a product already in the cart merges quantities.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (domain.Cart, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	quantity, err := domain.ParseQuantity(input.Quantity)
	if err != nil {
		return domain.Cart{}, err
	}

	itemID := input.ItemID
	if itemID == "" {
		itemID = s.ids()
	}

	updated, err := cart.AddItem(domain.NewItemInput{
		ItemID:         itemID,
		ProductID:      input.ProductID,
		ProductName:    input.ProductName,
		UnitPriceMinor: input.UnitPriceMinor,
		Quantity:       quantity.Value(),
	}, s.clock())
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, updated)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", quantity.Value()),
		slog.Int("distinct_items", len(updated.Items)),
	)

	return updated, nil
}

// RemoveItem removes a line from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (domain.Cart, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	updated, err := cart.RemoveItem(itemID, s.clock())
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, updated)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
	)

	return updated, nil
}

// UpdateItemQuantity replaces a line's quantity.
func (s *CartService) UpdateItemQuantity(ctx context.Context, sessionID, itemID string, quantity float64) (domain.Cart, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	q, err := domain.ParseQuantity(quantity)
	if err != nil {
		return domain.Cart{}, err
	}

	updated, err := cart.UpdateItemQuantity(itemID, q.Value(), s.clock())
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, updated)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", sessionID),
		slog.String("item_id", itemID),
		slog.Int("quantity", q.Value()),
	)

	return updated, nil
}

// ClearCart removes every line from the session's cart. The cart record
// itself stays, still active.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	updated, err := cart.Clear(s.clock())
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, updated.SessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return updated, nil
}

// Checkout transitions the cart to checked_out, persists it, and derives the
// order summary. The tax rate defaults to the configured rate unless the
// request overrides it.
func (s *CartService) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (domain.CheckoutResult, error) {
	cart, err := s.loadCart(ctx, sessionID)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	now := s.clock()

	checkedOut, err := cart.Checkout(now)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	taxRate := s.defaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	result, err := domain.NewCheckoutResult(s.ids(), checkedOut, taxRate, now)
	if err != nil {
		return domain.CheckoutResult{}, err
	}

	if err := s.repo.Save(ctx, checkedOut); err != nil {
		return domain.CheckoutResult{}, fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartCheckedOut(ctx, result); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.checked_out event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart checked out",
		slog.String("session_id", sessionID),
		slog.String("order_id", result.OrderID),
		slog.Int64("total_minor", result.Total.AmountMinor),
		slog.Int("item_count", result.ItemCount),
	)

	return result, nil
}

// CartExists reports whether a cart is stored for the session.
func (s *CartService) CartExists(ctx context.Context, sessionID string) (bool, error) {
	sid, err := domain.NewSessionID(sessionID)
	if err != nil {
		return false, err
	}

	exists, err := s.repo.Exists(ctx, sid)
	if err != nil {
		return false, fmt.Errorf("check cart exists: %w", err)
	}
	return exists, nil
}

// DeleteCart removes the session's cart record entirely.
func (s *CartService) DeleteCart(ctx context.Context, sessionID string) error {
	sid, err := domain.NewSessionID(sessionID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, sid)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("cart", sessionID)
	}

	s.logger.InfoContext(ctx, "cart deleted",
		slog.String("session_id", sessionID),
	)

	return nil
}

// loadCart fetches an existing cart; a missing cart is a NotFound error, not
// a fresh cart, because every caller here needs something to transform.
func (s *CartService) loadCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	sid, err := domain.NewSessionID(sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.repo.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Cart{}, err
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) publishUpdated(ctx context.Context, cart domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", cart.SessionID.String()),
			slog.String("error", err.Error()),
		)
	}
}
