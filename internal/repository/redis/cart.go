package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoplane/cart-service/internal/domain"
	apperrors "github.com/shoplane/cart-service/pkg/errors"
)

const keyPrefix = "cart:"

// cartRecord is the stored shape of a cart. Kept separate from the domain
// type so the wire format can evolve independently of the aggregate.
type cartRecord struct {
	SessionID string       `json:"session_id"`
	Items     []itemRecord `json:"items"`
	Status    string       `json:"status"`
	Currency  string       `json:"currency"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type itemRecord struct {
	ItemID         string    `json:"item_id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	UnitPriceMinor int64     `json:"unit_price_minor"`
	Currency       string    `json:"currency"`
	Quantity       int       `json:"quantity"`
	AddedAt        time.Time `json:"added_at"`
}

// CartRepository implements repository.CartRepository using Redis. Entries
// expire after the configured TTL; an expired cart simply goes missing, which
// is how abandonment surfaces at this layer.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by session ID from Redis.
func (r *CartRepository) Get(ctx context.Context, sessionID domain.SessionID) (domain.Cart, error) {
	key := keyPrefix + sessionID.String()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.Cart{}, apperrors.NotFound("cart", sessionID.String())
		}
		return domain.Cart{}, fmt.Errorf("redis get cart: %w", err)
	}

	var rec cartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart: %w", err)
	}

	cart, err := rec.toDomain()
	if err != nil {
		return domain.Cart{}, fmt.Errorf("reconstitute cart %s: %w", sessionID, err)
	}
	return cart, nil
}

// Save persists a cart to Redis with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) error {
	key := keyPrefix + cart.SessionID.String()

	data, err := json.Marshal(toRecord(cart))
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes a cart from Redis by session ID.
func (r *CartRepository) Delete(ctx context.Context, sessionID domain.SessionID) (bool, error) {
	deleted, err := r.client.Del(ctx, keyPrefix+sessionID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis del cart: %w", err)
	}
	return deleted > 0, nil
}

// Exists reports whether a cart is stored for the session.
func (r *CartRepository) Exists(ctx context.Context, sessionID domain.SessionID) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+sessionID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists cart: %w", err)
	}
	return n > 0, nil
}

func toRecord(cart domain.Cart) cartRecord {
	items := make([]itemRecord, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = itemRecord{
			ItemID:         item.ItemID,
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			UnitPriceMinor: item.UnitPrice.AmountMinor,
			Currency:       string(item.UnitPrice.Currency),
			Quantity:       item.Quantity.Value(),
			AddedAt:        item.AddedAt,
		}
	}
	return cartRecord{
		SessionID: cart.SessionID.String(),
		Items:     items,
		Status:    string(cart.Status),
		Currency:  string(cart.Currency),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

func (rec cartRecord) toDomain() (domain.Cart, error) {
	items := make([]domain.CartItem, len(rec.Items))
	for i, ir := range rec.Items {
		items[i] = domain.CartItem{
			ItemID:      ir.ItemID,
			ProductID:   domain.ProductID(ir.ProductID),
			ProductName: ir.ProductName,
			UnitPrice: domain.Money{
				AmountMinor: ir.UnitPriceMinor,
				Currency:    domain.Currency(ir.Currency),
			},
			Quantity: domain.Quantity(ir.Quantity),
			AddedAt:  ir.AddedAt,
		}
	}
	return domain.ReconstituteCart(
		rec.SessionID,
		items,
		domain.Status(rec.Status),
		domain.Currency(rec.Currency),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
}
