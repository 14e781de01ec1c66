package memory

import (
	"context"
	"sync"

	"github.com/shoplane/cart-service/internal/domain"
	apperrors "github.com/shoplane/cart-service/pkg/errors"
)

// CartRepository is an in-memory repository.CartRepository, used for local
// development and tests. It is a plain keyed store: no eviction, no TTL.
// Carts are copied on the way in and out so callers can never alias the
// stored items slice.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[domain.SessionID]domain.Cart
}

// NewCartRepository creates an empty in-memory cart repository.
func NewCartRepository() *CartRepository {
	return &CartRepository{
		carts: make(map[domain.SessionID]domain.Cart),
	}
}

// Get retrieves a cart by session ID.
func (r *CartRepository) Get(_ context.Context, sessionID domain.SessionID) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[sessionID]
	if !ok {
		return domain.Cart{}, apperrors.NotFound("cart", sessionID.String())
	}
	return copyCart(cart), nil
}

// Save persists a cart, overwriting any existing cart for the session.
func (r *CartRepository) Save(_ context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.SessionID] = copyCart(cart)
	return nil
}

// Delete removes a cart, reporting whether one was stored.
func (r *CartRepository) Delete(_ context.Context, sessionID domain.SessionID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.carts[sessionID]
	delete(r.carts, sessionID)
	return ok, nil
}

// Exists reports whether a cart is stored for the session.
func (r *CartRepository) Exists(_ context.Context, sessionID domain.SessionID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.carts[sessionID]
	return ok, nil
}

func copyCart(cart domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return cart
}
