package repository

import (
	"context"

	"github.com/shoplane/cart-service/internal/domain"
)

// CartRepository defines the persistence contract for carts. Save followed by
// Get must round-trip every cart and item field losslessly.
type CartRepository interface {
	// Get retrieves a cart by session ID. A missing cart yields an error
	// matching apperrors.ErrNotFound.
	Get(ctx context.Context, sessionID domain.SessionID) (domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the session.
	Save(ctx context.Context, cart domain.Cart) error

	// Delete removes a cart. Reports whether a cart was actually deleted.
	Delete(ctx context.Context, sessionID domain.SessionID) (bool, error)

	// Exists reports whether a cart is stored for the session.
	Exists(ctx context.Context, sessionID domain.SessionID) (bool, error)
}
