package domain

import "time"

// Status is the cart lifecycle state. Carts start active; checked_out and
// abandoned are both terminal for mutation. Nothing in the domain transitions
// a cart to abandoned — that is reserved for an external TTL sweep.
type Status string

const (
	StatusActive     Status = "active"
	StatusCheckedOut Status = "checked_out"
	StatusAbandoned  Status = "abandoned"
)

// MaxItemsPerCart is the maximum number of distinct products in one cart.
const MaxItemsPerCart = 20

// Cart is the aggregate root for a shopper's cart. All mutators are pure:
// they return a new Cart value and never modify the receiver, so a caller
// that hits an error still holds the untouched original.
type Cart struct {
	SessionID SessionID  `json:"session_id"`
	Items     []CartItem `json:"items"`
	Status    Status     `json:"status"`
	Currency  Currency   `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty active cart for the given session.
func NewCart(sessionID string, currency Currency, now time.Time) (Cart, error) {
	sid, err := NewSessionID(sessionID)
	if err != nil {
		return Cart{}, err
	}
	if _, err := ParseCurrency(string(currency)); err != nil {
		return Cart{}, err
	}
	return Cart{
		SessionID: sid,
		Items:     []CartItem{},
		Status:    StatusActive,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReconstituteCart rebuilds a cart from persisted fields. The session id,
// status and currency are validated; item data is trusted as already valid
// since it could only have been persisted through the constructors.
func ReconstituteCart(sessionID string, items []CartItem, status Status, currency Currency, createdAt, updatedAt time.Time) (Cart, error) {
	sid, err := NewSessionID(sessionID)
	if err != nil {
		return Cart{}, err
	}
	switch status {
	case StatusActive, StatusCheckedOut, StatusAbandoned:
	default:
		return Cart{}, newError(KindInvalidIdentifier, "unknown cart status %q", status)
	}
	if _, err := ParseCurrency(string(currency)); err != nil {
		return Cart{}, err
	}
	if items == nil {
		items = []CartItem{}
	}
	return Cart{
		SessionID: sid,
		Items:     items,
		Status:    status,
		Currency:  currency,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// AddItem adds a product to the cart. Adding a product already in the cart
// merges by increasing the existing line's quantity in place, preserving its
// position, item id, and snapshot price/name. New lines always use the
// cart's currency.
func (c Cart) AddItem(in NewItemInput, now time.Time) (Cart, error) {
	if err := c.requireActive(); err != nil {
		return Cart{}, err
	}

	productID, err := NewProductID(in.ProductID)
	if err != nil {
		return Cart{}, err
	}

	if idx := c.itemIndexByProduct(productID); idx >= 0 {
		delta, err := NewQuantity(in.Quantity)
		if err != nil {
			return Cart{}, err
		}
		merged, err := c.Items[idx].IncreaseQuantity(delta)
		if err != nil {
			return Cart{}, err
		}
		items := c.cloneItems()
		items[idx] = merged
		return c.withItems(items, now), nil
	}

	if len(c.Items) >= MaxItemsPerCart {
		return Cart{}, newError(KindMaxItemsExceeded, "cart %s already holds the maximum of %d items", c.SessionID, MaxItemsPerCart)
	}

	in.Currency = c.Currency
	item, err := NewCartItem(in, now)
	if err != nil {
		return Cart{}, err
	}

	items := c.cloneItems()
	items = append(items, item)
	return c.withItems(items, now), nil
}

// RemoveItem removes the line with the given item id.
func (c Cart) RemoveItem(itemID string, now time.Time) (Cart, error) {
	if err := c.requireActive(); err != nil {
		return Cart{}, err
	}

	idx := c.itemIndexByID(itemID)
	if idx < 0 {
		return Cart{}, newError(KindItemNotFound, "item %s not found in cart %s", itemID, c.SessionID)
	}

	items := c.cloneItems()
	items = append(items[:idx], items[idx+1:]...)
	return c.withItems(items, now), nil
}

// UpdateItemQuantity replaces a line's quantity, keeping its position.
func (c Cart) UpdateItemQuantity(itemID string, quantity int, now time.Time) (Cart, error) {
	if err := c.requireActive(); err != nil {
		return Cart{}, err
	}

	idx := c.itemIndexByID(itemID)
	if idx < 0 {
		return Cart{}, newError(KindItemNotFound, "item %s not found in cart %s", itemID, c.SessionID)
	}

	q, err := NewQuantity(quantity)
	if err != nil {
		return Cart{}, err
	}

	items := c.cloneItems()
	items[idx] = items[idx].WithQuantity(q)
	return c.withItems(items, now), nil
}

// Clear removes every line from the cart.
func (c Cart) Clear(now time.Time) (Cart, error) {
	if err := c.requireActive(); err != nil {
		return Cart{}, err
	}
	return c.withItems([]CartItem{}, now), nil
}

// Checkout transitions the cart to checked_out. The transition is one-way:
// a second checkout fails rather than being a no-op.
func (c Cart) Checkout(now time.Time) (Cart, error) {
	if c.Status != StatusActive {
		return Cart{}, newError(KindCartAlreadyCheckedOut, "cart %s is %s and can no longer be checked out", c.SessionID, c.Status)
	}
	if c.IsEmpty() {
		return Cart{}, newError(KindEmptyCart, "cart %s has no items to check out", c.SessionID)
	}

	out := c
	out.Items = c.cloneItems()
	out.Status = StatusCheckedOut
	out.UpdatedAt = now
	return out, nil
}

// Total sums the line totals, starting from zero in the cart's currency.
func (c Cart) Total() Money {
	total := ZeroMoney(c.Currency)
	for _, item := range c.Items {
		total.AmountMinor += item.LineTotal().AmountMinor
	}
	return total
}

// TotalItemCount sums the quantities across all lines.
func (c Cart) TotalItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity.Value()
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CanCheckout reports whether Checkout would be allowed to proceed.
func (c Cart) CanCheckout() bool {
	return c.Status == StatusActive && !c.IsEmpty()
}

// FindItemByProductID returns the line for a product, if present.
func (c Cart) FindItemByProductID(productID ProductID) (CartItem, bool) {
	if idx := c.itemIndexByProduct(productID); idx >= 0 {
		return c.Items[idx], true
	}
	return CartItem{}, false
}

// FindItemByID returns the line with the given item id, if present.
func (c Cart) FindItemByID(itemID string) (CartItem, bool) {
	if idx := c.itemIndexByID(itemID); idx >= 0 {
		return c.Items[idx], true
	}
	return CartItem{}, false
}

func (c Cart) requireActive() error {
	if c.Status != StatusActive {
		return newError(KindCartNotActive, "cart %s is %s and cannot be modified", c.SessionID, c.Status)
	}
	return nil
}

func (c Cart) itemIndexByProduct(productID ProductID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) itemIndexByID(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (c Cart) cloneItems() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}

func (c Cart) withItems(items []CartItem, now time.Time) Cart {
	out := c
	out.Items = items
	out.UpdatedAt = now
	return out
}
