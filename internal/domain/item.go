package domain

import (
	"strings"
	"time"
)

// CartItem is a single cart line. Name and unit price are a snapshot taken
// when the product entered the cart, decoupled from later catalog changes.
// Items have no identity outside their owning Cart.
type CartItem struct {
	ItemID      string    `json:"item_id"`
	ProductID   ProductID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   Money     `json:"unit_price"`
	Quantity    Quantity  `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// NewItemInput holds the parameters for constructing a cart line.
type NewItemInput struct {
	ItemID         string
	ProductID      string
	ProductName    string
	UnitPriceMinor int64
	Currency       Currency
	Quantity       int
}

// NewCartItem builds a cart line, validating every field through its value
// object constructor. ItemID must already be assigned; the service layer
// fills it from its id generator when the caller did not supply one.
func NewCartItem(in NewItemInput, now time.Time) (CartItem, error) {
	if strings.TrimSpace(in.ItemID) == "" {
		return CartItem{}, newError(KindEmptyIdentifier, "item id must not be empty")
	}

	productID, err := NewProductID(in.ProductID)
	if err != nil {
		return CartItem{}, err
	}

	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return CartItem{}, newError(KindEmptyName, "product name must not be empty")
	}

	price, err := NewMoney(in.UnitPriceMinor, in.Currency)
	if err != nil {
		return CartItem{}, err
	}

	quantity, err := NewQuantity(in.Quantity)
	if err != nil {
		return CartItem{}, err
	}

	return CartItem{
		ItemID:      strings.TrimSpace(in.ItemID),
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   price,
		Quantity:    quantity,
		AddedAt:     now,
	}, nil
}

// WithQuantity returns a copy of the line with the quantity replaced.
// Identity, snapshot price/name, and AddedAt are preserved.
func (i CartItem) WithQuantity(q Quantity) CartItem {
	i.Quantity = q
	return i
}

// IncreaseQuantity returns a copy with delta added to the quantity.
func (i CartItem) IncreaseQuantity(delta Quantity) (CartItem, error) {
	q, err := i.Quantity.Add(delta)
	if err != nil {
		return CartItem{}, err
	}
	return i.WithQuantity(q), nil
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() Money {
	return Money{
		AmountMinor: i.UnitPrice.AmountMinor * int64(i.Quantity),
		Currency:    i.UnitPrice.Currency,
	}
}

// SameProduct reports whether two lines refer to the same catalog product.
func (i CartItem) SameProduct(o CartItem) bool {
	return i.ProductID == o.ProductID
}
