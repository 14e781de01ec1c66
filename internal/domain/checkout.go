package domain

import (
	"math"
	"time"
)

// CheckoutLine is one line of a checkout summary.
type CheckoutLine struct {
	ProductID      ProductID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceMinor int64     `json:"unit_price_minor"`
	LineTotalMinor int64     `json:"line_total_minor"`
}

// CheckoutResult is a read-only summary derived once from a checked-out cart.
// It is never persisted here; handing it to order management is the caller's
// concern.
type CheckoutResult struct {
	OrderID    string         `json:"order_id"`
	SessionID  SessionID      `json:"session_id"`
	Lines      []CheckoutLine `json:"lines"`
	Subtotal   Money          `json:"subtotal"`
	Tax        Money          `json:"tax"`
	Total      Money          `json:"total"`
	ItemCount  int            `json:"item_count"`
	CheckoutAt time.Time      `json:"checkout_at"`
}

// NewCheckoutResult derives the order summary from a checked-out cart.
// Tax is subtotal times taxRate, rounded half-up to a whole minor unit.
func NewCheckoutResult(orderID string, cart Cart, taxRate float64, now time.Time) (CheckoutResult, error) {
	if cart.Status != StatusCheckedOut {
		return CheckoutResult{}, newError(KindCartNotCheckedOut, "cart %s is %s; only a checked-out cart can produce an order summary", cart.SessionID, cart.Status)
	}
	if math.IsNaN(taxRate) || math.IsInf(taxRate, 0) || taxRate < 0 {
		return CheckoutResult{}, newError(KindInvalidTaxRate, "tax rate must be a non-negative finite number, got %g", taxRate)
	}

	lines := make([]CheckoutLine, len(cart.Items))
	subtotal := ZeroMoney(cart.Currency)
	for i, item := range cart.Items {
		lineTotal := item.LineTotal()
		lines[i] = CheckoutLine{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity.Value(),
			UnitPriceMinor: item.UnitPrice.AmountMinor,
			LineTotalMinor: lineTotal.AmountMinor,
		}
		subtotal.AmountMinor += lineTotal.AmountMinor
	}

	tax := Money{
		AmountMinor: int64(math.Round(float64(subtotal.AmountMinor) * taxRate)),
		Currency:    cart.Currency,
	}
	total, err := subtotal.Add(tax)
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{
		OrderID:    orderID,
		SessionID:  cart.SessionID,
		Lines:      lines,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		ItemCount:  cart.TotalItemCount(),
		CheckoutAt: now,
	}, nil
}
