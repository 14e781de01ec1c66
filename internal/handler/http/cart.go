package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shoplane/cart-service/internal/domain"
	"github.com/shoplane/cart-service/internal/service"
	"github.com/shoplane/cart-service/pkg/httputil"
	"github.com/shoplane/cart-service/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON body for adding an item to the cart.
// Quantity is a float so a fractional value reaches the domain and fails
// with a precise error instead of a generic JSON decode failure.
type AddItemRequest struct {
	ItemID         string  `json:"item_id"`
	ProductID      string  `json:"product_id" validate:"required,max=50"`
	ProductName    string  `json:"product_name" validate:"required,max=500"`
	UnitPriceMinor int64   `json:"unit_price_minor" validate:"gte=0"`
	Quantity       float64 `json:"quantity" validate:"required"`
}

// UpdateQuantityRequest is the JSON body for replacing an item's quantity.
type UpdateQuantityRequest struct {
	Quantity float64 `json:"quantity" validate:"required"`
}

// CheckoutRequest is the JSON body for checking out; the tax rate is
// optional and falls back to the service default.
type CheckoutRequest struct {
	TaxRate *float64 `json:"tax_rate" validate:"omitempty,gte=0,lte=1"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/carts/{sessionID}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// CartExists handles HEAD /api/v1/carts/{sessionID}
func (h *CartHandler) CartExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.CartExists(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// AddItem handles POST /api/v1/carts/{sessionID}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), chi.URLParam(r, "sessionID"), service.AddItemInput{
		ItemID:         req.ItemID,
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		UnitPriceMinor: req.UnitPriceMinor,
		Quantity:       req.Quantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// UpdateItemQuantity handles PUT /api/v1/carts/{sessionID}/items/{itemID}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(),
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveItem handles DELETE /api/v1/carts/{sessionID}/items/{itemID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(),
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/carts/{sessionID}/items
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Checkout handles POST /api/v1/carts/{sessionID}/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	// An empty body means "default tax rate". Chunked requests carry no
	// Content-Length, so attempt the decode and treat only EOF as empty.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Checkout(r.Context(), chi.URLParam(r, "sessionID"), service.CheckoutInput{
		TaxRate: req.TaxRate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// DeleteCart handles DELETE /api/v1/carts/{sessionID}
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCart(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// --- Helpers ---

func (h *CartHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domErr *domain.Error
	if errors.As(err, &domErr) {
		httputil.WriteJSON(w, statusForKind(domErr.Kind), httputil.Response{
			Error: &httputil.ErrorResponse{Code: string(domErr.Kind), Message: domErr.Message},
		})
		return
	}

	httputil.WriteError(w, r, err, h.logger)
}

// statusForKind maps domain rule violations onto HTTP statuses: malformed
// values are 400s, missing things 404s, state conflicts 409s, and rules a
// well-formed request can still break are 422s.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindItemNotFound:
		return http.StatusNotFound
	case domain.KindCartNotActive, domain.KindCartAlreadyCheckedOut, domain.KindCartNotCheckedOut:
		return http.StatusConflict
	case domain.KindMaxItemsExceeded, domain.KindEmptyCart, domain.KindQuantityAboveMaximum:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
