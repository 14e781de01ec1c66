package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/cart-service/internal/domain"
	"github.com/shoplane/cart-service/internal/event"
	"github.com/shoplane/cart-service/internal/service"
	apperrors "github.com/shoplane/cart-service/pkg/errors"
	"github.com/shoplane/cart-service/pkg/httputil"
	pkgkafka "github.com/shoplane/cart-service/pkg/kafka"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// ============================================================================
// Mock CartRepository
// ============================================================================

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID domain.SessionID) (domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID domain.SessionID) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Exists(ctx context.Context, sessionID domain.SessionID) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	kafkaCfg.Async = true
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testCartHandler(repo *mockCartRepository) *CartHandler {
	logger := testLogger()
	svc := service.NewCartService(
		repo,
		testEventProducer(),
		logger,
		func() time.Time { return testNow },
		func() string { return "generated-id" },
		0.08,
	)
	return NewCartHandler(svc, logger)
}

// setupCartRouter creates a chi router matching the production route layout,
// including the ContentTypeJSON middleware.
func setupCartRouter(handler *CartHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/carts/{sessionID}", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", handler.GetCart)
		r.Head("/", handler.CartExists)
		r.Delete("/", handler.DeleteCart)

		r.Post("/items", handler.AddItem)
		r.Delete("/items", handler.ClearCart)
		r.Put("/items/{itemID}", handler.UpdateItemQuantity)
		r.Delete("/items/{itemID}", handler.RemoveItem)

		r.Post("/checkout", handler.Checkout)
	})
	return r
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// sampleCart returns a cart with one item, suitable for test assertions.
func sampleCart() domain.Cart {
	return domain.Cart{
		SessionID: "sess-123",
		Items: []domain.CartItem{
			{
				ItemID:      "item-1",
				ProductID:   "prod-1",
				ProductName: "Widget",
				UnitPrice:   domain.Money{AmountMinor: 1990, Currency: domain.USD},
				Quantity:    2,
				AddedAt:     testNow,
			},
		},
		Status:    domain.StatusActive,
		Currency:  domain.USD,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func doRequest(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func notFound(sessionID string) error {
	return apperrors.NotFound("cart", sessionID)
}

// ============================================================================
// GET /api/v1/carts/{sessionID}
// ============================================================================

func TestGetCart_Existing(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/carts/sess-123", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)

	repo.AssertExpectations(t)
}

func TestGetCart_MissingReturnsEmptyCart(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(domain.Cart{}, notFound("sess-123"))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/carts/sess-123", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Cart `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.SessionID("sess-123"), resp.Data.SessionID)
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, domain.StatusActive, resp.Data.Status)

	repo.AssertExpectations(t)
}

func TestGetCart_InvalidSessionID(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/carts/bad%20session", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_IDENTIFIER", resp.Error.Code)
}

// ============================================================================
// HEAD /api/v1/carts/{sessionID}
// ============================================================================

func TestCartExists_Found(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Exists", mock.Anything, domain.SessionID("sess-123")).Return(true, nil)

	rec := doRequest(t, router, http.MethodHead, "/api/v1/carts/sess-123", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestCartExists_Missing(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Exists", mock.Anything, domain.SessionID("sess-123")).Return(false, nil)

	rec := doRequest(t, router, http.MethodHead, "/api/v1/carts/sess-123", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

// ============================================================================
// POST /api/v1/carts/{sessionID}/items
// ============================================================================

func TestAddItem_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(domain.Cart{}, notFound("sess-123"))
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/items", AddItemRequest{
		ProductID:      "prod-1",
		ProductName:    "Widget",
		UnitPriceMinor: 1990,
		Quantity:       2,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Cart `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "generated-id", resp.Data.Items[0].ItemID)
	assert.Equal(t, 2, resp.Data.Items[0].Quantity.Value())

	repo.AssertExpectations(t)
}

func TestAddItem_ValidationError(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	// Missing product_id and product_name.
	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/items", AddItemRequest{
		UnitPriceMinor: 1990,
		Quantity:       2,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "ProductID")

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddItem_FractionalQuantity(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(domain.Cart{}, notFound("sess-123"))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/items", AddItemRequest{
		ProductID:      "prod-1",
		ProductName:    "Widget",
		UnitPriceMinor: 1990,
		Quantity:       1.5,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "QUANTITY_NOT_INTEGER", resp.Error.Code)
}

func TestAddItem_MaxItemsExceeded(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	full := sampleCart()
	full.Items = nil
	for i := 0; i < domain.MaxItemsPerCart; i++ {
		full.Items = append(full.Items, domain.CartItem{
			ItemID:      "item-" + string(rune('a'+i)),
			ProductID:   domain.ProductID("prod-" + string(rune('a'+i))),
			ProductName: "Widget",
			UnitPrice:   domain.Money{AmountMinor: 100, Currency: domain.USD},
			Quantity:    1,
			AddedAt:     testNow,
		})
	}
	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(full, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/items", AddItemRequest{
		ProductID:      "prod-overflow",
		ProductName:    "One Too Many",
		UnitPriceMinor: 100,
		Quantity:       1,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MAX_ITEMS_EXCEEDED", resp.Error.Code)
}

func TestAddItem_CheckedOutCart(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	existing := sampleCart()
	existing.Status = domain.StatusCheckedOut
	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(existing, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/items", AddItemRequest{
		ProductID:      "prod-2",
		ProductName:    "Widget",
		UnitPriceMinor: 1990,
		Quantity:       1,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CART_NOT_ACTIVE", resp.Error.Code)
}

func TestAddItem_UnsupportedMediaType(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/sess-123/items", bytes.NewBufferString("product_id=prod-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// PUT /api/v1/carts/{sessionID}/items/{itemID}
// ============================================================================

func TestUpdateItemQuantity_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/carts/sess-123/items/item-1", UpdateQuantityRequest{
		Quantity: 5,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Cart `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 5, resp.Data.Items[0].Quantity.Value())

	repo.AssertExpectations(t)
}

func TestUpdateItemQuantity_ItemNotFound(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/carts/sess-123/items/item-999", UpdateQuantityRequest{
		Quantity: 5,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ITEM_NOT_FOUND", resp.Error.Code)
}

// ============================================================================
// DELETE /api/v1/carts/{sessionID}/items/{itemID}
// ============================================================================

func TestRemoveItem_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/carts/sess-123/items/item-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Cart `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Data.Items)

	repo.AssertExpectations(t)
}

func TestRemoveItem_NotFound(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/carts/sess-123/items/item-999", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// DELETE /api/v1/carts/{sessionID}/items (clear)
// ============================================================================

func TestClearCart_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/carts/sess-123/items", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Cart `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, domain.StatusActive, resp.Data.Status)

	repo.AssertExpectations(t)
}

// ============================================================================
// POST /api/v1/carts/{sessionID}/checkout
// ============================================================================

func TestCheckout_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/checkout", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.CheckoutResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "generated-id", resp.Data.OrderID)
	// 1990 * 2 = 3980 subtotal, 0.08 default rate -> 318 tax (318.4 rounded).
	assert.Equal(t, int64(3980), resp.Data.Subtotal.AmountMinor)
	assert.Equal(t, int64(318), resp.Data.Tax.AmountMinor)
	assert.Equal(t, int64(4298), resp.Data.Total.AmountMinor)

	repo.AssertExpectations(t)
}

func TestCheckout_TaxRateOverride(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	rate := 0.10
	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/checkout", CheckoutRequest{
		TaxRate: &rate,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.CheckoutResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(398), resp.Data.Tax.AmountMinor)

	repo.AssertExpectations(t)
}

func TestCheckout_ChunkedBodyTaxRate(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(sampleCart(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.Cart")).Return(nil)

	// A body reader of unknown length leaves ContentLength at -1, the same as
	// a chunked request; the tax rate override must still be honored.
	body := io.MultiReader(strings.NewReader(`{"tax_rate":0}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/sess-123/checkout", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.CheckoutResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(0), resp.Data.Tax.AmountMinor)
	assert.Equal(t, resp.Data.Subtotal.AmountMinor, resp.Data.Total.AmountMinor)

	repo.AssertExpectations(t)
}

func TestCheckout_MalformedBody(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/sess-123/checkout", strings.NewReader("{{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckout_EmptyCart(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	empty := sampleCart()
	empty.Items = []domain.CartItem{}
	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(empty, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/checkout", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_CART", resp.Error.Code)
}

func TestCheckout_AlreadyCheckedOut(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	done := sampleCart()
	done.Status = domain.StatusCheckedOut
	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(done, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/checkout", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CART_ALREADY_CHECKED_OUT", resp.Error.Code)
}

func TestCheckout_CartNotFound(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Get", mock.Anything, domain.SessionID("sess-123")).Return(domain.Cart{}, notFound("sess-123"))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/carts/sess-123/checkout", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

// ============================================================================
// DELETE /api/v1/carts/{sessionID}
// ============================================================================

func TestDeleteCart_Success(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Delete", mock.Anything, domain.SessionID("sess-123")).Return(true, nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/carts/sess-123", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteCart_NotFound(t *testing.T) {
	repo := new(mockCartRepository)
	router := setupCartRouter(testCartHandler(repo))

	repo.On("Delete", mock.Anything, domain.SessionID("sess-123")).Return(false, nil)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/carts/sess-123", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}
