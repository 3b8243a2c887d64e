package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	"github.com/kadekedwin/billforge/services/cart-service/controllers"
	"github.com/kadekedwin/billforge/services/cart-service/database"
	"github.com/kadekedwin/billforge/services/cart-service/models"
	"github.com/kadekedwin/billforge/services/cart-service/routes"
	"github.com/kadekedwin/billforge/services/common/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSNS struct {
	publishErr error
	messages   [][]byte
}

func (m *mockSNS) Publish(_ context.Context, _ string, message []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.messages = append(m.messages, message)
	return nil
}

func setupRouter(publisher awspkg.SNSPublisher, topic string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewCartController(database.NewMemoryCartRepository(), publisher, topic, nil, zap.NewNop())
	routes.RegisterCartRoutes(r, c, middleware.SessionIdentity("", nil))
	return r
}

func do(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "session-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) models.CartResponse {
	t.Helper()
	var resp models.CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCart_AddRemoveClear(t *testing.T) {
	r := setupRouter(&mockSNS{}, "arn:topic")

	do(r, http.MethodPost, "/cart/items/espresso", nil)
	w := do(r, http.MethodPost, "/cart/items/espresso", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeCart(t, w).Items["espresso"])

	w = do(r, http.MethodDelete, "/cart/items/espresso", nil)
	assert.Equal(t, 1, decodeCart(t, w).Items["espresso"])

	w = do(r, http.MethodDelete, "/cart/items/espresso", nil)
	resp := decodeCart(t, w)
	_, present := resp.Items["espresso"]
	assert.False(t, present)
	assert.Equal(t, 0, resp.TotalItems)

	do(r, http.MethodPost, "/cart/items/muffin", nil)
	w = do(r, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, do(r, http.MethodGet, "/cart", nil)).Items)
}

func TestCart_RequiresSession(t *testing.T) {
	r := setupRouter(&mockSNS{}, "arn:topic")
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCart_Quote(t *testing.T) {
	r := setupRouter(&mockSNS{}, "arn:topic")
	do(r, http.MethodPost, "/cart/items/a", nil)
	do(r, http.MethodPost, "/cart/items/a", nil)
	do(r, http.MethodPost, "/cart/items/b", nil)

	body, _ := json.Marshal(models.QuoteRequest{Prices: map[string]string{"a": "1.25", "b": "0.50"}})
	w := do(r, http.MethodPost, "/cart/quote", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["totalItems"])
	assert.Equal(t, "3.00", resp["totalAmount"])

	bad, _ := json.Marshal(models.QuoteRequest{Prices: map[string]string{"a": "abc"}})
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/cart/quote", bad).Code)
}

func TestCheckout_PublishesAndClears(t *testing.T) {
	sns := &mockSNS{}
	r := setupRouter(sns, "arn:topic")
	do(r, http.MethodPost, "/cart/items/bread", nil)

	w := do(r, http.MethodPost, "/cart/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sns.messages, 1)

	var event models.CheckoutEvent
	require.NoError(t, json.Unmarshal(sns.messages[0], &event))
	assert.Equal(t, models.CheckoutRequestedEvent, event.EventType)
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, 1, event.TotalItems)

	assert.Empty(t, decodeCart(t, do(r, http.MethodGet, "/cart", nil)).Items)
}

func TestCheckout_EmptyCart(t *testing.T) {
	r := setupRouter(&mockSNS{}, "arn:topic")
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/cart/checkout", nil).Code)
}

func TestCheckout_PublishFailureKeepsCart(t *testing.T) {
	r := setupRouter(&mockSNS{publishErr: errors.New("sns down")}, "arn:topic")
	do(r, http.MethodPost, "/cart/items/bread", nil)

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/cart/checkout", nil).Code)
	assert.Equal(t, 1, decodeCart(t, do(r, http.MethodGet, "/cart", nil)).Items["bread"])
}

func TestCheckout_NotConfigured(t *testing.T) {
	r := setupRouter(nil, "")
	do(r, http.MethodPost, "/cart/items/bread", nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodPost, "/cart/checkout", nil).Code)
}
