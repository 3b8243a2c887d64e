package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	"github.com/kadekedwin/billforge/services/cart-service/cart"
	"github.com/kadekedwin/billforge/services/cart-service/database"
	"github.com/kadekedwin/billforge/services/cart-service/models"
	"github.com/kadekedwin/billforge/services/common/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartController struct {
	repo      database.CartRepository
	publisher awspkg.SNSPublisher
	topicArn  string
	metrics   middleware.MetricsRecorder
	logger    *zap.Logger
}

func NewCartController(
	repo database.CartRepository,
	publisher awspkg.SNSPublisher,
	topicArn string,
	metrics middleware.MetricsRecorder,
	logger *zap.Logger,
) *CartController {
	return &CartController{
		repo:      repo,
		publisher: publisher,
		topicArn:  topicArn,
		metrics:   metrics,
		logger:    logger,
	}
}

func (cc *CartController) sessionID(c *gin.Context) (string, bool) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return id, true
}

// GetCart handles GET /cart
func (cc *CartController) GetCart(c *gin.Context) {
	sid, ok := cc.sessionID(c)
	if !ok {
		return
	}

	items, err := cc.repo.Get(c.Request.Context(), sid)
	if err != nil {
		cc.logger.Error("get cart failed", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, models.NewCartResponse(sid, items))
}

// AddItem handles POST /cart/items/:item_id
func (cc *CartController) AddItem(c *gin.Context) {
	cc.mutate(c, "add item", func(ctx context.Context, sid, itemID string) error {
		_, err := cc.repo.Add(ctx, sid, itemID)
		return err
	})
}

// RemoveItem handles DELETE /cart/items/:item_id
func (cc *CartController) RemoveItem(c *gin.Context) {
	cc.mutate(c, "remove item", func(ctx context.Context, sid, itemID string) error {
		_, err := cc.repo.Remove(ctx, sid, itemID)
		return err
	})
}

func (cc *CartController) mutate(c *gin.Context, op string, apply func(ctx context.Context, sid, itemID string) error) {
	sid, ok := cc.sessionID(c)
	if !ok {
		return
	}
	itemID := c.Param("item_id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id is required"})
		return
	}

	ctx := c.Request.Context()
	if err := apply(ctx, sid, itemID); err != nil {
		cc.logger.Error(op+" failed", zap.String("session_id", sid), zap.String("item_id", itemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}

	items, err := cc.repo.Get(ctx, sid)
	if err != nil {
		cc.logger.Error("reload cart failed", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	c.JSON(http.StatusOK, models.NewCartResponse(sid, items))
}

// ClearCart handles DELETE /cart
func (cc *CartController) ClearCart(c *gin.Context) {
	sid, ok := cc.sessionID(c)
	if !ok {
		return
	}

	if err := cc.repo.Clear(c.Request.Context(), sid); err != nil {
		cc.logger.Error("clear cart failed", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, models.NewCartResponse(sid, cart.New()))
}

// Quote handles POST /cart/quote: totals for the current cart at the given unit prices.
func (cc *CartController) Quote(c *gin.Context) {
	sid, ok := cc.sessionID(c)
	if !ok {
		return
	}

	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	prices := make(map[string]decimal.Decimal, len(req.Prices))
	for id, raw := range req.Prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price", "details": id})
			return
		}
		prices[id] = p
	}

	items, err := cc.repo.Get(c.Request.Context(), sid)
	if err != nil {
		cc.logger.Error("get cart failed", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalItems":  items.TotalItems(),
		"totalAmount": items.TotalAmount(prices).StringFixed(2),
	})
}

// Checkout handles POST /cart/checkout: publishes the cart and clears it.
func (cc *CartController) Checkout(c *gin.Context) {
	sid, ok := cc.sessionID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	items, err := cc.repo.Get(ctx, sid)
	if err != nil {
		cc.logger.Error("checkout: get cart failed", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart is empty"})
		return
	}

	if cc.publisher == nil || cc.topicArn == "" {
		cc.logger.Warn("checkout: SNS not configured", zap.String("session_id", sid))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "checkout is not available"})
		return
	}

	event := models.CheckoutEvent{
		EventType:  models.CheckoutRequestedEvent,
		CheckoutID: uuid.NewString(),
		SessionID:  sid,
		Items:      items.Lines(),
		TotalItems: items.TotalItems(),
		Timestamp:  time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode checkout event"})
		return
	}
	if err := cc.publisher.Publish(ctx, cc.topicArn, body); err != nil {
		cc.logger.Error("checkout: publish failed", zap.String("session_id", sid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish checkout event"})
		return
	}

	if err := cc.repo.Clear(ctx, sid); err != nil {
		cc.logger.Warn("checkout: clear cart failed", zap.String("session_id", sid), zap.Error(err))
	}

	if cc.metrics != nil && cc.metrics.IsEnabled() {
		_ = cc.metrics.RecordCount(ctx, awspkg.MetricCartCheckouts, map[string]string{"Service": "cart-service"})
	}

	cc.logger.Info("checkout published", zap.String("session_id", sid), zap.String("checkout_id", event.CheckoutID))
	c.JSON(http.StatusOK, gin.H{"message": "checkout initiated", "checkoutId": event.CheckoutID})
}
