package models

import (
	"time"

	"github.com/kadekedwin/billforge/services/cart-service/cart"
)

const CheckoutRequestedEvent = "checkout.requested"

// CartResponse is the JSON shape of a session's cart.
type CartResponse struct {
	SessionID  string         `json:"sessionId"`
	Items      map[string]int `json:"items"`
	Lines      []cart.Line    `json:"lines"`
	TotalItems int            `json:"totalItems"`
}

// NewCartResponse builds the response for a cart snapshot.
func NewCartResponse(sessionID string, c cart.Cart) CartResponse {
	if c == nil {
		c = cart.New()
	}
	return CartResponse{
		SessionID:  sessionID,
		Items:      c,
		Lines:      c.Lines(),
		TotalItems: c.TotalItems(),
	}
}

// QuoteRequest carries unit prices for the items in the cart.
type QuoteRequest struct {
	Prices map[string]string `json:"prices" binding:"required"`
}

// CheckoutEvent is published to SNS when a session checks out.
type CheckoutEvent struct {
	EventType  string      `json:"event_type"`
	CheckoutID string      `json:"checkout_id"`
	SessionID  string      `json:"session_id"`
	Items      []cart.Line `json:"items"`
	TotalItems int         `json:"total_items"`
	Timestamp  time.Time   `json:"timestamp"`
}
