package models

import (
	"errors"
	"time"
)

// CheckoutEvent is the detail payload published when a cart is checked out.
// It is immutable after creation; EventID is the deduplication key for the
// order pipeline.
type CheckoutEvent struct {
	EventID       string     `json:"event_id"`
	UserName      string     `json:"user_name"`
	Items         []CartItem `json:"items"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Address       string     `json:"address,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PaymentRef    string     `json:"payment_ref,omitempty"`
	RequestedAt   time.Time  `json:"requested_at"`
}

// Validate reports structural problems that can never be fixed by retrying.
func (e *CheckoutEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("missing event_id")
	}
	if e.UserName == "" {
		return errors.New("missing user_name")
	}
	if len(e.Items) == 0 {
		return errors.New("empty item set")
	}
	for _, it := range e.Items {
		if it.ProductID == "" {
			return errors.New("item missing product_id")
		}
		if it.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
		if it.Price.IsNegative() {
			return errors.New("item price must not be negative")
		}
	}
	return nil
}
