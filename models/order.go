package models

import "github.com/shopspring/decimal"

// Order is keyed by (UserName, OrderDate). OrderDate is assigned by the order
// consumer at processing time, not by the client.
type Order struct {
	UserName      string          `json:"user_name"`
	OrderDate     string          `json:"order_date"`
	EventID       string          `json:"event_id"`
	Items         []CartItem      `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	FirstName     string          `json:"first_name,omitempty"`
	LastName      string          `json:"last_name,omitempty"`
	Email         string          `json:"email,omitempty"`
	Address       string          `json:"address,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
}
