package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a customer's cart. Price is the unit price.
type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type Cart struct {
	UserName  string     `json:"user_name"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
