package repository

import (
	"context"
	"errors"

	"github.com/kraken-commerce/backend/models"
)

// ErrOrderExists is returned by Put when the (user, orderDate) key is taken.
var ErrOrderExists = errors.New("order key already exists")

// OrderKey identifies one order record.
type OrderKey struct {
	UserName  string `json:"user_name"`
	OrderDate string `json:"order_date"`
}

// OrderFilter narrows a per-customer listing. OrderDate is compared exactly,
// or as a prefix when Prefix is set (e.g. "2026-01-15" selects a day).
type OrderFilter struct {
	OrderDate string
	Prefix    bool
}

// OrderStore is a keyed store for order records. Put is conditional on the key
// not existing.
type OrderStore interface {
	Put(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, userName, orderDate string) (*models.Order, error)
	List(ctx context.Context, userName string, filter OrderFilter) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
}
