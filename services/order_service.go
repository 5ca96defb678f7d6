package services

import (
	"context"

	apperrors "github.com/kraken-commerce/backend/common/errors"
	"github.com/kraken-commerce/backend/models"
	"github.com/kraken-commerce/backend/repository"
)

// OrderService exposes the read side of the order store.
type OrderService struct {
	store repository.OrderStore
}

func NewOrderService(store repository.OrderStore) *OrderService {
	return &OrderService{store: store}
}

// GetUserOrders lists a customer's orders, optionally filtered by order date.
// An empty orderDate returns every order for the customer; exact selects one
// timestamp, otherwise the date is treated as a prefix (e.g. a day).
func (s *OrderService) GetUserOrders(ctx context.Context, userName, orderDate string, exact bool) ([]models.Order, error) {
	filter := repository.OrderFilter{OrderDate: orderDate, Prefix: !exact}
	return s.store.List(ctx, userName, filter)
}

// GetAllOrders returns every order in the store.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListAll(ctx)
}

// GetOrder fetches one order by its full key.
func (s *OrderService) GetOrder(ctx context.Context, userName, orderDate string) (*models.Order, error) {
	order, err := s.store.Get(ctx, userName, orderDate)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	return order, nil
}
