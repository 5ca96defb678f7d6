package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kraken-commerce/backend/models"
)

// MemoryOrderStore is an in-process OrderStore for tests and local runs.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]map[string]models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]map[string]models.Order)}
}

func (s *MemoryOrderStore) Put(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate, ok := s.orders[order.UserName]
	if !ok {
		byDate = make(map[string]models.Order)
		s.orders[order.UserName] = byDate
	}
	if _, exists := byDate[order.OrderDate]; exists {
		return ErrOrderExists
	}
	byDate[order.OrderDate] = *order
	return nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, userName, orderDate string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[userName][orderDate]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (s *MemoryOrderStore) List(ctx context.Context, userName string, filter OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for date, order := range s.orders[userName] {
		if filter.OrderDate != "" {
			if filter.Prefix && !strings.HasPrefix(date, filter.OrderDate) {
				continue
			}
			if !filter.Prefix && date != filter.OrderDate {
				continue
			}
		}
		out = append(out, order)
	}
	sortOrders(out)
	return out, nil
}

func (s *MemoryOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, byDate := range s.orders {
		for _, order := range byDate {
			out = append(out, order)
		}
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].UserName != orders[j].UserName {
			return orders[i].UserName < orders[j].UserName
		}
		return orders[i].OrderDate < orders[j].OrderDate
	})
}
