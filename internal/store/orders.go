package store

import (
	"fmt"
	"sync"
	"time"

	"order-api/internal/apperrors"
	"order-api/internal/models"
)

// MemoryOrderStore is a mutex-guarded map of orders. Order ids come from a
// monotonically increasing counter and are never reused.
type MemoryOrderStore struct {
	mu      sync.RWMutex
	orders  map[string]*models.Order
	counter int64
}

// NewMemoryOrderStore creates an empty order store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]*models.Order)}
}

// Create assigns the next order id and timestamps, then stores the order.
func (s *MemoryOrderStore) Create(order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	now := time.Now().UTC()

	stored := copyOrder(order)
	stored.OrderID = fmt.Sprintf("ORD-%06d", s.counter)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.orders[stored.OrderID] = stored
	return copyOrder(stored), nil
}

// Get retrieves an order by id.
func (s *MemoryOrderStore) Get(orderID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "Order not found")
	}
	return copyOrder(order), nil
}

// List returns a snapshot of all orders in no particular order.
func (s *MemoryOrderStore) List() []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, copyOrder(order))
	}
	return orders
}

// UpdateStatus sets the order status under the store lock so concurrent
// updates to the same order cannot interleave.
func (s *MemoryOrderStore) UpdateStatus(orderID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperrors.New(apperrors.ErrValidation,
			fmt.Sprintf("Invalid status. Valid values: %v", models.OrderStatuses()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "Order not found")
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return copyOrder(order), nil
}

// Count returns the number of stored orders.
func (s *MemoryOrderStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]string(nil), o.Items...)
	return &cp
}
