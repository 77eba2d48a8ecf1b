package service

import (
	"context"
	"fmt"
	"testing"

	"order-api/internal/apperrors"
	"order-api/internal/broker"
	"order-api/internal/models"
	"order-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService() (*OrderService, *store.MemoryUserStore) {
	users := store.NewMemoryUserStore()
	return NewOrderService(store.NewMemoryOrderStore(), users, broker.NopPublisher{}), users
}

func validCreateRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName: "Bob",
		Items:        []string{"x"},
		TotalAmount:  10.5,
	}
}

func TestCreateOrder(t *testing.T) {
	s, _ := newOrderService()

	order, err := s.CreateOrder(context.Background(), validCreateRequest(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "ORD-000001", order.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "alice", order.CreatedBy)
	assert.Equal(t, 10.5, order.TotalAmount)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)
}

func TestCreateOrderValidation(t *testing.T) {
	s, _ := newOrderService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  *CreateOrderRequest
	}{
		{"missing customer name", &CreateOrderRequest{Items: []string{"x"}, TotalAmount: 10}},
		{"missing items", &CreateOrderRequest{CustomerName: "Bob", TotalAmount: 10}},
		{"empty items", &CreateOrderRequest{CustomerName: "Bob", Items: []string{}, TotalAmount: 10}},
		{"zero amount", &CreateOrderRequest{CustomerName: "Bob", Items: []string{"x"}}},
		{"negative amount", &CreateOrderRequest{CustomerName: "Bob", Items: []string{"x"}, TotalAmount: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateOrder(ctx, tc.req, "alice")
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestListOrdersPagination(t *testing.T) {
	s, _ := newOrderService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := s.CreateOrder(ctx, validCreateRequest(), "alice")
		require.NoError(t, err)
	}

	page, err := s.ListOrders(ctx, ListParams{Page: 2, PerPage: 10})
	require.NoError(t, err)

	assert.Len(t, page.Orders, 10)
	assert.Equal(t, 25, page.Pagination.TotalOrders)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	last, err := s.ListOrders(ctx, ListParams{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, last.Orders, 5)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)

	first, err := s.ListOrders(ctx, ListParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.False(t, first.Pagination.HasPrev)
	// Newest first.
	assert.Equal(t, "ORD-000025", first.Orders[0].OrderID)

	beyond, err := s.ListOrders(ctx, ListParams{Page: 9, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Orders)
}

func TestListOrdersBadPagination(t *testing.T) {
	s, _ := newOrderService()
	ctx := context.Background()

	_, err := s.ListOrders(ctx, ListParams{Page: -1, PerPage: 10})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.ListOrders(ctx, ListParams{Page: 1, PerPage: -5})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// per_page is capped, not rejected.
	page, err := s.ListOrders(ctx, ListParams{Page: 1, PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Pagination.PerPage)
}

func TestListOrdersFilters(t *testing.T) {
	s, _ := newOrderService()
	ctx := context.Background()

	for i, name := range []string{"Bob Smith", "Alice Jones", "bobby"} {
		req := validCreateRequest()
		req.CustomerName = name
		order, err := s.CreateOrder(ctx, req, "alice")
		require.NoError(t, err)
		if i == 0 {
			_, err = s.UpdateStatus(ctx, order.OrderID, models.OrderStatusShipped, "alice")
			require.NoError(t, err)
		}
	}

	shipped, err := s.ListOrders(ctx, ListParams{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	require.Len(t, shipped.Orders, 1)
	assert.Equal(t, "Bob Smith", shipped.Orders[0].CustomerName)

	// Case-insensitive substring match.
	bobs, err := s.ListOrders(ctx, ListParams{CustomerName: "BOB"})
	require.NoError(t, err)
	assert.Len(t, bobs.Orders, 2)
}

func TestUpdateStatus(t *testing.T) {
	s, _ := newOrderService()
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validCreateRequest(), "alice")
	require.NoError(t, err)

	updated, err := s.UpdateStatus(ctx, order.OrderID, models.OrderStatusProcessing, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	_, err = s.UpdateStatus(ctx, order.OrderID, "", "alice")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.UpdateStatus(ctx, order.OrderID, "teleported", "alice")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// A rejected update leaves the stored status untouched.
	got, err := s.GetOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	_, err = s.UpdateStatus(ctx, "ORD-999999", models.OrderStatusShipped, "alice")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetOrderNotFound(t *testing.T) {
	s, _ := newOrderService()

	_, err := s.GetOrder(context.Background(), "ORD-000042")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetStats(t *testing.T) {
	s, users := newOrderService()
	ctx := context.Background()

	_, err := users.Create("alice", "hash")
	require.NoError(t, err)
	_, err = users.Create("bob", "hash")
	require.NoError(t, err)

	amounts := []float64{10.5, 4.25, 1.2}
	for i, amount := range amounts {
		req := validCreateRequest()
		req.TotalAmount = amount
		creator := "alice"
		if i == 2 {
			creator = "bob"
		}
		order, err := s.CreateOrder(ctx, req, creator)
		require.NoError(t, err)
		if i == 0 {
			_, err = s.UpdateStatus(ctx, order.OrderID, models.OrderStatusDelivered, creator)
			require.NoError(t, err)
		}
	}

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 15.95, stats.TotalAmount)
	assert.Equal(t, map[string]int{
		models.OrderStatusPending:   2,
		models.OrderStatusDelivered: 1,
	}, stats.OrdersByStatus)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, stats.OrdersByUser)
}

func TestOrderIDsNeverReused(t *testing.T) {
	s, _ := newOrderService()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		order, err := s.CreateOrder(ctx, validCreateRequest(), "alice")
		require.NoError(t, err)
		require.False(t, seen[order.OrderID])
		seen[order.OrderID] = true
		assert.Equal(t, fmt.Sprintf("ORD-%06d", i+1), order.OrderID)
	}
}
