package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"order-api/internal/apperrors"
	"order-api/internal/broker"
	"order-api/internal/models"
	"order-api/internal/store"
	"order-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// OrderService handles order business logic
type OrderService struct {
	orders    store.OrderStore
	users     store.UserStore
	publisher broker.Publisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders store.OrderStore, users store.UserStore, publisher broker.Publisher) *OrderService {
	return &OrderService{
		orders:    orders,
		users:     users,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName    string   `json:"customer_name"`
	Items           []string `json:"items"`
	TotalAmount     float64  `json:"total_amount"`
	DeliveryAddress string   `json:"delivery_address"`
	Notes           string   `json:"notes"`
}

// ListParams are the query parameters accepted by ListOrders.
type ListParams struct {
	Page         int
	PerPage      int
	Status       string
	CustomerName string
}

// Pagination describes the page returned by ListOrders.
type Pagination struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	TotalOrders int  `json:"total_orders"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// OrderPage is one page of orders plus pagination metadata.
type OrderPage struct {
	Orders     []*models.Order `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}

// Stats aggregates the whole order book.
type Stats struct {
	TotalOrders    int            `json:"total_orders"`
	TotalUsers     int            `json:"total_users"`
	TotalAmount    float64        `json:"total_amount"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
	OrdersByUser   map[string]int `json:"orders_by_user"`
}

// CreateOrder validates the request and stores a new pending order.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest, createdBy string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if req.CustomerName == "" || req.Items == nil || req.TotalAmount == 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "Required fields: customer_name, items, total_amount")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "Items must be a non-empty list")
	}
	if req.TotalAmount <= 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "Total amount must be a positive number")
	}

	order, err := s.orders.Create(&models.Order{
		CustomerName:    req.CustomerName,
		Items:           req.Items,
		TotalAmount:     req.TotalAmount,
		Status:          models.OrderStatusPending,
		CreatedBy:       createdBy,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.String("created_by", createdBy))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		Order: order,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// ListOrders filters, sorts and paginates the order book. Newest orders come
// first.
func (s *OrderService) ListOrders(ctx context.Context, params ListParams) (*OrderPage, error) {
	_, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	page := params.Page
	if page == 0 {
		page = 1
	}
	perPage := params.PerPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if page < 1 || perPage < 1 {
		return nil, apperrors.New(apperrors.ErrValidation, "Invalid pagination parameters")
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	filtered := make([]*models.Order, 0)
	for _, order := range s.orders.List() {
		if params.Status != "" && order.Status != params.Status {
			continue
		}
		if params.CustomerName != "" &&
			!strings.Contains(strings.ToLower(order.CustomerName), strings.ToLower(params.CustomerName)) {
			continue
		}
		filtered = append(filtered, order)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].OrderID > filtered[j].OrderID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &OrderPage{
		Orders: filtered[start:end],
		Pagination: Pagination{
			Page:        page,
			PerPage:     perPage,
			TotalOrders: total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

// GetOrder retrieves an order by id.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	_, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	return s.orders.Get(orderID)
}

// UpdateStatus moves an order to a new status. On a validation failure the
// stored status is left untouched.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status, updatedBy string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	previous, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}

	if status == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Status is required")
	}

	order, err := s.orders.UpdateStatus(orderID, status)
	if err != nil {
		return nil, err
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order updated",
		zap.String("order_id", orderID),
		zap.String("status", status),
		zap.String("updated_by", updatedBy))

	event := &models.OrderStatusUpdatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusUpdated,
			Timestamp: time.Now(),
		},
		OrderID:   orderID,
		OldStatus: previous.Status,
		NewStatus: status,
		UpdatedBy: updatedBy,
	}
	if err := s.publisher.PublishOrderStatusUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusUpdated event", zap.Error(err))
	}

	return order, nil
}

// GetStats aggregates order counts and amounts across the whole store.
func (s *OrderService) GetStats(ctx context.Context) (*Stats, error) {
	_, span := util.StartSpan(ctx, "OrderService.GetStats")
	defer span.End()

	byStatus := make(map[string]int)
	byUser := make(map[string]int)
	var totalAmount float64

	orders := s.orders.List()
	for _, order := range orders {
		byStatus[order.Status]++
		byUser[order.CreatedBy]++
		totalAmount += order.TotalAmount
	}

	return &Stats{
		TotalOrders:    len(orders),
		TotalUsers:     s.users.Count(),
		TotalAmount:    math.Round(totalAmount*100) / 100,
		OrdersByStatus: byStatus,
		OrdersByUser:   byUser,
	}, nil
}
