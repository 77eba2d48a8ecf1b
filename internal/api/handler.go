package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"order-api/config"
	"order-api/internal/apperrors"
	"order-api/internal/auth"
	"order-api/internal/limiter"
	"order-api/internal/models"
	"order-api/internal/redisclient"
	"order-api/internal/retry"
	"order-api/internal/service"
	"order-api/internal/store"
	"order-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	authService  *service.AuthService
	orderService *service.OrderService
	authority    *auth.Authority
	limiter      limiter.Limiter // nil disables rate limiting
	redis        *redisclient.Client
	users        store.UserStore
	orders       store.OrderStore
	cfg          *config.Config
}

// NewHandler creates a new HTTP handler. redis may be nil when Redis is
// disabled; lim may be nil when rate limiting is disabled.
func NewHandler(
	cfg *config.Config,
	authService *service.AuthService,
	orderService *service.OrderService,
	authority *auth.Authority,
	lim limiter.Limiter,
	redis *redisclient.Client,
	users store.UserStore,
	orders store.OrderStore,
) *Handler {
	return &Handler{
		authService:  authService,
		orderService: orderService,
		authority:    authority,
		limiter:      lim,
		redis:        redis,
		users:        users,
		orders:       orders,
		cfg:          cfg,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(h.rateLimit("global", limiter.DefaultBudget))
	{
		api.POST("/register", h.rateLimit("register", limiter.RegisterBudget), h.register)
		api.POST("/login", h.rateLimit("login", limiter.LoginBudget), h.login)
		api.POST("/logout", h.requireAuth(), h.logout)

		api.POST("/orders", h.rateLimit("create_order", limiter.CreateOrderBudget), h.requireAuth(), h.createOrder)
		api.GET("/orders", h.rateLimit("list_orders", limiter.ListOrdersBudget), h.requireAuth(), h.listOrders)
		api.GET("/orders/:id", h.rateLimit("get_order", limiter.GetOrderBudget), h.requireAuth(), h.getOrder)
		api.PUT("/orders/:id", h.rateLimit("update_order", limiter.UpdateOrderBudget), h.requireAuth(), h.updateOrder)

		api.GET("/health", h.healthCheck)
		api.GET("/stats", h.rateLimit("stats", limiter.StatsBudget), h.requireAuth(), h.stats)
	}
}

// register handles user registration
func (h *Handler) register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// login handles authentication and token issuance
func (h *Handler) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// logout revokes the presented token
func (h *Handler) logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString(ctxToken)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	username := c.GetString(ctxUsername)

	var order *models.Order
	err := retry.Do(c.Request.Context(), func(ctx context.Context) error {
		var opErr error
		order, opErr = h.orderService.CreateOrder(ctx, &req, username)
		return opErr
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// listOrders handles listing with filters and pagination
func (h *Handler) listOrders(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return
	}
	if page < 1 || perPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return
	}

	params := service.ListParams{
		Page:         page,
		PerPage:      perPage,
		Status:       c.Query("status"),
		CustomerName: c.Query("customer_name"),
	}

	var pageResult *service.OrderPage
	err = retry.Do(c.Request.Context(), func(ctx context.Context) error {
		var opErr error
		pageResult, opErr = h.orderService.ListOrders(ctx, params)
		return opErr
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResult)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID := c.Param("id")

	var order *models.Order
	err := retry.Do(c.Request.Context(), func(ctx context.Context) error {
		var opErr error
		order, opErr = h.orderService.GetOrder(ctx, orderID)
		return opErr
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// updateOrder handles order status updates
func (h *Handler) updateOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	username := c.GetString(ctxUsername)

	var order *models.Order
	err := retry.Do(c.Request.Context(), func(ctx context.Context) error {
		var opErr error
		order, opErr = h.orderService.UpdateStatus(ctx, orderID, req.Status, username)
		return opErr
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"order":   order,
	})
}

// healthCheck reports service health and dependency status
func (h *Handler) healthCheck(c *gin.Context) {
	redisStatus := "not_connected"
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis unreachable",
			})
			return
		}
		redisStatus = "connected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.cfg.Server.Version,
		"services": gin.H{
			"redis":        redisStatus,
			"orders_count": h.orders.Count(),
			"users_count":  h.users.Count(),
		},
	})
}

// stats reports aggregate order statistics
func (h *Handler) stats(c *gin.Context) {
	stats, err := h.orderService.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// respondError converts a service failure into the fixed response shape.
// Internal failures never leak their text.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
