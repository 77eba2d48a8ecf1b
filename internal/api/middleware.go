package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"order-api/internal/limiter"
	"order-api/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware.
const (
	ctxUsername = "username"
	ctxToken    = "token"
)

// requireAuth validates the bearer token and stores the resolved identity on
// the request context. Malformed, expired and revoked tokens all get the same
// generic response.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		username, err := h.authority.Validate(token)
		if err != nil {
			util.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUsername, username)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// rateLimit rejects requests whose caller has exhausted the budget. Runs
// before auth; no handler side effects happen on a rejected request.
func (h *Handler) rateLimit(endpoint string, budget limiter.Budget) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil {
			c.Next()
			return
		}

		key := endpoint + ":" + h.resolveKey(c)

		allowed, err := h.limiter.Allow(c.Request.Context(), key, budget)
		if err != nil {
			// A limiter backend error must not take the API down.
			util.GetLogger().Warn("Rate limiter error",
				zap.String("endpoint", endpoint),
				zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			util.RateLimitRejectionsTotal.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}

		c.Next()
	}
}

// resolveKey prefers the authenticated identity. Anonymous callers share a
// key per client IP, which conflates distinct callers behind shared NAT.
func (h *Handler) resolveKey(c *gin.Context) string {
	if username := c.GetString(ctxUsername); username != "" {
		return username
	}
	if token := bearerToken(c); token != "" {
		if username, err := h.authority.Validate(token); err == nil {
			return username
		}
	}
	return c.ClientIP()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
