// Package limiter bounds request rates per caller across rolling time windows.
package limiter

import (
	"context"
	"time"
)

// Rate caps a caller at Limit requests per Window.
type Rate struct {
	Limit  int
	Window time.Duration
}

// Budget is the set of rates that must all hold for a request to pass.
type Budget []Rate

// Limiter reports whether a keyed request fits within a budget. An accepted
// call consumes one unit from every window; a rejected call consumes nothing.
type Limiter interface {
	Allow(ctx context.Context, key string, budget Budget) (bool, error)
}

// Per-endpoint budgets plus the default applied to every request.
var (
	DefaultBudget     = Budget{{Limit: 50, Window: time.Hour}, {Limit: 200, Window: 24 * time.Hour}}
	RegisterBudget    = Budget{{Limit: 5, Window: time.Minute}}
	LoginBudget       = Budget{{Limit: 10, Window: time.Minute}}
	CreateOrderBudget = Budget{{Limit: 30, Window: time.Minute}}
	ListOrdersBudget  = Budget{{Limit: 100, Window: time.Minute}}
	GetOrderBudget    = Budget{{Limit: 200, Window: time.Minute}}
	UpdateOrderBudget = Budget{{Limit: 20, Window: time.Minute}}
	StatsBudget       = Budget{{Limit: 10, Window: time.Minute}}
)
