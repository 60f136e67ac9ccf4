package ledger

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	approver := middleware.RoleMiddleware("admin", "payroll_admin", "payroll_approver")
	operator := middleware.RoleMiddleware("admin", "payroll_admin")

	// The calculation entry point hangs off the period resource; everything
	// about one ledger lives under /ledgers.
	periods := r.Group("/periods")
	periods.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		// A batch run is the most expensive call in the service, so it gets
		// the tightest per-user limit.
		if redisClient != nil {
			periods.POST(
				"/:id/calculate",
				middleware.Idempotency(redisClient),
				operator,
				middleware.RateLimitByUser(0.2, 2),
				handler.CalculatePeriod,
			)
		} else {
			periods.POST("/:id/calculate", operator, middleware.RateLimitByUser(0.2, 2), handler.CalculatePeriod)
		}
	}

	ledgers := r.Group("/ledgers")
	ledgers.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		ledgers.GET("", handler.List)
		ledgers.GET("/:id", handler.GetById)
		ledgers.GET("/:id/breakdown", handler.GetBreakdown)
		ledgers.GET("/:id/audit", handler.History)
		ledgers.POST("/:id/recalculate", operator, middleware.RateLimitByUser(1, 5), handler.Recalculate)
		ledgers.POST("/:id/approve", approver, handler.Approve)
		ledgers.POST("/:id/mark-paid", approver, handler.MarkPaid)
		ledgers.POST("/:id/reject", approver, handler.Reject)
		ledgers.POST("/:id/cancel", operator, handler.Cancel)
		ledgers.PUT("/:id/components/:componentId", operator, handler.OverrideComponent)
	}
}
