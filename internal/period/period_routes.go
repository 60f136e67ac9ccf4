package period

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	periods := r.Group("/periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", handler.GetAll)
		periods.GET("/:id", handler.GetById)
		periods.POST("", middleware.RoleMiddleware("admin", "payroll_admin"), handler.Create)
		periods.POST("/:id/process", middleware.RoleMiddleware("admin", "payroll_admin"), handler.StartProcessing)
		periods.POST("/:id/close", middleware.RoleMiddleware("admin", "payroll_admin"), handler.Close)
		periods.POST("/:id/cancel", middleware.RoleMiddleware("admin", "payroll_admin"), handler.Cancel)
	}
}
