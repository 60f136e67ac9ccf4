package component

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	components := r.Group("/components")
	components.Use(middleware.AuthMiddleware())
	{
		components.GET("", handler.GetAll)
		components.GET("/:id", handler.GetById)
		components.POST("", middleware.RoleMiddleware("admin", "payroll_admin"), handler.Register)
		components.PUT("/:id", middleware.RoleMiddleware("admin", "payroll_admin"), handler.Update)
		components.POST("/:id/deactivate", middleware.RoleMiddleware("admin", "payroll_admin"), handler.Deactivate)
	}
}
