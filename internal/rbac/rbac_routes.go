package rbac

import (
	"go-timeoff/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service) {
	roles := r.Group("/roles")
	roles.Use(middleware.AuthMiddleware())
	{
		roles.GET("", middleware.RBACAuthorize(service, "role", "read"), handler.ListRoles)
		roles.POST("", middleware.RBACAuthorize(service, "role", "manage"), handler.CreateRole)
		roles.PUT("/:id/permissions", middleware.RBACAuthorize(service, "role", "manage"), handler.UpdateRolePermissions)
		roles.POST("/assign", middleware.RBACAuthorize(service, "role", "manage"), handler.AssignEmployeeRole)
	}

	permissions := r.Group("/permissions")
	permissions.Use(middleware.AuthMiddleware())
	{
		permissions.GET("", middleware.RBACAuthorize(service, "role", "read"), handler.ListPermissions)
	}
}
