package balance

import (
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/me", handler.GetMySummary)
		balances.GET("/employees/:employeeId", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetEmployeeSummary)
		balances.POST("", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.Allocate)
		balances.PUT("/:id", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.Adjust)
	}
}
