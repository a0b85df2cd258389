package app

import (
	"go-timeoff/internal/auth"
	"go-timeoff/internal/balance"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/rbac"
	"go-timeoff/internal/rbac/infra"
	"go-timeoff/internal/request"
	"go-timeoff/internal/shared/counter"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	rbacRepo := rbac.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService, employeeRepo)
	balanceService := balance.NewService(balanceRepo, leaveTypeRepo, rdb)
	employeeService := employee.NewService(employeeRepo, counterRepo, rdb)
	leaveTypeService := leavetype.NewService(leaveTypeRepo)
	requestService := request.NewServiceWithOutbox(
		sqlDB,
		requestRepo,
		leaveTypeRepo,
		balanceRepo,
		counterRepo,
		outboxRepo,
		rdb,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	balanceHandler := balance.NewHandler(balanceService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	rbacHandler := rbac.NewHandler(rbacService)
	requestHandler := request.NewHandler(requestService)

	// --- Routes ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService, logger)
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
		request.RegisterRoutes(api, requestHandler, rbacService, rdb)
	}

	return nil
}
