package app

import (
	"go-timeoff/internal/auth"
	"go-timeoff/internal/balance"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/request"
	"go-timeoff/internal/shared/connection"
	"go-timeoff/internal/shared/counter"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if os.Getenv("DB_AUTO_MIGRATE") == "true" {
		if err := gormDB.AutoMigrate(
			&auth.User{},
			&employee.Employee{},
			&leavetype.LeaveType{},
			&balance.LeaveBalance{},
			&request.Request{},
			&counter.CompanyCounter{},
		); err != nil {
			return err
		}
		logger.Info("auto migration applied")
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	return registerModules(router, gormDB, redisClient)
}
