package app

import (
	"database/sql"
	"os"
	"strconv"

	"go-payroll/internal/audit"
	"go-payroll/internal/component"
	"go-payroll/internal/employee"
	"go-payroll/internal/ledger"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/period"
	"go-payroll/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	componentRepo := component.NewRepository(gormDB)
	periodRepo := period.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)
	counterRepo := counter.NewRepository(gormDB)
	directory := employee.NewDirectory(gormDB)

	// --- Services ---
	componentService := component.NewService(componentRepo)
	periodService := period.NewService(periodRepo)
	ledgerService := ledger.NewServiceWithOutbox(
		db,
		ledgerRepo,
		auditRepo,
		outboxRepo,
		ledger.Dependencies{
			Periods:    periodRepo,
			Employees:  directory,
			Components: componentService,
			Counters:   counterRepo,
		},
		ledgerConfigFromEnv(),
	)

	// --- Handlers ---
	componentHandler := component.NewHandler(componentService)
	periodHandler := period.NewHandler(periodService)
	ledgerHandler := ledger.NewHandler(ledgerService, rdb)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(50, 100))
	{
		component.RegisterRoutes(api, componentHandler)
		period.RegisterRoutes(api, periodHandler)
		ledger.RegisterRoutes(api, ledgerHandler, rdb)
	}

	return nil
}

func ledgerConfigFromEnv() ledger.Config {
	cfg := ledger.Config{}
	if v, err := strconv.ParseInt(os.Getenv("PAYROLL_OVERTIME_MULTIPLIER_BPS"), 10, 64); err == nil && v > 0 {
		cfg.OvertimeMultiplierBps = v
	}
	if v, err := strconv.Atoi(os.Getenv("PAYROLL_CALC_WORKERS")); err == nil && v > 0 {
		cfg.CalcWorkers = v
	}
	return cfg
}
