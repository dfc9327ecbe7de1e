package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/coverbid/benefits-engine/internal/adapters/http/handler"
	"github.com/coverbid/benefits-engine/internal/adapters/repository/postgres"
	"github.com/coverbid/benefits-engine/internal/core/bidding"
	"github.com/coverbid/benefits-engine/internal/core/coverage"
	"github.com/coverbid/benefits-engine/internal/core/employee"
	"github.com/coverbid/benefits-engine/internal/core/identity"
	"github.com/coverbid/benefits-engine/internal/core/plan"
	"github.com/coverbid/benefits-engine/internal/platform/config"
	pg "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
	"github.com/coverbid/benefits-engine/internal/platform/metrics"
	"github.com/coverbid/benefits-engine/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	identitySvc := identity.NewService(postgres.NewIdentityRepository(dbPool), nil)
	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(dbPool), nil, txManager)
	planSvc := plan.NewService(postgres.NewPlanRepository(dbPool), nil)
	biddingSvc := bidding.NewService(postgres.NewBiddingRepository(dbPool), nil, txManager)
	coverageSvc := coverage.NewService(postgres.NewCoverageRepository(dbPool), txManager)

	api := handler.NewAPI(identitySvc, employeeSvc, planSvc, biddingSvc, coverageSvc, logger)
	m := metrics.New()

	srv := server.New(cfg.Server, api, m, logger)

	logger.Info("server listening", zap.String("addr", cfg.Server.ListenAddr))

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
