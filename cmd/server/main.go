package main

import (
	"context"
	"os/signal"
	"syscall"

	"freshmart-backend/internal/config"
	"freshmart-backend/internal/database"
	"freshmart-backend/internal/handlers"
	"freshmart-backend/internal/infrastructure/email"
	"freshmart-backend/internal/infrastructure/payment"
	"freshmart-backend/internal/logger"
	"freshmart-backend/internal/repo"
	"freshmart-backend/internal/service"
	"freshmart-backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	orderRepo := repo.NewOrderRepo(db)
	gateway := payment.NewPaystackClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, log)

	var notifier email.Notifier = email.NoopNotifier{}
	if cfg.EmailEnabled() {
		notifier = email.NewEmailJSClient(cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSPublicKey)
	}

	orderService := service.NewOrderService(orderRepo, gateway, notifier, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reconciler := worker.NewReconciliationWorker(orderRepo, gateway, cfg.ReconcileInterval, cfg.ReconcileAfter, log)
	go reconciler.Run(ctx)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	handlers.NewHealthHandler(db).RegisterRoutes(engine)
	handlers.NewOrderHandler(log, orderService, gateway, cfg.PaystackSecretKey).RegisterRoutes(engine)

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
