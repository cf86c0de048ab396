package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marketfold/marketplace-backend/services/common/logger"
	invmodels "github.com/marketfold/marketplace-backend/services/inventory-service/models"
	invrepo "github.com/marketfold/marketplace-backend/services/inventory-service/repository"
	invservices "github.com/marketfold/marketplace-backend/services/inventory-service/services"
	ordermodels "github.com/marketfold/marketplace-backend/services/order-service/models"
	orderrepo "github.com/marketfold/marketplace-backend/services/order-service/repository"
	orderservices "github.com/marketfold/marketplace-backend/services/order-service/services"
	"github.com/marketfold/marketplace-backend/services/payment-service/controllers"
	"github.com/marketfold/marketplace-backend/services/payment-service/database"
	"github.com/marketfold/marketplace-backend/services/payment-service/gateway"
	"github.com/marketfold/marketplace-backend/services/payment-service/models"
	"github.com/marketfold/marketplace-backend/services/payment-service/repository"
	"github.com/marketfold/marketplace-backend/services/payment-service/routes"
	"github.com/marketfold/marketplace-backend/services/payment-service/services"
)

// inventoryAdapter mirrors the order service's view of the inventory ledger.
type inventoryAdapter struct {
	svc *invservices.InventoryService
}

func (a inventoryAdapter) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	return a.svc.Release(ctx, productID, qty)
}

func (a inventoryAdapter) Consume(ctx context.Context, productID uuid.UUID, qty int) error {
	return a.svc.Consume(ctx, productID, qty)
}

func (a inventoryAdapter) AddStock(ctx context.Context, productID uuid.UUID, qty int) error {
	_, err := a.svc.AddStock(ctx, productID, qty)
	return err
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Log.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Log.Fatal("Config load failed", zap.Error(err))
	}

	if err := database.Connect(); err != nil {
		logger.Log.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.DB.AutoMigrate(&models.Payment{}, &ordermodels.Order{}, &ordermodels.OrderItem{}, &invmodels.Inventory{}); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	var gw gateway.Gateway
	switch cfg.GatewayMode {
	case "stripe":
		gw = gateway.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)
	case "probabilistic":
		gw = gateway.NewProbabilisticGateway(cfg.GatewayRate, time.Now().UnixNano())
	default:
		gw = &gateway.DeterministicGateway{Accept: cfg.GatewayAccept}
	}

	inventoryService := invservices.NewInventoryService(invrepo.NewGormInventoryRepository(database.DB), logger.Log)
	inventory := inventoryAdapter{svc: inventoryService}
	orderService := orderservices.NewOrderService(orderrepo.NewGormOrderRepository(database.DB), inventory, nil, logger.Log)

	paymentRepo := repository.NewGormPaymentRepository(database.DB)
	paymentService := services.NewPaymentService(paymentRepo, orderService, gw, logger.Log)
	paymentController := controllers.NewPaymentController(paymentService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.SetupPaymentRoutes(r, paymentController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "payment-service"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Log.Info("Payment Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown error", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		logger.Log.Error("Database close error", zap.Error(err))
	}
}
