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

	cartdb "github.com/marketfold/marketplace-backend/services/cart-service/database"
	"github.com/marketfold/marketplace-backend/services/common/logger"
	invmodels "github.com/marketfold/marketplace-backend/services/inventory-service/models"
	invrepo "github.com/marketfold/marketplace-backend/services/inventory-service/repository"
	invservices "github.com/marketfold/marketplace-backend/services/inventory-service/services"
	"github.com/marketfold/marketplace-backend/services/order-service/controllers"
	"github.com/marketfold/marketplace-backend/services/order-service/database"
	"github.com/marketfold/marketplace-backend/services/order-service/kafka"
	"github.com/marketfold/marketplace-backend/services/order-service/models"
	"github.com/marketfold/marketplace-backend/services/order-service/repository"
	"github.com/marketfold/marketplace-backend/services/order-service/routes"
	"github.com/marketfold/marketplace-backend/services/order-service/services"
	promorepo "github.com/marketfold/marketplace-backend/services/promotion-service/repository"
	promoservices "github.com/marketfold/marketplace-backend/services/promotion-service/services"
)

// inventoryAdapter narrows the inventory service to the ledger operations
// checkout and the lifecycle need.
type inventoryAdapter struct {
	svc *invservices.InventoryService
}

func (a inventoryAdapter) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	return a.svc.Reserve(ctx, productID, qty)
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
	if err := database.DB.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.CouponUsageRecord{}, &invmodels.Inventory{}); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	redisClient := cartdb.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()
	cartRepo := cartdb.NewCartRepository(redisClient, cfg.CartTTL)

	inventoryService := invservices.NewInventoryService(invrepo.NewGormInventoryRepository(database.DB), logger.Log)
	inventory := inventoryAdapter{svc: inventoryService}

	couponService := promoservices.NewCouponService(promorepo.NewGormCouponRepository(database.DB), nil, "", logger.Log)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger.Log)
	defer producer.Close()

	orderRepo := repository.NewGormOrderRepository(database.DB)
	checkoutService := services.NewCheckoutService(orderRepo, cartRepo, inventory, couponService, producer, logger.Log)
	orderService := services.NewOrderService(orderRepo, inventory, producer, logger.Log)
	orderController := controllers.NewOrderController(checkoutService, orderService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.SetupOrderRoutes(r, orderController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "order-service"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Log.Info("Order Service started", zap.String("port", cfg.Port))
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
