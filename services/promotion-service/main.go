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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	aws_pkg "github.com/marketfold/marketplace-backend/pkg/aws"
	"github.com/marketfold/marketplace-backend/services/common/logger"
	"github.com/marketfold/marketplace-backend/services/promotion-service/controllers"
	"github.com/marketfold/marketplace-backend/services/promotion-service/database"
	"github.com/marketfold/marketplace-backend/services/promotion-service/models"
	"github.com/marketfold/marketplace-backend/services/promotion-service/repository"
	"github.com/marketfold/marketplace-backend/services/promotion-service/routes"
	"github.com/marketfold/marketplace-backend/services/promotion-service/services"
)

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
	if err := database.DB.AutoMigrate(&models.Coupon{}, &models.CouponUsage{}); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	var snsPublisher aws_pkg.SNSPublisher
	if cfg.SNSTopicArn != "" {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Fatal("AWS config load failed", zap.Error(err))
		}
		snsPublisher = aws_pkg.NewSNSClient(awsCfg)
	}

	couponRepo := repository.NewGormCouponRepository(database.DB)
	couponService := services.NewCouponService(couponRepo, snsPublisher, cfg.SNSTopicArn, logger.Log)
	couponController := controllers.NewCouponController(couponService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.SetupCouponRoutes(r, couponController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "promotion-service"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Log.Info("Promotion Service started", zap.String("port", cfg.Port))
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
