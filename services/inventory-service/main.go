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

	"github.com/marketfold/marketplace-backend/services/common/logger"
	"github.com/marketfold/marketplace-backend/services/inventory-service/controllers"
	"github.com/marketfold/marketplace-backend/services/inventory-service/database"
	"github.com/marketfold/marketplace-backend/services/inventory-service/models"
	"github.com/marketfold/marketplace-backend/services/inventory-service/repository"
	"github.com/marketfold/marketplace-backend/services/inventory-service/routes"
	"github.com/marketfold/marketplace-backend/services/inventory-service/services"
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
	if err := database.DB.AutoMigrate(&models.Inventory{}); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	invRepo := repository.NewGormInventoryRepository(database.DB)
	invService := services.NewInventoryService(invRepo, logger.Log)
	invController := controllers.NewInventoryController(invService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterInventoryRoutes(r, invController)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "inventory-service"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Log.Info("Inventory Service started", zap.String("port", cfg.Port))
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
