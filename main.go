package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/config"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/middleware"
	"github.com/storeline/storefront-api/models"
	"github.com/storeline/storefront-api/payment"
	"github.com/storeline/storefront-api/routes"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Get()
	defer log.Sync()

	db := initDatabase(cfg, log)

	gw := payment.NewGateway(cfg.StripeSecretKey)

	r := gin.Default()
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.UIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRoutes(r, db, cfg, gw)

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func initDatabase(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	log.Info("database connected")
	return db
}
