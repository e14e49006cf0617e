package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/controllers"
	"github.com/Riyogosaki/Crystal/database"
	"github.com/Riyogosaki/Crystal/events"
	"github.com/Riyogosaki/Crystal/logger"
	"github.com/Riyogosaki/Crystal/middleware"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/repository"
	"github.com/Riyogosaki/Crystal/routes"
	"github.com/Riyogosaki/Crystal/services"
	"github.com/Riyogosaki/Crystal/storage"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog := logger.MustNew(cfg.Env)
	defer zlog.Sync()

	ctx := context.Background()

	// Users and orders live in PostgreSQL.
	db, err := database.ConnectPostgres(cfg.Postgres)
	if err != nil {
		zlog.Fatal("could not connect to PostgreSQL", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// Carts live in Redis.
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zlog.Fatal("could not connect to Redis", zap.Error(err))
	}

	// The catalog lives in MongoDB.
	mongoDB, disconnectMongo, err := database.ConnectMongo(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		zlog.Fatal("could not connect to MongoDB", zap.Error(err))
	}

	imageStore, err := storage.NewS3ImageStore(ctx, cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		zlog.Fatal("could not initialize image store", zap.Error(err))
	}

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	}

	userRepo := repository.NewGormUserRepository(db)
	cartStore := repository.NewRedisCartStore(redisClient)
	orderRepo := repository.NewGormOrderRepository(db)
	productRepo := repository.NewMongoProductRepository(mongoDB)

	tokens := services.NewTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, tokens, zlog)
	cartService := services.NewCartService(cartStore, productRepo, zlog)
	orderService := services.NewOrderService(orderRepo, productRepo, cartService, publisher, zlog)
	paymentService := services.NewPaymentService(cfg.StripeSecretKey, cfg.StripeWebhookKey)
	productService := services.NewProductService(productRepo, imageStore, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger(zlog))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(router, routes.Deps{
		Tokens:  tokens,
		Auth:    controllers.NewAuthController(authService, zlog),
		Cart:    controllers.NewCartController(cartService, zlog),
		Order:   controllers.NewOrderController(orderService, paymentService, zlog),
		Product: controllers.NewProductController(productService, zlog),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zlog.Info("storefront API listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zlog.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
	if err := disconnectMongo(shutdownCtx); err != nil {
		zlog.Error("mongo disconnect error", zap.Error(err))
	}
	zlog.Info("server shutdown complete")
}
