package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront-shipping-service/internal/config"
	"storefront-shipping-service/internal/controller"
	"storefront-shipping-service/internal/kv"
	"storefront-shipping-service/internal/middleware"
	"storefront-shipping-service/internal/push"
	"storefront-shipping-service/internal/rabbit"
	"storefront-shipping-service/internal/repository"
	"storefront-shipping-service/internal/scheduler"
	"storefront-shipping-service/internal/service"
	"storefront-shipping-service/internal/toast"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Colaborador de persistencia según backend configurado
	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatal("error inicializando persistencia", zap.Error(err))
	}

	// Conexión a RabbitMQ
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("error conectando a RabbitMQ", zap.Error(err))
	}
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("error creando canal en RabbitMQ", zap.Error(err))
	}

	pusher, err := push.NewPublisher(ch, logger)
	if err != nil {
		logger.Fatal("error declarando exchange de push", zap.Error(err))
	}

	// Repositorios y servicios
	ordersRepo := repository.NewOrderRepository(store)
	notifsRepo := repository.NewNotificationRepository(store)
	prefsRepo := repository.NewPreferenceRepository(store)

	toasts := toast.NewHub(logger)
	ledger := service.NewNotificationLedger(notifsRepo, prefsRepo, pusher, toasts, logger)
	orderService := service.NewOrderService(ordersRepo, logger)
	authService := service.NewAuthService(cfg.AuthURL)
	engine := service.NewEngine(cfg.AdvanceInterval)

	// Sesión de la instalación: con token consulta al servicio de auth;
	// sin token corre como instalación standalone.
	var session service.Session
	if cfg.AuthToken != "" {
		session = service.NewTokenSession(authService, cfg.AuthToken, cfg.SessionCacheTTL)
	} else {
		session = service.StaticSession{Authenticated: true, EmailVerified: true}
	}

	// Drivers de progresión
	ticker := scheduler.NewTicker(ordersRepo, engine, ledger, session, logger, cfg.TickInterval)
	ticker.Start(context.Background())
	defer ticker.Stop()

	trackers := scheduler.NewRegistry(context.Background(), ordersRepo, ledger, logger, cfg.TickInterval)
	defer trackers.StopAll()

	// Handlers
	ctl := controller.NewStoreController(orderService, ledger, trackers)

	// Router
	r := gin.Default()

	// Toasts in-app por websocket
	r.GET("/ws/toasts", func(c *gin.Context) {
		toasts.HandleWS(c.Writer, c.Request)
	})

	// Rutas protegidas (requieren token)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.POST("/checkout", ctl.Checkout)
	auth.GET("/orders", ctl.GetOrders)
	auth.GET("/orders/:orderId", ctl.GetOrder)

	auth.GET("/notifications", ctl.GetNotifications)
	auth.GET("/notifications/unread-count", ctl.GetUnreadCount)
	auth.PATCH("/notifications/:id/read", ctl.MarkNotificationRead)
	auth.POST("/notifications/read-all", ctl.MarkAllNotificationsRead)
	auth.DELETE("/notifications", ctl.ClearNotifications)
	auth.GET("/notifications/preferences", ctl.GetPreferences)
	auth.PUT("/notifications/preferences", ctl.UpdatePreferences)

	// El seguimiento exige email verificado, igual que el ticker global
	verified := auth.Group("/")
	verified.Use(middleware.VerifiedOnly())
	verified.POST("/orders/:orderId/tracking", ctl.StartTracking)
	verified.DELETE("/orders/:orderId/tracking", ctl.StopTracking)

	rabbit.SetupConsumers(ch, orderService, logger)

	// Ejecutar servidor
	logger.Info("shipping service ejecutándose", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func buildStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.KVBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return kv.NewRedis(client), nil
	case "memory":
		return kv.NewMemory(), nil
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		return kv.NewMongo(client.Database(cfg.MongoDBName)), nil
	}
}
