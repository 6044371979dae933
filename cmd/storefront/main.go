// StorefrontService 主程序
// 功能：提供商城后端服务，包括商品目录、购物车、订单、支付与用户资料
// 架构：基于 DDD + gin + GORM + Kafka
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	basketapp "github.com/wyfcoding/storefront/internal/basket/application"
	basketdomain "github.com/wyfcoding/storefront/internal/basket/domain"
	basketmysql "github.com/wyfcoding/storefront/internal/basket/infrastructure/persistence/mysql"
	baskethttp "github.com/wyfcoding/storefront/internal/basket/interfaces/http"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/storefront/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/storefront/internal/order/application"
	orderdomain "github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/storefront/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/storefront/internal/order/interfaces/http"
	paymentapp "github.com/wyfcoding/storefront/internal/payment/application"
	paymenthttp "github.com/wyfcoding/storefront/internal/payment/interfaces/http"
	usersapp "github.com/wyfcoding/storefront/internal/users/application"
	usersdomain "github.com/wyfcoding/storefront/internal/users/domain"
	usersmysql "github.com/wyfcoding/storefront/internal/users/infrastructure/persistence/mysql"
	usersredis "github.com/wyfcoding/storefront/internal/users/infrastructure/persistence/redis"
	usershttp "github.com/wyfcoding/storefront/internal/users/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
)

func main() {
	// 1. 加载配置
	configPath := "configs/storefront/config.toml"
	if path := os.Getenv("APP_CONFIG"); path != "" {
		configPath = path
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting StorefrontService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := autoMigrate(database); err != nil {
		logger.Fatal(ctx, "Failed to migrate database schema", "error", err)
	}

	// 4. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 5. 初始化 Kafka 生产者，未配置 broker 时事件发布为空操作
	var producer *mq.KafkaProducer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to create Kafka producer", "error", err)
		}
		defer producer.Close()
	} else {
		logger.Warn(ctx, "Kafka brokers not configured, order events disabled")
	}

	// 6. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 7. 初始化限流器
	rateLimiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())

	// 8. 初始化仓储
	catalogRepo := catalogmysql.NewCatalogRepository(database.DB)
	basketRepo := basketmysql.NewBasketRepository(database.DB)
	orderRepo := ordermysql.NewOrderRepository(database.DB)
	userRepo := usersmysql.NewUserRepository(database.DB)
	sessionRepo := usersredis.NewSessionRepository(redisCache, time.Duration(cfg.Session.TTL)*time.Second)

	// 9. 初始化应用服务
	catalogService := catalogapp.NewCatalogService(catalogRepo)
	basketService := basketapp.NewBasketService(basketRepo, metricsInstance)
	usersService := usersapp.NewUsersService(userRepo, sessionRepo)
	eventPublisher := messaging.NewKafkaPublisher(producer, cfg.Kafka.OrderEventsTopic)
	orderService := orderapp.NewOrderService(orderRepo, usersService, eventPublisher, metricsInstance)
	paymentService := paymentapp.NewPaymentService(
		orderService,
		cfg.Payment.QueueSize,
		time.Duration(cfg.Payment.ProcessingDelay)*time.Millisecond,
		metricsInstance,
	)

	// 10. 启动支付工作协程
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	paymentService.Start(workerCtx)

	// 11. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, metricsInstance, rateLimiter, sessionRepo,
		catalogService, basketService, orderService, paymentService, usersService)

	// 12. 启动 HTTP 服务器
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 13. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down StorefrontService")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}
	stopWorker()

	logger.Info(ctx, "StorefrontService stopped")
}

// autoMigrate 同步全部模块的表结构
func autoMigrate(database *db.DB) error {
	return database.AutoMigrate(
		&catalogdomain.Image{},
		&catalogdomain.Category{},
		&catalogdomain.Tag{},
		&catalogdomain.Specification{},
		&catalogdomain.Sale{},
		&catalogdomain.Product{},
		&catalogdomain.Review{},
		&basketdomain.Basket{},
		&basketdomain.BasketItem{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.DeliveryPrice{},
		&orderdomain.ExpressDeliveryPrice{},
		&usersdomain.User{},
		&usersdomain.Avatar{},
		&usersdomain.Profile{},
	)
}

// createHTTPServer 创建 HTTP 服务器并注册全部路由
func createHTTPServer(
	cfg *config.Config,
	m *metrics.Metrics,
	limiter ratelimit.RateLimiter,
	sessions usersdomain.SessionRepository,
	catalogService *catalogapp.CatalogService,
	basketService *basketapp.BasketService,
	orderService *orderapp.OrderService,
	paymentService *paymentapp.PaymentService,
	usersService *usersapp.UsersService,
) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	// 业务路由统一挂在 /api 下，会话中间件对全部业务路由生效
	api := router.Group("/api")
	api.Use(usershttp.SessionMiddleware(sessions, cfg.Session.CookieName, time.Duration(cfg.Session.TTL)*time.Second))

	requireAuth := usershttp.RequireAuth()
	cataloghttp.NewCatalogHandler(catalogService).RegisterRoutes(api, requireAuth)
	baskethttp.NewBasketHandler(basketService).RegisterRoutes(api)
	orderhttp.NewOrderHandler(orderService, basketService).RegisterRoutes(api, requireAuth)
	paymenthttp.NewPaymentHandler(paymentService, time.Duration(cfg.Payment.ResultTimeout)*time.Second).RegisterRoutes(api)
	usershttp.NewUsersHandler(usersService).RegisterRoutes(api)

	// 健康检查
	router.GET("/sys/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
