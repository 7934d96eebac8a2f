package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wyfcoding/optionpricing/internal/valuation/application"
	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/internal/valuation/infrastructure/messaging"
	"github.com/wyfcoding/optionpricing/internal/valuation/infrastructure/persistence/mysql"
	valuationredis "github.com/wyfcoding/optionpricing/internal/valuation/infrastructure/persistence/redis"
	valuationhttp "github.com/wyfcoding/optionpricing/internal/valuation/interfaces/http"
	"github.com/wyfcoding/optionpricing/pkg/cache"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/db"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/middleware"
	"github.com/wyfcoding/optionpricing/pkg/mq"
	"github.com/wyfcoding/optionpricing/pkg/ratelimit"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/valuation/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	ctx := context.Background()

	// 3. Database
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
		panic(fmt.Sprintf("connect db failed: %v", err))
	}
	defer database.Close()

	if err := database.AutoMigrate(&mysql.ValuationResultModel{}, &messaging.OutboxMessage{}); err != nil {
		panic(fmt.Sprintf("migrate db failed: %v", err))
	}

	// 4. Redis（缓存不可用时降级为直查数据库）
	var valuationCache *valuationredis.ValuationCache
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
		logger.Warn(ctx, "Redis unavailable, valuation cache disabled", "error", err)
	} else {
		defer redisCache.Close()
		var store valuationredis.JSONCache = redisCache
		if cfg.CacheBreaker.Enabled {
			store = cache.NewBreakerCache(redisCache, cache.BreakerConfig{
				MaxRequests:         cfg.CacheBreaker.MaxRequests,
				OpenTimeout:         cfg.CacheBreaker.OpenTimeout,
				ConsecutiveFailures: cfg.CacheBreaker.ConsecutiveFailures,
			})
		}
		valuationCache = valuationredis.NewValuationCache(store, time.Duration(cfg.Redis.ResultTTL)*time.Second)
	}

	// 5. Metrics
	metricsImpl := metrics.New("valuation")
	if cfg.Metrics.Enabled {
		if err := metricsImpl.Register(); err != nil {
			panic(fmt.Sprintf("register metrics failed: %v", err))
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			panic(fmt.Sprintf("start metrics server failed: %v", err))
		}
	}

	// 6. Infrastructure & Application
	repo := mysql.NewValuationRepository(database.DB)
	publisher := messaging.NewOutboxEventPublisher(database.DB)

	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
	})
	if err != nil {
		panic(fmt.Sprintf("create kafka producer failed: %v", err))
	}
	defer producer.Close()

	relay := messaging.NewOutboxRelay(database.DB, producer, metricsImpl, messaging.RelayConfig{
		Topic:        cfg.Kafka.Topic,
		PollInterval: time.Duration(cfg.Outbox.PollInterval) * time.Millisecond,
		BatchSize:    cfg.Outbox.BatchSize,
		Retention:    time.Duration(cfg.Outbox.RetentionHours) * time.Hour,
	})

	cmdService := application.NewValuationCommandService(repo, publisher, metricsImpl, application.EngineDefaults{
		GridPoints:       cfg.Valuation.GridPoints,
		TimeSteps:        cfg.Valuation.TimeSteps,
		BatchParallelism: cfg.Valuation.BatchParallelism,
	})
	var cacheForQuery domain.ValuationCache
	if valuationCache != nil {
		cacheForQuery = valuationCache
	}
	queryService := application.NewValuationQueryService(repo, cacheForQuery, metricsImpl)

	// 7. Interfaces
	// gRPC：健康检查与反射
	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.GRPCRecoveryInterceptor(),
			middleware.GRPCLoggingInterceptor(),
		),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthServer)
	healthServer.SetServingStatus("valuation", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcSrv)

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.GinRecovery(),
		middleware.GinRequestID(),
		middleware.GinLogging(metricsImpl),
		middleware.GinCORS(),
	)
	if cfg.RateLimit.Enabled {
		// Redis 可用时用分布式限流，否则退化为进程内限流
		if redisCache != nil {
			limiter := ratelimit.New(redisCache.GetClient(), "valuation", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
			router.Use(middleware.GinRedisRateLimit(limiter))
		} else {
			router.Use(middleware.GinRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handler := valuationhttp.NewValuationHandler(cmdService, queryService)
	handler.RegisterRoutes(router.Group(""))

	// 8. Start
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		logger.Info(gctx, "Starting gRPC server", "addr", addr)
		return grpcSrv.Serve(lis)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := relay.Run(gctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	// 9. Graceful Shutdown
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(gctx, "Shutting down servers...")
		case <-gctx.Done():
			logger.Info(gctx, "Context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(gctx, "HTTP server shutdown failed", "error", err)
		}
		grpcSrv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server exited with error", "error", err)
	}
}
