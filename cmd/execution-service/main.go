package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/assignexpert/assignexpert/internal/common/cache"
	"github.com/assignexpert/assignexpert/internal/common/http/middleware"
	"github.com/assignexpert/assignexpert/internal/common/mq"
	"github.com/assignexpert/assignexpert/internal/execution/controller"
	"github.com/assignexpert/assignexpert/internal/execution/repository"
	"github.com/assignexpert/assignexpert/internal/execution/sandbox"
	"github.com/assignexpert/assignexpert/internal/execution/service"
	"github.com/assignexpert/assignexpert/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/execution-service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() {
		_ = redisCache.Close()
	}()

	mqClient, err := mq.NewKafkaQueue(appCfg.Kafka.toMQConfig())
	if err != nil {
		logger.Error(context.Background(), "init kafka failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mqClient.Close()
	}()

	engine, err := sandbox.NewDockerEngine()
	if err != nil {
		logger.Error(context.Background(), "init sandbox engine failed", zap.Error(err))
		return
	}

	resultRepo := repository.NewResultRepository(redisCache, appCfg.Execution.ResultTTL)
	progressRepo := repository.NewProgressRepository(redisCache, appCfg.Execution.ResultTTL)

	intake, err := service.NewIntakeService(service.IntakeConfig{
		Producer:     mqClient,
		Results:      resultRepo,
		Progress:     progressRepo,
		Topic:        appCfg.Kafka.Topic,
		MaxCodeBytes: appCfg.Execution.MaxCodeBytes,
	})
	if err != nil {
		logger.Error(context.Background(), "init intake service failed", zap.Error(err))
		return
	}

	orchestrator, err := service.NewOrchestrator(service.OrchestratorConfig{
		Engine:        engine,
		Results:       resultRepo,
		Progress:      progressRepo,
		WorkspaceRoot: appCfg.Execution.WorkspaceRoot,
		ImagePrefix:   appCfg.Execution.ImagePrefix,
	})
	if err != nil {
		logger.Error(context.Background(), "init orchestrator failed", zap.Error(err))
		return
	}

	err = mqClient.SubscribeWithOptions(context.Background(), appCfg.Kafka.Topic,
		orchestrator.HandleMessage, appCfg.Kafka.subscribeOptions())
	if err != nil {
		logger.Error(context.Background(), "subscribe kafka failed", zap.Error(err))
		return
	}
	if err := mqClient.Start(); err != nil {
		logger.Error(context.Background(), "start kafka consumer failed", zap.Error(err))
		return
	}

	executionController := controller.NewExecutionController(intake).
		WithDependency("redis", redisCache).
		WithDependency("kafka", mqClient)

	httpServer := buildHTTPServer(appCfg.Server, executionController)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "execution http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	_ = mqClient.Stop()
}

func buildHTTPServer(cfg ServerConfig, executionController *controller.ExecutionController) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(requestLogger())

	executionController.RegisterRoutes(router)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
