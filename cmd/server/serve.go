package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pocket-chat-server/internal/cache"
	"pocket-chat-server/internal/config"
	"pocket-chat-server/internal/database"
	"pocket-chat-server/internal/handler"
	"pocket-chat-server/internal/lock"
	"pocket-chat-server/internal/logger"
	"pocket-chat-server/internal/middleware"
	"pocket-chat-server/internal/repository"
	"pocket-chat-server/internal/service"
)

// shutdownTimeout 等待进行中请求结束的最长时间
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	Long: `加载配置，打开数据库并执行迁移，然后启动 HTTP 服务。

收到 SIGINT 或 SIGTERM 后优雅退出。`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := openDatabase(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// 初始化追加锁
	// 启用 Redis 时多个实例共享同一把锁，否则使用进程内锁
	var locker service.Locker = lock.NewLocal()
	var redisPinger handler.Pinger
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		locker = redisCache
		redisPinger = redisCache
		log.Info("using redis append lock", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	}

	// 初始化 Repository 层
	store := repository.NewStore(db)

	// 初始化 Service 层
	conversationService := service.NewConversationService(store, locker)
	promptService := service.NewPromptService(store.Prompts)
	endpointService := service.NewEndpointService(store.Endpoints)
	gatewayService := service.NewGatewayService(endpointService, service.NewHTTPClient(cfg.Gateway))
	defer gatewayService.Close()

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.Server.CORS)))
	router.Use(middleware.BodyLimitMiddleware(cfg.Server.MaxBodyMB << 20))

	handler.RegisterRoutes(router, handler.Handlers{
		Health:       handler.NewHealthHandler(store, redisPinger),
		Conversation: handler.NewConversationHandler(conversationService, log),
		Prompt:       handler.NewPromptHandler(promptService, log),
		Endpoint:     handler.NewEndpointHandler(endpointService, log),
		Gateway:      handler.NewGatewayHandler(gatewayService, log),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}

// openDatabase 打开数据库并执行未完成的迁移
func openDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}
	if _, err := database.Migrate(ctx, db, log); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}
