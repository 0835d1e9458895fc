package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studio-go/internal/config"
	"studio-go/internal/models"
	"studio-go/internal/repository"
	"studio-go/internal/router"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	// 配置文件路径可由 STUDIO_CONFIG 指定
	configPath := os.Getenv("STUDIO_CONFIG")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// 初始化数据库
	if err := models.InitDB(cfg); err != nil {
		logger.WithError(err).Fatal("初始化数据库失败")
	}
	db := models.GetDB()

	// 上次运行中断的任务不会再完成
	taskRepo := repository.NewTaskRepository(db)
	if n, err := taskRepo.MarkInterrupted(); err != nil {
		logger.WithError(err).Warn("标记中断任务失败")
	} else if n > 0 {
		logger.WithField("count", n).Info("已将中断的任务标记为出错")
	}

	// 初始化Redis，不可用时退回数据库存储且不限流
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddress(),
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Redis不可用，键值存储使用数据库")
		_ = redisClient.Close()
		redisClient = nil
	}
	cancelPing()

	// 初始化工具
	jwtManager := utils.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.Algorithm,
		cfg.JWT.GetExpireDuration(),
	)

	// 初始化管理员账户
	authService := service.NewAuthService(repository.NewAdminUserRepository(db), jwtManager, cfg, logger)
	if err := authService.InitAdmin(); err != nil {
		logger.Warnf("初始化管理员失败: %v", err)
	}

	taskManager := service.NewTaskManager()

	// 设置路由
	r := router.SetupRouter(cfg, jwtManager, logger, db, redisClient, taskManager)

	srv := &http.Server{
		Addr:    cfg.Server.GetAddress(),
		Handler: r,
	}

	go func() {
		logger.Infof("服务器启动在 %s", srv.Addr)
		if !cfg.Server.ProductionMode {
			logger.Infof("开发模式: 管理员账号 %s", cfg.Admin.Username)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("启动服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器")
	taskManager.CancelAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("关闭服务器失败")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
