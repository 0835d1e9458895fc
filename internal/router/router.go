package router

import (
	"context"
	"errors"

	"studio-go/internal/config"
	"studio-go/internal/export"
	"studio-go/internal/handler"
	"studio-go/internal/middleware"
	"studio-go/internal/repository"
	"studio-go/internal/service"
	"studio-go/internal/utils"
	"studio-go/internal/workshop"
	"studio-go/pkg/backend_caller"
	"studio-go/pkg/redis_kv"
	"studio-go/pkg/redis_limiter"
	"studio-go/pkg/youtube_search"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
// redisClient 为nil时不限流，键值存储使用数据库
func SetupRouter(
	cfg *config.Config,
	jwtManager *utils.JWTManager,
	logger *logrus.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	taskManager *service.TaskManager,
) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.InitValidator()

	r := gin.New()

	// 全局中间件
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg))

	// 健康检查
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "教学资源工作室 API",
			"version": "1.0.0",
		})
	})

	// 初始化Repository
	adminRepo := repository.NewAdminUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	artifactRepo := repository.NewArtifactRepository(db)
	chatRepo := repository.NewChatRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	toolRepo := repository.NewToolEndpointRepository(db)

	var kv repository.KVRepository = repository.NewGormKVRepository(db)
	var limiter service.Limiter
	if redisClient != nil {
		if cfg.Storage.KVBackend == "redis" {
			kv = redis_kv.NewRedisKV(redisClient, "studio:kv:")
		}
		limiter = redis_limiter.NewRedisLimiter(redisClient, cfg.Redis.MaxConcurrency, "studio:slots:", cfg.Redis.GetSlotTTL(), logger)
	}

	// 初始化Service
	caller := backend_caller.NewBackendCaller(cfg.Backend.BaseURL, cfg.Backend.GetTimeout(), logger)
	registry := workshop.NewRegistry()
	toolService := service.NewToolService(registry, toolRepo, cfg.Backend.RetryAttempts, logger)
	accessGate := service.NewAccessGate(caller, cfg, logger)
	genService := service.NewGenerationService(toolService, taskRepo, artifactRepo, caller, accessGate, limiter, taskManager, cfg, logger)
	chatService := service.NewChatService(artifactRepo, chatRepo, kv, toolService, caller, accessGate, cfg, logger)
	genService.AddListener(chatService)

	exporter := export.NewRegistry(export.Options{PageFormat: cfg.Export.PageFormat, FontSize: cfg.Export.FontSize})
	artifactService := service.NewArtifactService(artifactRepo, exporter, logger)
	unitService := service.NewUnitService(unitRepo, genService, cfg, logger)
	storageService := service.NewStorageService(kv, logger)
	authService := service.NewAuthService(adminRepo, jwtManager, cfg, logger)

	var searcher service.VideoSearcher
	s, err := youtube_search.NewSearcher(context.Background(), cfg.YouTube.APIKey, cfg.YouTube.MaxResults, logger)
	switch {
	case err == nil:
		searcher = s
	case !errors.Is(err, youtube_search.ErrNotConfigured):
		logger.WithError(err).Warn("[SetupRouter] 视频搜索不可用")
	}
	videoService := service.NewVideoService(searcher)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	toolHandler := handler.NewToolHandler(toolService)
	taskHandler := handler.NewTaskHandler(genService, logger)
	artifactHandler := handler.NewArtifactHandler(artifactService, chatService)
	unitHandler := handler.NewUnitHandler(unitService, cfg.Export.Location())
	storageHandler := handler.NewStorageHandler(storageService)
	accessHandler := handler.NewAccessHandler(accessGate, videoService)
	adminHandler := handler.NewAdminHandler(genService)

	// API路由组
	api := r.Group("/api")
	{
		// 公开路由
		api.GET("/workshops", toolHandler.GetTools)
		api.POST("/admin/login", authHandler.Login)

		// 终端用户路由，以邮箱识别身份
		user := api.Group("")
		user.Use(middleware.UserEmail())
		{
			user.GET("/access", accessHandler.CheckAccess)
			user.GET("/videos", accessHandler.SearchVideos)

			// 生成任务
			user.POST("/workshops/:tool/generate", taskHandler.Generate)
			user.POST("/workshops/:tool/tasks", taskHandler.StartTask)
			user.GET("/tasks", taskHandler.GetAllTasks)
			user.GET("/tasks/:task_id", taskHandler.GetTaskStatus)
			user.GET("/tasks/:task_id/events", taskHandler.GetProgress)
			user.POST("/tasks/:task_id/cancel", taskHandler.StopTask)

			// 制品
			user.GET("/artifacts", artifactHandler.ListArtifacts)
			user.GET("/artifacts/:id", artifactHandler.GetArtifact)
			user.GET("/artifacts/:id/render", artifactHandler.RenderArtifact)
			user.GET("/artifacts/:id/export", artifactHandler.ExportArtifact)
			user.POST("/artifacts/:id/chat", artifactHandler.ImproveArtifact)
			user.GET("/artifacts/:id/chat", artifactHandler.ChatHistory)

			// 单元计划与日历
			user.POST("/units/generate", unitHandler.GenerateUnit)
			user.GET("/units", unitHandler.ListUnits)
			user.GET("/units/:id", unitHandler.GetUnit)
			user.PUT("/units/:id", unitHandler.UpdateUnit)
			user.GET("/calendar/events", unitHandler.CalendarEvents)

			// 键值存储
			user.GET("/storage/:key", storageHandler.GetItem)
			user.PUT("/storage/:key", storageHandler.SetItem)
			user.DELETE("/storage/:key", storageHandler.DeleteItem)
			user.DELETE("/storage", storageHandler.ClearItems)
		}

		// 运营后台
		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.AdminAuth(jwtManager))
		{
			adminGroup.GET("/me", authHandler.GetMe)

			adminGroup.GET("/tools", toolHandler.GetAllEndpoints)
			adminGroup.POST("/tools", toolHandler.CreateEndpoint)
			adminGroup.PUT("/tools/:id", toolHandler.UpdateEndpoint)
			adminGroup.DELETE("/tools/:id", toolHandler.DeleteEndpoint)

			adminGroup.GET("/tasks", adminHandler.ListAllTasks)
			adminGroup.GET("/tasks/active", adminHandler.GetActiveTasks)
			adminGroup.POST("/tasks/:task_id/cancel", adminHandler.CancelTask)
		}
	}

	return r
}
