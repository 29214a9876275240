/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2026-01-18 20:48:02
 * @LastEditors: 安知鱼
 */
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/app/bootstrap"
	"github.com/anzhiyu-c/anheyu-attachment/internal/app/listener"
	"github.com/anzhiyu-c/anheyu-attachment/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-attachment/internal/app/task"
	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/database"
	ent_impl "github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/router"
	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/logger"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/config"
	attachment_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/attachment"
	folder_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/folder"
	setting_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/setting"
	storage_config_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/storage_config"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/attachment"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/setting"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/storage_config"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/storage_config/strategy"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/upload"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/utility"
)

// abandonedUploadAge 超过这个时间的上传临时文件视为残留
const abandonedUploadAge = 24 * time.Hour

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	engine    *gin.Engine
	server    *http.Server
	scheduler *task.Scheduler
	cacheSvc  utility.CacheService
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp(ctx context.Context) (*App, func(), error) {
	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	mode := logger.ProductionMode
	if cfg.GetBool(config.KeyServerDebug) {
		mode = logger.DevelopmentMode
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	zlog := logger.New(logger.Options{
		Mode:  mode,
		Level: cfg.GetString(config.KeyLogLevel),
		File:  cfg.GetString(config.KeyLogFile),
	})

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}
	drv, err := database.NewDriver(ctx, sqlDB, cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("redis 初始化失败: %w", err)
	}
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient, zlog)
	eventBus := event.NewEventBus(zlog)

	cleanup := func() {
		log.Println("执行清理操作：关闭事件总线与数据库连接...")
		eventBus.Shutdown()
		sqlDB.Close()
		if redisClient != nil {
			redisClient.Close()
		}
		zlog.Sync()
	}

	// --- Phase 3: 初始化数据仓库层 ---
	settingRepo := ent_impl.NewSettingRepo(drv)
	folderRepo := ent_impl.NewFolderRepo(drv)
	attachmentRepo := ent_impl.NewAttachmentRepo(drv)
	txManager := ent_impl.NewTransactionManager(drv)

	// --- Phase 4: 配置与引导 ---
	settingSvc := setting.NewSettingService(settingRepo, cacheSvc, eventBus, zlog)
	boot := bootstrap.NewBootstrapper(settingSvc, settingRepo, cfg, zlog)
	if err := boot.InitializeDatabase(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	secrets, err := boot.LoadSecrets(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := idgen.InitSqidsEncoderWithSeed(secrets.IDSeed); err != nil {
		cleanup()
		return nil, nil, err
	}

	// --- Phase 5: 初始化业务逻辑层 ---
	storageConfigSvc := storage_config.NewService(settingSvc, strategy.NewDefaultManager(), zlog)

	localRoot := cfg.GetString(config.KeyStorageLocalPath)
	localPrefix := cfg.GetString(config.KeyStorageLocalURLPrefix)
	localDriver, err := storage.NewLocalDriver(localRoot, localPrefix)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	storageMgr := storage.NewManager(localDriver, storageConfigSvc, zlog)
	storageConfigSvc.SetDriverInvalidator(storageMgr)

	listener.NewStorageConfigListener(eventBus, storageMgr, zlog)
	listener.NewAttachmentAuditListener(eventBus, zlog)

	uploadSvc := upload.NewUploadService(attachmentRepo, storageMgr, eventBus, zlog, upload.Options{
		TempDir:     cfg.GetString(config.KeyUploadTempDir),
		MaxSize:     cfg.GetInt64(config.KeyUploadMaxSize),
		Concurrency: cfg.GetInt(config.KeyUploadConcurrency),
	})
	attachmentSvc := attachment.NewAttachmentService(folderRepo, attachmentRepo, txManager, uploadSvc, eventBus, zlog,
		attachment.Options{MaxFolderDepth: cfg.GetInt(config.KeyAttachmentMaxFolderDepth)})

	// --- Phase 6: 定时任务 ---
	scheduler := task.NewScheduler(zlog)
	scheduler.Add("0 0 3 * * *", task.NewCleanupAbandonedUploadsJob(uploadSvc, abandonedUploadAge, zlog))
	if err := scheduler.RegisterJobs(); err != nil {
		cleanup()
		return nil, nil, err
	}

	// --- Phase 7: 初始化表现层 ---
	mw := middleware.NewMiddleware([]byte(secrets.JWTSecret), zlog)
	appRouter := router.NewRouter(
		attachment_handler.NewHandler(attachmentSvc),
		folder_handler.NewHandler(attachmentSvc),
		setting_handler.NewSettingHandler(settingSvc),
		storage_config_handler.NewHandler(storageConfigSvc),
		mw,
		router.StaticOptions{URLPrefix: localPrefix, Root: localDriver.Root()},
	)

	engine := gin.New()
	engine.Use(gin.Recovery())
	appRouter.Setup(engine)

	app := &App{
		cfg:       cfg,
		logger:    zlog,
		engine:    engine,
		scheduler: scheduler,
		cacheSvc:  cacheSvc,
	}
	return app, cleanup, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run 启动定时任务和 HTTP 服务，阻塞直到服务关闭
func (a *App) Run() error {
	a.scheduler.Start()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	a.server = &http.Server{
		Addr:              ":" + port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.logger.Info("应用程序启动成功", zap.String("port", port), zap.String("version", version.GetVersionString()), zap.String("cache", string(utility.GetCacheServiceType(a.cacheSvc))))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 停止接收新请求，并等待定时任务结束
func (a *App) Stop(ctx context.Context) {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("HTTP 服务关闭失败", zap.Error(err))
		}
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}
