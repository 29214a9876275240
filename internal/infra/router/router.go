/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2026-01-18 19:24:51
 * @LastEditors: 安知鱼
 */
package router

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/internal/app/middleware"
	attachment_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/attachment"
	folder_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/folder"
	setting_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/setting"
	storage_config_handler "github.com/anzhiyu-c/anheyu-attachment/pkg/handler/storage_config"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")

		c.Next()
	})
}

// StaticOptions 本地存储文件的对外访问路径
type StaticOptions struct {
	URLPrefix string
	Root      string
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	attachmentHandler    *attachment_handler.Handler
	folderHandler        *folder_handler.Handler
	settingHandler       *setting_handler.SettingHandler
	storageConfigHandler *storage_config_handler.Handler
	mw                   *middleware.Middleware
	static               StaticOptions
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	attachmentHandler *attachment_handler.Handler,
	folderHandler *folder_handler.Handler,
	settingHandler *setting_handler.SettingHandler,
	storageConfigHandler *storage_config_handler.Handler,
	mw *middleware.Middleware,
	static StaticOptions,
) *Router {
	return &Router{
		attachmentHandler:    attachmentHandler,
		folderHandler:        folderHandler,
		settingHandler:       settingHandler,
		storageConfigHandler: storageConfigHandler,
		mw:                   mw,
		static:               static,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Cors(), r.mw.RequestLogger())

	// 本地存储的文件直接由 gin 提供
	if r.static.URLPrefix != "" && r.static.Root != "" {
		engine.Static(strings.TrimSuffix(r.static.URLPrefix, "/"), r.static.Root)
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware())

	r.registerFolderRoutes(apiGroup)
	r.registerAttachmentRoutes(apiGroup)
	r.registerStorageConfigRoutes(apiGroup)
	r.registerSettingRoutes(apiGroup)
}

func (r *Router) registerFolderRoutes(api *gin.RouterGroup) {
	folders := api.Group("/attachment/folders").Use(r.mw.JWTAuth())
	{
		folders.GET("", r.folderHandler.List)
		folders.GET("/tree", r.folderHandler.Tree)
		folders.GET("/:id", r.folderHandler.Get)
		folders.POST("", r.folderHandler.Create)
		folders.PUT("/:id", r.folderHandler.Update)
		folders.DELETE("/:id", r.folderHandler.Delete)
	}
}

func (r *Router) registerAttachmentRoutes(api *gin.RouterGroup) {
	attachments := api.Group("/attachments").Use(r.mw.JWTAuth())
	{
		attachments.GET("", r.attachmentHandler.List)
		attachments.POST("/upload", r.attachmentHandler.Upload)
		attachments.POST("/batch-delete", r.attachmentHandler.BatchDelete)
		attachments.GET("/:id", r.attachmentHandler.Get)
		attachments.PUT("/:id", r.attachmentHandler.Update)
		attachments.DELETE("/:id", r.attachmentHandler.Delete)
	}
}

func (r *Router) registerStorageConfigRoutes(api *gin.RouterGroup) {
	// 存储配置包含密钥，只允许管理员访问
	storageAdmin := api.Group("/storage/config").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		storageAdmin.GET("", r.storageConfigHandler.Get)
		storageAdmin.PUT("", r.storageConfigHandler.Update)
		storageAdmin.GET("/export", r.storageConfigHandler.Export)
		storageAdmin.POST("/import", r.storageConfigHandler.Import)
	}
}

func (r *Router) registerSettingRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings").Use(r.mw.JWTAuth())
	{
		settings.GET("/:key", r.settingHandler.GetSetting)
		settings.POST("/by-keys", r.settingHandler.GetSettingsByKeys)
	}
}
