/*
 * @Description: 存储配置接口，仅管理员可用
 * @Author: 安知鱼
 * @Date: 2026-01-18 18:55:41
 * @LastEditTime: 2026-01-18 19:10:26
 * @LastEditors: 安知鱼
 */
package storage_config_handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/response"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/storage_config"
)

// Handler 负责处理存储配置相关的HTTP请求
type Handler struct {
	svc storage_config.Service
}

// NewHandler 是 Handler 的构造函数
func NewHandler(svc storage_config.Service) *Handler {
	return &Handler{svc: svc}
}

// Get 获取当前的存储配置
// @Summary      获取存储配置
// @Tags         存储配置
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.StorageConfig}  "获取成功"
// @Failure      403  {object}  response.Response  "权限不足"
// @Router       /storage/config [get]
func (h *Handler) Get(c *gin.Context) {
	cfg, err := h.svc.GetConfig(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, cfg, "获取成功")
}

// Update 保存存储配置，留空的密钥沿用已保存的值
// @Summary      更新存储配置
// @Tags         存储配置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  model.StorageConfigInput  true  "存储配置"
// @Success      200  {object}  response.Response{data=model.StorageConfig}  "保存成功"
// @Failure      400  {object}  response.Response  "配置无效"
// @Router       /storage/config [put]
func (h *Handler) Update(c *gin.Context) {
	var input model.StorageConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "无效的用户凭证")
		return
	}

	cfg, err := h.svc.UpsertConfig(c.Request.Context(), &input, actorID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, cfg, "保存成功")
}

// Export 导出存储配置快照
// @Summary      导出存储配置
// @Tags         存储配置
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.StorageConfigSnapshot}  "导出成功"
// @Router       /storage/config/export [get]
func (h *Handler) Export(c *gin.Context) {
	snapshot, err := h.svc.ExportConfig(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, snapshot, "导出成功")
}

// Import 导入存储配置快照
// @Summary      导入存储配置
// @Tags         存储配置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  model.StorageConfigImport  true  "导出的快照"
// @Success      200  {object}  response.Response{data=model.ImportResult}  "导入成功"
// @Failure      400  {object}  response.Response  "快照格式或版本不受支持"
// @Router       /storage/config/import [post]
func (h *Handler) Import(c *gin.Context) {
	var payload model.StorageConfigImport
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "无效的用户凭证")
		return
	}

	result, err := h.svc.ImportConfig(c.Request.Context(), &payload, actorID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "导入成功")
}
