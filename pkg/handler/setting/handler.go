/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 12:26:45
 * @LastEditTime: 2026-01-18 18:52:30
 * @LastEditors: 安知鱼
 */
package setting_handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/response"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/setting"
)

// GetSettingsByKeysReq 定义了批量获取配置的请求体
type GetSettingsByKeysReq struct {
	Keys []string `json:"keys" binding:"required,min=1"`
}

// SettingHandler 封装了配置相关的控制器方法。
// 这里返回的值都经过脱敏，密钥只能通过存储配置接口由管理员读取。
type SettingHandler struct {
	settingSvc setting.SettingService
}

// NewSettingHandler 是 SettingHandler 的构造函数
func NewSettingHandler(settingSvc setting.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// GetSetting 获取单个配置项
// @Summary      获取配置
// @Tags         站点设置
// @Security     BearerAuth
// @Produce      json
// @Param        key  path  string  true  "配置键名"
// @Success      200  {object}  response.Response  "获取成功"
// @Failure      400  {object}  response.Response  "未知的配置项"
// @Router       /settings/{key} [get]
func (h *SettingHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	value, err := h.settingSvc.Get(c.Request.Context(), key)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value}, "获取配置成功")
}

// GetSettingsByKeys 批量获取配置项
// @Summary      批量获取配置
// @Tags         站点设置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      GetSettingsByKeysReq  true  "配置键名列表"
// @Success      200   {object}  response.Response  "获取成功"
// @Failure      400   {object}  response.Response  "参数错误"
// @Router       /settings/by-keys [post]
func (h *SettingHandler) GetSettingsByKeys(c *gin.Context) {
	var req GetSettingsByKeysReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数无效: 'keys' 不能为空")
		return
	}

	settings, err := h.settingSvc.GetByKeys(c.Request.Context(), req.Keys)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, settings, "获取配置成功")
}
