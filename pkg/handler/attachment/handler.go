/*
 * @Description: 附件接口
 * @Author: 安知鱼
 * @Date: 2026-01-18 18:02:47
 * @LastEditTime: 2026-01-18 18:44:15
 * @LastEditors: 安知鱼
 */
package attachment_handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/response"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/attachment"
)

// BatchDeleteRequest 批量删除的请求体
type BatchDeleteRequest struct {
	IDs []uint `json:"ids"`
}

// Handler 负责处理附件相关的HTTP请求
type Handler struct {
	svc attachment.IAttachmentService
}

// NewHandler 是 Handler 的构造函数
func NewHandler(svc attachment.IAttachmentService) *Handler {
	return &Handler{svc: svc}
}

// List 分页查询附件
// @Summary      附件列表
// @Tags         附件
// @Security     BearerAuth
// @Produce      json
// @Param        page       query  int     false  "页码"
// @Param        pageSize   query  int     false  "每页数量"
// @Param        folder_id  query  int     false  "文件夹ID，0 表示未归档"
// @Param        kind       query  string  false  "附件类型"
// @Param        storage    query  string  false  "存储类型"
// @Param        keyword    query  string  false  "名称关键字"
// @Success      200  {object}  response.Response  "获取成功"
// @Router       /attachments [get]
func (h *Handler) List(c *gin.Context) {
	var query model.AttachmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	result, err := h.svc.ListAttachments(c.Request.Context(), &query)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// Get 获取附件详情
// @Summary      附件详情
// @Tags         附件
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "附件ID"
// @Success      200  {object}  response.Response  "获取成功"
// @Failure      404  {object}  response.Response  "附件不存在"
// @Router       /attachments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	att, err := h.svc.GetAttachment(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, att, "获取成功")
}

// Update 修改附件的名称、所属文件夹、类型或状态
// @Summary      更新附件
// @Tags         附件
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "附件ID"
// @Param        body  body  model.UpdateAttachmentParams  true  "需要修改的字段"
// @Success      200  {object}  response.Response  "更新成功"
// @Failure      400  {object}  response.Response  "参数无效"
// @Failure      404  {object}  response.Response  "附件或文件夹不存在"
// @Router       /attachments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var params model.UpdateAttachmentParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	params.ActorID = actorID

	att, err := h.svc.UpdateAttachment(c.Request.Context(), id, &params)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, att, "更新成功")
}

// Delete 删除单个附件
// @Summary      删除附件
// @Tags         附件
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "附件ID"
// @Success      200  {object}  response.Response  "删除成功"
// @Failure      404  {object}  response.Response  "附件不存在"
// @Router       /attachments/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	deleted, err := h.svc.DeleteAttachment(c.Request.Context(), id, actorID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"id": deleted}, "删除成功")
}

// BatchDelete 批量删除附件，重复与不存在的 id 会被忽略
// @Summary      批量删除附件
// @Tags         附件
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  BatchDeleteRequest  true  "附件ID列表"
// @Success      200  {object}  response.Response  "删除成功"
// @Failure      400  {object}  response.Response  "ID列表为空"
// @Router       /attachments/batch-delete [post]
func (h *Handler) BatchDelete(c *gin.Context) {
	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}
	deleted, err := h.svc.BatchDeleteAttachments(c.Request.Context(), req.IDs, actorID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"ids": deleted}, "删除成功")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "ID 格式不正确")
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) (uint, bool) {
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "无效的用户凭证")
		return 0, false
	}
	return actorID, true
}
