/*
 * @Description: 附件文件夹接口
 * @Author: 安知鱼
 * @Date: 2026-01-18 17:52:19
 * @LastEditTime: 2026-01-21 15:08:44
 * @LastEditors: 安知鱼
 */
package folder_handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/response"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/attachment"
)

// CreateFolderRequest 创建文件夹的请求体，parent_id 为 null 或 0 都表示根目录
type CreateFolderRequest struct {
	Name      string              `json:"name" binding:"required"`
	ParentID  *uint               `json:"parent_id"`
	Kind      constant.FolderKind `json:"kind"`
	Status    constant.Status     `json:"status"`
	SortOrder int                 `json:"sort_order"`
	Remark    string              `json:"remark"`
}

// OptionalParentID 区分请求体中缺省的 parent_id 与显式的 null。
// 缺省表示不修改，null 与 0 都表示移动到根目录。
type OptionalParentID struct {
	Present bool
	Value   uint
}

func (o *OptionalParentID) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = 0
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateFolderRequest 更新文件夹的请求体，未传的字段保持不变
type UpdateFolderRequest struct {
	Name      *string              `json:"name"`
	ParentID  OptionalParentID     `json:"parent_id" swaggertype:"integer"`
	Kind      *constant.FolderKind `json:"kind"`
	Status    *constant.Status     `json:"status"`
	SortOrder *int                 `json:"sort_order"`
	Remark    *string              `json:"remark"`
}

func (r *UpdateFolderRequest) toParams(actorID uint) *model.UpdateFolderParams {
	params := &model.UpdateFolderParams{
		Name:      r.Name,
		Kind:      r.Kind,
		Status:    r.Status,
		SortOrder: r.SortOrder,
		Remark:    r.Remark,
		ActorID:   actorID,
	}
	if r.ParentID.Present {
		parentID := r.ParentID.Value
		params.ParentID = &parentID
	}
	return params
}

// Handler 负责处理附件文件夹相关的HTTP请求
type Handler struct {
	svc attachment.IAttachmentService
}

// NewHandler 是 Handler 的构造函数
func NewHandler(svc attachment.IAttachmentService) *Handler {
	return &Handler{svc: svc}
}

// List 分页查询文件夹
// @Summary      文件夹列表
// @Tags         附件文件夹
// @Security     BearerAuth
// @Produce      json
// @Param        page       query  int     false  "页码"
// @Param        pageSize   query  int     false  "每页数量"
// @Param        name       query  string  false  "名称关键字"
// @Param        parent_id  query  int     false  "父文件夹ID"
// @Success      200  {object}  response.Response  "获取成功"
// @Router       /attachment/folders [get]
func (h *Handler) List(c *gin.Context) {
	var query model.FolderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	result, err := h.svc.ListFolders(c.Request.Context(), &query)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// Tree 获取文件夹树
// @Summary      文件夹树
// @Tags         附件文件夹
// @Security     BearerAuth
// @Produce      json
// @Param        root_id  query  int  false  "子树根节点ID，不传返回完整的树"
// @Success      200  {object}  response.Response  "获取成功"
// @Failure      404  {object}  response.Response  "文件夹不存在"
// @Router       /attachment/folders/tree [get]
func (h *Handler) Tree(c *gin.Context) {
	var rootID uint
	if raw := c.Query("root_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "root_id 格式不正确")
			return
		}
		rootID = uint(id)
	}
	tree, err := h.svc.FolderTree(c.Request.Context(), rootID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, tree, "获取成功")
}

// Get 获取单个文件夹
// @Summary      文件夹详情
// @Tags         附件文件夹
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "文件夹ID"
// @Success      200  {object}  response.Response  "获取成功"
// @Failure      404  {object}  response.Response  "文件夹不存在"
// @Router       /attachment/folders/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	folder, err := h.svc.GetFolder(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, folder, "获取成功")
}

// Create 创建文件夹
// @Summary      创建文件夹
// @Tags         附件文件夹
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  CreateFolderRequest  true  "文件夹信息"
// @Success      201  {object}  response.Response  "创建成功"
// @Failure      400  {object}  response.Response  "参数无效"
// @Failure      409  {object}  response.Response  "同级目录下已存在同名文件夹"
// @Router       /attachment/folders [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "无效的用户凭证")
		return
	}

	params := &model.CreateFolderParams{
		Name:      req.Name,
		Kind:      req.Kind,
		Status:    req.Status,
		SortOrder: req.SortOrder,
		Remark:    req.Remark,
		ActorID:   actorID,
	}
	if req.ParentID != nil {
		params.ParentID = *req.ParentID
	}

	folder, err := h.svc.CreateFolder(c.Request.Context(), params)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, folder, "创建成功")
}

// Update 更新文件夹，未传的字段保持不变，parent_id 为 null 或 0 时移动到根目录
// @Summary      更新文件夹
// @Tags         附件文件夹
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "文件夹ID"
// @Param        body  body  UpdateFolderRequest  true  "需要修改的字段"
// @Success      200  {object}  response.Response  "更新成功"
// @Failure      400  {object}  response.Response  "参数无效"
// @Failure      404  {object}  response.Response  "文件夹不存在"
// @Failure      409  {object}  response.Response  "同级目录下已存在同名文件夹"
// @Router       /attachment/folders/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数无效: "+err.Error())
		return
	}
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "无效的用户凭证")
		return
	}

	folder, err := h.svc.UpdateFolder(c.Request.Context(), id, req.toParams(actorID))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, folder, "更新成功")
}

// Delete 删除空文件夹
// @Summary      删除文件夹
// @Tags         附件文件夹
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  int  true  "文件夹ID"
// @Success      200  {object}  response.Response  "删除成功"
// @Failure      404  {object}  response.Response  "文件夹不存在"
// @Failure      409  {object}  response.Response  "文件夹下存在子文件夹或附件"
// @Router       /attachment/folders/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "无效的用户凭证")
		return
	}
	deleted, err := h.svc.DeleteFolder(c.Request.Context(), id, actorID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"id": deleted}, "删除成功")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "ID 格式不正确")
		return 0, false
	}
	return uint(id), true
}
