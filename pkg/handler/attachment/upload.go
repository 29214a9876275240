/*
 * @Description: 附件上传接口
 * @Author: 安知鱼
 * @Date: 2026-01-18 18:31:06
 * @LastEditTime: 2026-01-18 18:44:15
 * @LastEditors: 安知鱼
 */
package attachment_handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/response"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/attachment"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/upload"
)

// 兼容的文件字段名，按顺序取第一个非空的
var fileFields = []string{"files[]", "files", "file"}

// UploadResponse 上传接口的返回数据
type UploadResponse struct {
	Results   []*model.UploadItemResult `json:"results"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
}

// Upload 上传一个或多个文件，每个文件单独返回结果
// @Summary      上传附件
// @Tags         附件
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        files[]    formData  file    true   "文件，可多选"
// @Param        folder_id  formData  int     false  "目标文件夹ID"
// @Param        kind       formData  string  false  "附件类型，不传则按 MIME 推断"
// @Param        name       formData  string  false  "显示名称，只在单文件上传时生效"
// @Param        storage    formData  string  false  "存储类型，不传则使用当前启用的存储"
// @Success      200  {object}  response.Response{data=UploadResponse}  "上传完成"
// @Failure      400  {object}  response.Response  "参数无效"
// @Failure      404  {object}  response.Response  "文件夹不存在"
// @Router       /attachments/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "无法解析上传表单: "+err.Error())
		return
	}

	var headers []*multipart.FileHeader
	for _, field := range fileFields {
		if len(form.File[field]) > 0 {
			headers = form.File[field]
			break
		}
	}
	if len(headers) == 0 {
		response.Fail(c, http.StatusBadRequest, "没有需要上传的文件")
		return
	}

	var folderID uint
	if raw := c.PostForm("folder_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "folder_id 格式不正确")
			return
		}
		folderID = uint(id)
	}

	actorID, ok := actor(c)
	if !ok {
		return
	}

	files := make([]*upload.FileInput, 0, len(headers))
	for _, fh := range headers {
		files = append(files, &upload.FileInput{
			OriginalName: fh.Filename,
			MimeType:     fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	req := &attachment.UploadRequest{
		FolderID: folderID,
		Kind:     constant.AttachmentKind(c.PostForm("kind")),
		Name:     c.PostForm("name"),
		Storage:  constant.StorageType(c.PostForm("storage")),
		ActorID:  actorID,
	}
	results, err := h.svc.Upload(c.Request.Context(), req, files)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	resp := UploadResponse{Results: results}
	for _, r := range results {
		if r.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	response.Success(c, resp, "上传完成")
}
