package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

func failWith(t *testing.T, err error) (int, Response, ErrorData) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FailWithError(c, err)

	var body struct {
		Response
		Data ErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body.Response, body.Data
}

func TestFailWithError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{constant.ErrFolderNotFound, http.StatusNotFound, "FOLDER_NOT_FOUND"},
		{constant.ErrAttachmentNotFound.WithMessage("附件 %d 不存在", 9), http.StatusNotFound, "ATTACHMENT_NOT_FOUND"},
		{constant.ErrFolderAlreadyExists, http.StatusConflict, "FOLDER_ALREADY_EXISTS"},
		{constant.ErrFolderDeleteForbidden, http.StatusConflict, "FOLDER_DELETE_FORBIDDEN"},
		{constant.ErrInvalidParameter, http.StatusBadRequest, "INVALID_PARAMETER"},
		{constant.ErrUploadIO.Wrap(errors.New("disk full")), http.StatusInternalServerError, "IO_ERROR"},
	}
	for _, tc := range cases {
		status, resp, data := failWith(t, tc.err)
		assert.Equal(t, tc.status, status)
		assert.Equal(t, tc.status, resp.Code)
		assert.Equal(t, tc.code, data.Code)
	}

	_, resp, _ := failWith(t, constant.ErrAttachmentNotFound.WithMessage("附件 %d 不存在", 9))
	assert.Equal(t, "附件 9 不存在", resp.Message)
}

func TestFailWithError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	status, resp, data := failWith(t, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, constant.ErrInternal.Message, resp.Message)
	assert.Equal(t, constant.KindInternal, data.Kind)

	gin.SetMode(gin.DebugMode)
	defer gin.SetMode(gin.TestMode)
	_, resp, _ = failWith(t, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Contains(t, resp.Message, "connection refused")
}
