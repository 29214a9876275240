package constant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBizErrorIs(t *testing.T) {
	custom := ErrFolderNotFound.WithMessage("文件夹 %d 不存在", 7)
	assert.True(t, errors.Is(custom, ErrFolderNotFound))
	assert.False(t, errors.Is(custom, ErrAttachmentNotFound))
	assert.Equal(t, "文件夹 7 不存在", custom.Error())

	wrapped := fmt.Errorf("service: %w", custom)
	assert.True(t, errors.Is(wrapped, ErrFolderNotFound))
	assert.Equal(t, KindNotFound, AsBizError(wrapped).Kind)
}

func TestBizErrorWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrUploadIO.Wrap(cause)
	assert.ErrorIs(t, err, ErrUploadIO)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAsBizError(t *testing.T) {
	assert.Nil(t, AsBizError(nil))
	biz := AsBizError(errors.New("boom"))
	assert.Equal(t, KindInternal, biz.Kind)
	assert.ErrorIs(t, biz, ErrInternal)
}

func TestParseProviderType(t *testing.T) {
	cases := map[string]ProviderType{
		"disabled":   ProviderDisabled,
		"local":      ProviderDisabled,
		"aliyun_oss": ProviderAliyunOSS,
		"aws_s3":     ProviderAWSS3,
	}
	for in, want := range cases {
		got, ok := ParseProviderType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseProviderType("tencent_cos")
	assert.False(t, ok)
	assert.Equal(t, StorageLocal, ProviderDisabled.StorageType())
	assert.Equal(t, StorageAWSS3, ProviderAWSS3.StorageType())
}
