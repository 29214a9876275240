package model

import (
	"encoding/json"
	"testing"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		mime string
		want constant.AttachmentKind
	}{
		{"image/png", constant.AttachmentKindImage},
		{"IMAGE/JPEG", constant.AttachmentKindImage},
		{"audio/mpeg", constant.AttachmentKindAudio},
		{"video/mp4", constant.AttachmentKindVideo},
		{"application/zip", constant.AttachmentKindOther},
		{"", constant.AttachmentKindOther},
		{"imagex/png", constant.AttachmentKindOther},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.mime))
		})
	}
}

func TestPageQueryNormalize(t *testing.T) {
	q := PageQuery{}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, constant.DefaultPageSize, q.PageSize)

	q = PageQuery{Page: 3, PageSize: 1000}.Normalize()
	assert.Equal(t, constant.MaxPageSize, q.PageSize)
	assert.Equal(t, 200, q.Offset())
}

func TestApplyToKeepsSecretWhenOmitted(t *testing.T) {
	stored := AliOSSSettings{AccessKeyID: "id", AccessKeySecret: "S1", Bucket: "b", Region: "oss-cn-hangzhou"}

	bucket := "b2"
	merged := (&AliOSSSettingsInput{Bucket: &bucket}).ApplyTo(stored)
	assert.Equal(t, "S1", merged.AccessKeySecret)
	assert.Equal(t, "b2", merged.Bucket)

	empty := ""
	merged = (&AliOSSSettingsInput{AccessKeySecret: &empty}).ApplyTo(stored)
	assert.Equal(t, "S1", merged.AccessKeySecret)

	s2 := "S2"
	merged = (&AliOSSSettingsInput{AccessKeySecret: &s2}).ApplyTo(stored)
	assert.Equal(t, "S2", merged.AccessKeySecret)

	var nilInput *S3SettingsInput
	s3 := S3Settings{SecretAccessKey: "K"}
	assert.Equal(t, s3, nilInput.ApplyTo(s3))
}

func TestSelection(t *testing.T) {
	cfg := StorageConfig{ActiveProvider: constant.ProviderAWSS3, AWSS3: S3Settings{Bucket: "b"}}
	sel, ok := cfg.Selection().(S3Selection)
	require.True(t, ok)
	assert.Equal(t, "b", sel.Settings.Bucket)

	cfg.ActiveProvider = constant.ProviderDisabled
	assert.Equal(t, constant.ProviderDisabled, cfg.Selection().Provider())
}

func TestRedactJSONFields(t *testing.T) {
	raw := `{"access_key_id":"id","access_key_secret":"S1","bucket":"b"}`
	out := RedactJSONFields(raw, AliOSSSecretFields...)
	assert.NotContains(t, out, "S1")

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "id", m["access_key_id"])
	_, exists := m["access_key_secret"]
	assert.False(t, exists)

	assert.Equal(t, "", RedactJSONFields("not json S1", AliOSSSecretFields...))
	assert.Equal(t, "", RedactJSONFields(`["S1"]`, AliOSSSecretFields...))
	assert.Equal(t, "", RedactJSONFields("", AliOSSSecretFields...))
}

func TestImportPayloadDecoding(t *testing.T) {
	raw := `{"format":"anheyu-storage-config","version":1,"active_provider":"aliyun_oss","aliyun_oss":{"bucket":"b"}}`
	var in StorageConfigImport
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	assert.Equal(t, StorageConfigFormat, in.Format)
	assert.Equal(t, "aliyun_oss", in.ActiveProvider)
	require.NotNil(t, in.AliyunOSS)
	assert.Nil(t, in.AliyunOSS.AccessKeySecret)
	assert.Nil(t, in.AWSS3)
}
