package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

func validOSS() model.AliOSSSettings {
	return model.AliOSSSettings{
		AccessKeyID:     "AK",
		AccessKeySecret: "SK",
		Bucket:          "media",
		Region:          "oss-cn-hangzhou",
	}
}

func validS3() model.S3Settings {
	return model.S3Settings{
		AccessKeyID:     "AK",
		SecretAccessKey: "SK",
		Bucket:          "media",
		Region:          "us-east-1",
	}
}

func TestManager_Validate(t *testing.T) {
	m := NewDefaultManager()

	assert.NoError(t, m.Validate(model.DisabledSelection{}))
	assert.NoError(t, m.Validate(model.AliOSSSelection{Settings: validOSS()}))
	assert.NoError(t, m.Validate(model.S3Selection{Settings: validS3()}))

	oss := validOSS()
	oss.AccessKeySecret = ""
	err := m.Validate(model.AliOSSSelection{Settings: oss})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))
	assert.Contains(t, err.Error(), "access_key_secret")

	oss = validOSS()
	oss.Region = "cn-hangzhou"
	assert.True(t, errors.Is(m.Validate(model.AliOSSSelection{Settings: oss}), constant.ErrInvalidParameter))

	s3 := validS3()
	s3.Bucket = " "
	assert.True(t, errors.Is(m.Validate(model.S3Selection{Settings: s3}), constant.ErrInvalidParameter))
}

func TestAWSS3Strategy_RegionRules(t *testing.T) {
	st := NewAWSS3Strategy()

	s3 := validS3()
	s3.Region = "auto"
	assert.Error(t, st.ValidateSettings(model.S3Selection{Settings: s3}))

	s3.Endpoint = "https://account.r2.cloudflarestorage.com"
	assert.NoError(t, st.ValidateSettings(model.S3Selection{Settings: s3}))

	s3.Endpoint = "http://"
	assert.Error(t, st.ValidateSettings(model.S3Selection{Settings: s3}))

	assert.Error(t, st.ValidateSettings(model.AliOSSSelection{Settings: validOSS()}))
}

func TestManager_UnknownProvider(t *testing.T) {
	_, err := NewManager().Get(constant.ProviderAWSS3)
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))
}
