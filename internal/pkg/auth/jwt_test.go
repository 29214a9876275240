package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/idgen"
)

func TestGenerateAndParseToken(t *testing.T) {
	require.NoError(t, idgen.InitSqidsEncoderWithSeed("jwt-test"))
	secret := []byte("secret")

	token, err := GenerateToken(7, AdminGroupID, secret, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	uid, err := claims.DecodeUserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), uid)
	gid, err := claims.DecodeUserGroupID()
	require.NoError(t, err)
	assert.Equal(t, AdminGroupID, gid)

	_, err = ParseToken(token, []byte("other"))
	assert.Error(t, err)

	expired, err := GenerateToken(7, 2, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.Error(t, err)
}

func TestCurrentUserID(t *testing.T) {
	require.NoError(t, idgen.InitSqidsEncoderWithSeed("jwt-test"))
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := CurrentUserID(c)
	assert.Error(t, err)

	publicID, err := idgen.GeneratePublicID(3, idgen.EntityTypeUser)
	require.NoError(t, err)
	c.Set(ClaimsKey, &CustomClaims{UserID: publicID})
	uid, err := CurrentUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint(3), uid)

	// 用户组ID不能冒充用户ID
	groupID, err := idgen.GeneratePublicID(3, idgen.EntityTypeUserGroup)
	require.NoError(t, err)
	c.Set(ClaimsKey, &CustomClaims{UserID: groupID})
	_, err = CurrentUserID(c)
	assert.Error(t, err)
}
