package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/idgen"
)

var testSecret = []byte("middleware-secret")

func newEngine(t *testing.T, logger *zap.Logger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, idgen.InitSqidsEncoderWithSeed("middleware"))

	mw := NewMiddleware(testSecret, logger)
	r := gin.New()
	r.Use(Cors(), mw.RequestLogger())
	api := r.Group("/api")
	api.GET("/me", mw.JWTAuth(), func(c *gin.Context) {
		id, err := auth.CurrentUserID(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	api.GET("/admin", mw.JWTAuth(), mw.AdminAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func token(t *testing.T, userID, groupID uint) string {
	t.Helper()
	s, err := auth.GenerateToken(userID, groupID, testSecret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + s
}

func do(r *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newEngine(t, zap.NewNop())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me", "Bearer not-a-jwt").Code)

	w := do(r, http.MethodGet, "/api/me", token(t, 5, 2))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5}`, w.Body.String())
}

func TestAdminAuth(t *testing.T) {
	r := newEngine(t, zap.NewNop())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/admin", token(t, 5, 2)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/api/admin", token(t, 1, auth.AdminGroupID)).Code)
}

func TestCorsPreflight(t *testing.T) {
	r := newEngine(t, zap.NewNop())
	req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_RecordsActor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newEngine(t, zap.New(core))

	do(r, http.MethodGet, "/api/me", token(t, 5, 2))

	entries := logs.FilterMessage("HTTP请求").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/me", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.EqualValues(t, 5, fields["actor_id"])
}
