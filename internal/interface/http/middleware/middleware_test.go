package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/monobook/internal/testutil/memory"
	"github.com/xiebiao/monobook/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"), "桶容量耗尽")
	assert.True(t, l.allow("10.0.0.2"), "不同IP互不影响")

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"), "每秒补充一个令牌")

	t.Run("清理不活跃IP", func(t *testing.T) {
		now = now.Add(limiterIdleTTL + time.Second)
		l.allow("10.0.0.3")
		l.mu.Lock()
		defer l.mu.Unlock()
		assert.Len(t, l.visitors, 1)
		assert.Contains(t, l.visitors, "10.0.0.3")
	})
}

func TestRateLimiter_Handler(t *testing.T) {
	r := gin.New()
	r.POST("/token", NewRateLimiter(0.001, 1).Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/token", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/token", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestLogger_RequestID(t *testing.T) {
	var fromCtx bool
	r := gin.New()
	r.Use(Logger())
	r.GET("/", func(c *gin.Context) {
		// 请求级logger已挂到context上
		fromCtx = log.Ctx(c.Request.Context()).GetLevel() != zerolog.Disabled
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	assert.True(t, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w = serve(r, req)
	assert.Equal(t, "upstream-id", w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":50000`)
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	sessions := memory.NewSessionStore()
	auth := NewAuthMiddleware(jwtManager, sessions)

	pair, err := jwtManager.GenerateToken(7, "reader")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": MustGetUserID(c), "username": GetUsername(c), "jti": GetTokenID(c)})
	})
	r.GET("/public", auth.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	request := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return serve(r, req)
	}

	t.Run("无Token", func(t *testing.T) {
		w := request("/private", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":40100`)
	})

	t.Run("格式错误", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("/private", "Token "+pair.AccessToken).Code)
	})

	t.Run("有效Token", func(t *testing.T) {
		w := request("/private", "Bearer "+pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
		assert.Contains(t, w.Body.String(), `"username":"reader"`)
	})

	t.Run("Refresh Token不能访问接口", func(t *testing.T) {
		w := request("/private", "Bearer "+pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("可选登录下无效Token按匿名处理", func(t *testing.T) {
		w := request("/public", "Bearer garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":0`)
	})

	t.Run("黑名单Token被拒绝", func(t *testing.T) {
		claims, err := jwtManager.ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, sessions.AddToBlacklist(context.Background(), claims.ID, time.Hour))

		w := request("/private", "Bearer "+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":40101`)

		w = request("/public", "Bearer "+pair.AccessToken)
		assert.Contains(t, w.Body.String(), `"user_id":0`)
	})
}

func TestAllowedHosts(t *testing.T) {
	r := gin.New()
	r.POST("/orders", AllowedHosts([]string{"shop.example", ".cdn.example"}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	cases := []struct {
		host string
		want int
	}{
		{"shop.example", http.StatusCreated},
		{"SHOP.example:8443", http.StatusCreated},
		{"cdn.example", http.StatusCreated},
		{"eu.cdn.example", http.StatusCreated},
		{"evil.example", http.StatusBadRequest},
		{"shop.example.evil", http.StatusBadRequest},
		{"notcdn.example", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders", nil)
			req.Host = tc.host
			assert.Equal(t, tc.want, serve(r, req).Code)
		})
	}

	t.Run("未配置白名单时不校验", func(t *testing.T) {
		open := gin.New()
		open.POST("/orders", AllowedHosts(nil), func(c *gin.Context) { c.Status(http.StatusCreated) })
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Host = "anything.example"
		assert.Equal(t, http.StatusCreated, serve(open, req).Code)
	})
}
