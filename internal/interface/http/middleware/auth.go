package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/internal/domain/user"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/jwt"
	"github.com/xiebiao/monobook/pkg/response"
)

const (
	ctxKeyUserID         = "user_id"
	ctxKeyUsername       = "username"
	ctxKeyTokenID        = "token_id"
	ctxKeyTokenExpiresAt = "token_expires_at"
)

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Bearer Token
// 2. 验证签名和过期时间，只接受Access Token
// 3. 按jti检查黑名单
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore user.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore user.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RequireAuth 要求登录
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.GET("/profile", handler.Profile)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := m.authenticate(c, tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选登录
// 没有Token时按匿名用户继续；Token无效同样按匿名处理，不拒绝请求
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if ok {
			if claims, err := m.authenticate(c, tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) (*jwt.Claims, error) {
	claims, err := m.jwtManager.ParseAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 已登出的Token在过期前仍然有效，需要查黑名单
	blacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), claims.ID)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("check token blacklist failed")
		return nil, apperrors.WithCode(apperrors.ErrCodeRedisError, "验证Token失败", err)
	}
	if blacklisted {
		return nil, apperrors.New(apperrors.ErrCodeInvalidToken, "Token已失效，请重新登录")
	}

	return claims, nil
}

// bearerToken 解析 Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxKeyUserID, claims.UserID)
	c.Set(ctxKeyUsername, claims.Username)
	c.Set(ctxKeyTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ctxKeyTokenExpiresAt, claims.ExpiresAt.Time)
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxKeyUserID)
}

// GetUsername 从Context获取当前登录用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ctxKeyUsername)
}

// GetTokenID 当前Access Token的jti
func GetTokenID(c *gin.Context) string {
	return c.GetString(ctxKeyTokenID)
}

// GetTokenExpiresAt 当前Access Token的过期时间
func GetTokenExpiresAt(c *gin.Context) time.Time {
	return c.GetTime(ctxKeyTokenExpiresAt)
}

// MustGetUserID 从Context获取用户ID（不存在则panic）
// 只能用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
