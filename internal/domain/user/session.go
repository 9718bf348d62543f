package user

import (
	"context"
	"time"
)

// SessionStore 登录会话与Token黑名单
// JWT本身无状态，登出后需要黑名单才能让Access Token在过期前失效
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error

	// AddToBlacklist tokenID为JWT的jti
	AddToBlacklist(ctx context.Context, tokenID string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, tokenID string) (bool, error)
}
