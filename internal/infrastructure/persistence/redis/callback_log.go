package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/monobook/internal/domain/order"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// CallbackLog 支付回调投递记录
// Key: callback:{invoiceId}:{status}:{modifiedDate},值为处理后的订单状态
type CallbackLog struct {
	client *redis.Client
	ttl    time.Duration
}

var _ order.CallbackLog = (*CallbackLog)(nil)

// NewCallbackLog 创建回调投递记录
func NewCallbackLog(client *redis.Client, ttl time.Duration) *CallbackLog {
	return &CallbackLog{client: client, ttl: ttl}
}

// Lookup 查询投递是否已处理
func (l *CallbackLog) Lookup(ctx context.Context, key string) (order.Status, bool, error) {
	val, err := l.client.Get(ctx, "callback:"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, apperrors.WithCode(apperrors.ErrCodeRedisError, "查询回调记录失败", err)
	}
	return order.Status(val), true, nil
}

// Record 记录已处理的投递
func (l *CallbackLog) Record(ctx context.Context, key string, status order.Status) error {
	if err := l.client.Set(ctx, "callback:"+key, string(status), l.ttl).Err(); err != nil {
		return apperrors.WithCode(apperrors.ErrCodeRedisError, "记录回调失败", err)
	}
	return nil
}
