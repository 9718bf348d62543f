package book

import (
	"context"
)

// Cache 图书详情缓存(cache-aside)
// 缓存故障不影响主流程,实现方只返回错误,由调用方决定是否降级
type Cache interface {
	// Get 命中时返回(book, true, nil)
	Get(ctx context.Context, id uint) (*Book, bool, error)
	Set(ctx context.Context, b *Book) error
	Delete(ctx context.Context, ids ...uint) error
}
