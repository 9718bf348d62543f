package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/monobook/internal/domain/book"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// BookCache 图书详情缓存
// Key: book:{id},值为JSON
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ book.Cache = (*BookCache)(nil)

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

// cachedBook 缓存结构,与领域实体解耦,字段变更不影响实体
type cachedBook struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	AuthorID        uint      `json:"author_id"`
	Genre           string    `json:"genre"`
	PublicationDate time.Time `json:"publication_date"`
	Price           int64     `json:"price"`
	Quantity        int       `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func bookKey(id uint) string {
	return fmt.Sprintf("book:%d", id)
}

// Get 读取缓存,未命中返回(nil, false, nil)
func (c *BookCache) Get(ctx context.Context, id uint) (*book.Book, bool, error) {
	data, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperrors.WithCode(apperrors.ErrCodeRedisError, "读取图书缓存失败", err)
	}

	var cb cachedBook
	if err := json.Unmarshal(data, &cb); err != nil {
		// 脏数据按未命中处理,下次写入时覆盖
		return nil, false, nil
	}

	return &book.Book{
		ID:              cb.ID,
		Title:           cb.Title,
		AuthorID:        cb.AuthorID,
		Genre:           cb.Genre,
		PublicationDate: cb.PublicationDate,
		Price:           cb.Price,
		Quantity:        cb.Quantity,
		CreatedAt:       cb.CreatedAt,
		UpdatedAt:       cb.UpdatedAt,
	}, true, nil
}

// Set 写入缓存
func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	data, err := json.Marshal(cachedBook{
		ID:              b.ID,
		Title:           b.Title,
		AuthorID:        b.AuthorID,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate,
		Price:           b.Price,
		Quantity:        b.Quantity,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	})
	if err != nil {
		return apperrors.Wrap(err, "序列化图书缓存失败")
	}

	if err := c.client.Set(ctx, bookKey(b.ID), data, c.ttl).Err(); err != nil {
		return apperrors.WithCode(apperrors.ErrCodeRedisError, "写入图书缓存失败", err)
	}
	return nil
}

// Delete 删除缓存
func (c *BookCache) Delete(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.WithCode(apperrors.ErrCodeRedisError, "删除图书缓存失败", err)
	}
	return nil
}
