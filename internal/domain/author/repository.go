package author

import (
	"context"
)

// Repository 作者仓储接口
type Repository interface {
	// Create 创建作者
	Create(ctx context.Context, author *Author) error

	// FindByID 根据ID查找作者，不存在返回ErrAuthorNotFound
	FindByID(ctx context.Context, id uint) (*Author, error)

	// Update 更新作者
	Update(ctx context.Context, author *Author) error

	// Delete 删除作者，不存在返回ErrAuthorNotFound
	Delete(ctx context.Context, id uint) error

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Author, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Search   string // 按名称模糊匹配，纯数字时同时匹配ID
	Ordering string // id | name，"-"前缀表示降序
}

// OrderingFields 允许排序的字段
var OrderingFields = []string{"id", "name"}
