package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 1. 由domain层定义接口,infrastructure层实现
// 2. 带ctx的方法都会参与ctx中的事务(见transaction.Manager)
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Update 更新图书信息
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error

	// DeleteByAuthor 删除作者名下所有图书,返回被删除的图书ID
	DeleteByAuthor(ctx context.Context, authorID uint) ([]uint, error)

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE),必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子更新库存
	// delta为正数表示增加,负数表示减少;减少后库存为负时返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Genre    string // 精确匹配
	AuthorID uint   // 0表示不过滤
	Search   string // 书名模糊匹配,纯数字时同时匹配ID
	Ordering string // 见OrderingFields,"-"前缀表示降序
}

// OrderingFields 允许排序的字段
var OrderingFields = []string{"id", "title", "price", "quantity", "publication_date", "genre"}
