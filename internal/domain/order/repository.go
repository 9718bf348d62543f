package order

import (
	"context"
)

// Repository 订单仓储接口
// 订单和明细必须在同一事务中创建
type Repository interface {
	// Create 创建订单(包含订单明细),回填ID
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 悲观锁查询订单(包含订单明细),必须在事务中调用
	// 用于串行化同一订单的并发回调
	LockByID(ctx context.Context, id uint) (*Order, error)

	// Update 更新订单头(状态、发票号、回补标记),不修改明细
	Update(ctx context.Context, order *Order) error

	// List 分页查询(不加载明细)
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	UserID   uint // 只查询该用户的订单
	Page     int
	PageSize int
	Search   string // 匹配状态、发票号,纯数字时同时匹配ID
	Ordering string // 见OrderingFields
}

// OrderingFields 允许排序的字段
var OrderingFields = []string{"id", "status", "invoice_id", "created_at", "total_price"}
