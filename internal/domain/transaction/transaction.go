package transaction

import "context"

// Manager 事务管理接口
// fn内通过ctx执行的所有仓储操作处于同一事务，fn返回error时回滚
// 实现见infrastructure/persistence/mysql.TxManager
type Manager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
