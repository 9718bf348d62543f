package order

import (
	"context"
	"fmt"
)

// CallbackLog 网关回调投递记录,用于识别重复投递
type CallbackLog interface {
	// Lookup 已处理过时返回处理后的订单状态
	Lookup(ctx context.Context, key string) (Status, bool, error)

	// Record 记录已处理的投递
	Record(ctx context.Context, key string, status Status) error
}

// CallbackKey 一次投递的唯一标识
// 网关对同一发票的同一状态可能重复投递,modifiedDate区分同状态的不同变更
func CallbackKey(invoiceID string, status Status, modifiedDate string) string {
	return fmt.Sprintf("%s:%s:%s", invoiceID, status, modifiedDate)
}
