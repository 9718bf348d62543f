package order

import (
	"time"
)

// Status 订单状态
// 取值与支付网关回调中的status一致,网关新增的状态值也会原样保存
type Status string

const (
	StatusCreated    Status = "created"    // 已创建,等待支付
	StatusProcessing Status = "processing" // 支付处理中
	StatusHold       Status = "hold"       // 资金冻结
	StatusSuccess    Status = "success"    // 支付成功
	StatusFailure    Status = "failure"    // 支付失败
	StatusReversed   Status = "reversed"   // 已撤销
	StatusExpired    Status = "expired"    // 发票过期
)

// NeedsRestock 进入该状态时是否需要回补库存
func (s Status) NeedsRestock() bool {
	switch s {
	case StatusFailure, StatusExpired, StatusReversed, StatusHold:
		return true
	default:
		return false
	}
}

// IsKnown 是否为已知状态
func (s Status) IsKnown() bool {
	switch s {
	case StatusCreated, StatusProcessing, StatusHold, StatusSuccess,
		StatusFailure, StatusReversed, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// Order 订单实体(聚合根)
// 1. Order是聚合根,OrderItem是子实体
// 2. ID同时作为支付网关的reference
// 3. TotalPrice冗余存储,下单时按锁定价格计算,防止改价
// 4. Restocked保证库存只回补一次(回调可能重复投递)
type Order struct {
	ID         uint
	UserID     uint // 0表示匿名下单
	TotalPrice int64
	InvoiceID  string // 网关发票号
	Status     Status
	Restocked  bool
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem 订单明细
// Price记录下单时的单价快照
type OrderItem struct {
	ID       uint
	OrderID  uint
	BookID   uint
	Quantity int
	Price    int64
}

// MaxTotal 订单总金额上限(最小货币单位)
const MaxTotal int64 = 10_000_000_000

// NewOrder 创建新订单,初始状态为created
func NewOrder(userID uint, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	var total int64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.Price < 0 {
			return nil, ErrInvalidAmount
		}
		// 先比较再相乘,避免int64溢出
		if item.Price > 0 && int64(item.Quantity) > (MaxTotal-total)/item.Price {
			return nil, ErrInvalidAmount
		}
		total += item.Price * int64(item.Quantity)
	}

	now := time.Now()
	o := &Order{
		UserID:    userID,
		Status:    StatusCreated,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.TotalPrice = o.CalculateTotal()
	return o, nil
}

// CalculateTotal 计算订单总金额
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// AttachInvoice 关联网关发票
func (o *Order) AttachInvoice(invoiceID string) {
	o.InvoiceID = invoiceID
	o.UpdatedAt = time.Now()
}

// MatchesInvoice 回调中的发票号是否属于该订单
func (o *Order) MatchesInvoice(invoiceID string) bool {
	return o.InvoiceID != "" && o.InvoiceID == invoiceID
}

// ApplyStatus 应用网关回调状态
// 返回true表示调用方需要回补所有明细的库存(每个订单至多一次)
func (o *Order) ApplyStatus(status Status) (restock bool) {
	o.Status = status
	o.UpdatedAt = time.Now()

	if status.NeedsRestock() && !o.Restocked {
		o.Restocked = true
		return true
	}
	return false
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID != 0 && o.UserID == userID
}

// TotalQuantity 总件数
func (o *Order) TotalQuantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
