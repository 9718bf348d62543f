package order

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/pkg/mq"
)

// 订单事件的routing key
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent 订单事件消息体
type OrderEvent struct {
	OrderID    uint      `json:"order_id"`
	UserID     uint      `json:"user_id"`
	InvoiceID  string    `json:"invoice_id"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"total_price"`
	Quantity   int       `json:"quantity"` // 总件数
	Restocked  bool      `json:"restocked"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newOrderEvent(o *order.Order) OrderEvent {
	return OrderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		InvoiceID:  o.InvoiceID,
		Status:     o.Status.String(),
		TotalPrice: o.TotalPrice,
		Quantity:   o.TotalQuantity(),
		Restocked:  o.Restocked,
		OccurredAt: time.Now(),
	}
}

// publish 事件发布失败不影响主流程
func publish(ctx context.Context, publisher mq.EventPublisher, routingKey string, o *order.Order) {
	if err := publisher.Publish(ctx, routingKey, newOrderEvent(o)); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("routing_key", routingKey).
			Uint("order_id", o.ID).
			Msg("publish order event failed")
	}
}
