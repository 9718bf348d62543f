package memory

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/pkg/pagination"
)

type orderRepository struct {
	s *Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(s *Store) order.Repository {
	return &orderRepository{s: s}
}

func (r *orderRepository) Create(_ context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o.ID = r.s.nextID()
	if o.CreatedAt.IsZero() {
		now := time.Now()
		o.CreatedAt, o.UpdatedAt = now, now
	}
	for i := range o.Items {
		o.Items[i].ID = r.s.nextID()
		o.Items[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *orderRepository) FindByID(_ context.Context, id uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

// Update 只更新订单头,明细保持不变
func (r *orderRepository) Update(_ context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.InvoiceID = o.InvoiceID
	stored.Restocked = o.Restocked
	stored.UpdatedAt = o.UpdatedAt
	r.s.orders[o.ID] = stored
	return nil
}

func (r *orderRepository) List(_ context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	r.s.mu.Lock()
	var all []order.Order
	for _, o := range r.s.orders {
		if o.UserID != params.UserID {
			continue
		}
		if !matches(params.Search, o.ID, string(o.Status), o.InvoiceID) {
			continue
		}
		o.Items = nil
		all = append(all, o)
	}
	r.s.mu.Unlock()

	total := int64(len(all))
	page := sortAndPage(all, params.Ordering, order.OrderingFields,
		pagination.Ordering{Field: "created_at", Desc: true},
		compareOrders, func(o order.Order) uint { return o.ID }, params.Page, params.PageSize)

	result := make([]*order.Order, len(page))
	for i := range page {
		o := page[i]
		result[i] = &o
	}
	return result, total, nil
}

func compareOrders(a, b order.Order, field string) int {
	switch field {
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "invoice_id":
		return strings.Compare(a.InvoiceID, b.InvoiceID)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "total_price":
		return compareInt64(a.TotalPrice, b.TotalPrice)
	default:
		return compareInt64(int64(a.ID), int64(b.ID))
	}
}
