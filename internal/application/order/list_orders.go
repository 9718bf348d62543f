package order

import (
	"context"

	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/pkg/pagination"
)

const timeLayout = "2006-01-02 15:04:05"

// OrderResponse 订单响应DTO
type OrderResponse struct {
	ID         uint                `json:"id"`
	UserID     uint                `json:"user_id"`
	TotalPrice int64               `json:"total_price"`
	InvoiceID  string              `json:"invoice_id"`
	Status     string              `json:"status"`
	Items      []OrderItemResponse `json:"items,omitempty"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}

// OrderItemResponse 订单明细DTO
type OrderItemResponse struct {
	ID       uint  `json:"id"`
	BookID   uint  `json:"book"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
}

func toResponse(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		InvoiceID:  o.InvoiceID,
		Status:     o.Status.String(),
		CreatedAt:  o.CreatedAt.Format(timeLayout),
		UpdatedAt:  o.UpdatedAt.Format(timeLayout),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:       item.ID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return resp
}

// GetOrderUseCase 订单详情
// 只能查看自己的订单,他人订单按不存在处理
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建详情用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// Execute 查询详情
func (uc *GetOrderUseCase) Execute(ctx context.Context, userID, orderID uint) (*OrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.ErrOrderNotFound
	}
	return toResponse(o), nil
}

// ListOrdersUseCase 当前用户的订单列表
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersRequest 列表查询请求
type ListOrdersRequest struct {
	UserID   uint
	Page     int
	PageSize int
	Search   string
	Ordering string
}

// ListOrdersResponse 列表查询响应
type ListOrdersResponse struct {
	List     []*OrderResponse
	Total    int64
	Page     int
	PageSize int
}

// Execute 查询列表(不含明细)
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	page, pageSize := pagination.Normalize(req.Page, req.PageSize)

	orders, total, err := uc.orderRepo.List(ctx, order.ListParams{
		UserID:   req.UserID,
		Page:     page,
		PageSize: pageSize,
		Search:   req.Search,
		Ordering: req.Ordering,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = toResponse(o)
	}
	return &ListOrdersResponse{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}
