package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/monobook/internal/application/order"
	"github.com/xiebiao/monobook/internal/interface/http/dto"
	"github.com/xiebiao/monobook/internal/interface/http/middleware"
	"github.com/xiebiao/monobook/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase *apporder.CreateOrderUseCase
	getUseCase    *apporder.GetOrderUseCase
	listUseCase   *apporder.ListOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	getUseCase *apporder.GetOrderUseCase,
	listUseCase *apporder.ListOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
	}
}

// Create 创建订单并生成monobank支付单
// @Summary      创建订单
// @Description  锁定库存后向monobank申请支付单，返回支付页面地址。登录可选，匿名订单不归属任何用户
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单明细"
// @Success      201 {object} response.Response{data=apporder.CreateOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误或库存不足"
// @Failure      502 {object} response.Response "支付网关不可用"
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:  middleware.GetUserID(c),
		Items:   items,
		BaseURL: baseURL(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List 当前用户的订单列表
// @Summary      订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(20)
// @Param        search    query string false "按订单ID、状态、发票号搜索"
// @Param        ordering  query string false "排序字段(id, status, invoice_id, created_at, total_price)"
// @Success      200 {object} response.Response{data=response.PageData{list=[]apporder.OrderResponse}}
// @Failure      401 {object} response.Response "未登录"
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		UserID:   middleware.MustGetUserID(c),
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Ordering: q.Ordering,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// Get 订单详情(含明细)
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// baseURL 当前请求的scheme://host，反向代理后以X-Forwarded-Proto为准
// Host已由AllowedHosts中间件校验
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := strings.ToLower(c.GetHeader("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
