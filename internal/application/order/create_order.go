package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/payment"
	"github.com/xiebiao/monobook/internal/domain/transaction"
	"github.com/xiebiao/monobook/internal/infrastructure/config"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/metrics"
	"github.com/xiebiao/monobook/pkg/mq"
	"github.com/xiebiao/monobook/pkg/saga"
	"github.com/xiebiao/monobook/pkg/tracing"
)

// CallbackPath 支付回调路由,用于推导webHookUrl
const CallbackPath = "/api/v1/payments/monobank/callback"

const (
	tracerName        = "order"
	createSagaTimeout = 30 * time.Second
)

// CreateOrderUseCase 创建订单用例
// 用Saga编排三个步骤:
//  1. reserve_stock  事务内锁定图书、校验库存、创建订单、扣减库存
//  2. create_invoice 调用支付网关创建发票
//  3. attach_invoice 回写发票号
//
// 第2、3步失败时补偿第1步:订单置为failure并回补库存
type CreateOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	txManager transaction.Manager
	gateway   payment.Gateway
	bookCache book.Cache
	publisher mq.EventPublisher
	mono      config.MonoConfig
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	txManager transaction.Manager,
	gateway payment.Gateway,
	bookCache book.Cache,
	publisher mq.EventPublisher,
	cfg *config.Config,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		gateway:   gateway,
		bookCache: bookCache,
		publisher: publisher,
		mono:      cfg.Mono,
	}
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	UserID  uint // 0表示匿名下单
	Items   []CreateOrderItem
	BaseURL string // 请求的scheme://host,未配置mono.webhook_url时用于推导回调地址
}

// CreateOrderItem 订单明细项
type CreateOrderItem struct {
	BookID   uint
	Quantity int
}

// CreateOrderResponse 下单响应
type CreateOrderResponse struct {
	OrderID    uint   `json:"order_id"`
	InvoiceID  string `json:"invoice_id"`
	PageURL    string `json:"page_url"`
	TotalPrice int64  `json:"total_price"`
	Status     string `json:"status"`
}

// Execute 执行下单用例
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	defer span.End()

	items, err := mergeItems(req.Items)
	if err != nil {
		metrics.RecordOrderFailed(failureReason(err))
		return nil, err
	}

	var (
		o       *order.Order
		basket  []payment.BasketItem
		invoice *payment.Invoice
	)

	s := saga.NewSaga("create_order", createSagaTimeout)
	s.AddStep("reserve_stock",
		func(ctx context.Context) error {
			var err error
			o, basket, err = uc.reserve(ctx, req.UserID, items)
			return err
		},
		func(ctx context.Context) error {
			return uc.release(ctx, o.ID)
		},
	)
	s.AddStep("create_invoice",
		func(ctx context.Context) error {
			var err error
			invoice, err = uc.gateway.CreateInvoice(ctx, payment.InvoiceRequest{
				Amount:      o.TotalPrice,
				Reference:   strconv.FormatUint(uint64(o.ID), 10),
				Destination: fmt.Sprintf("Оплата замовлення №%d", o.ID),
				Basket:      basket,
				RedirectURL: uc.mono.RedirectURL,
				WebhookURL:  uc.webhookURL(req.BaseURL),
				Validity:    uc.mono.Validity,
			})
			return err
		},
		nil,
	)
	s.AddStep("attach_invoice",
		func(ctx context.Context) error {
			o.AttachInvoice(invoice.ID)
			return uc.orderRepo.Update(ctx, o)
		},
		nil,
	)

	err = s.Execute(ctx)

	// 库存已变化(扣减或回补),详情缓存失效
	if o != nil {
		invalidateBooks(ctx, uc.bookCache, o)
	}

	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordOrderFailed(failureReason(err))
		log.Ctx(ctx).Warn().Err(err).Uint("user_id", req.UserID).Msg("create order failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", int64(o.ID)),
		attribute.String("order.invoice_id", o.InvoiceID),
	)
	metrics.RecordOrderCreated(time.Since(start))
	publish(ctx, uc.publisher, EventOrderCreated, o)
	log.Ctx(ctx).Info().
		Uint("order_id", o.ID).
		Str("invoice_id", o.InvoiceID).
		Int64("total_price", o.TotalPrice).
		Msg("order created")

	return &CreateOrderResponse{
		OrderID:    o.ID,
		InvoiceID:  invoice.ID,
		PageURL:    invoice.PageURL,
		TotalPrice: o.TotalPrice,
		Status:     o.Status.String(),
	}, nil
}

// reserve 锁定库存并创建订单(单个事务)
// SELECT ... FOR UPDATE锁定图书行,校验库存后扣减,防止并发超卖
func (uc *CreateOrderUseCase) reserve(ctx context.Context, userID uint, items []CreateOrderItem) (*order.Order, []payment.BasketItem, error) {
	var (
		created *order.Order
		basket  []payment.BasketItem
	)

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		orderItems := make([]order.OrderItem, 0, len(items))
		basket = make([]payment.BasketItem, 0, len(items))

		for _, item := range items {
			b, err := uc.bookRepo.LockByID(txCtx, item.BookID)
			if err != nil {
				if errors.Is(err, book.ErrBookNotFound) {
					return apperrors.New(order.ErrUnknownBook.Code, fmt.Sprintf("图书%d不存在", item.BookID))
				}
				return err
			}

			// 必须在锁定后检查
			if !b.HasStock(item.Quantity) {
				return apperrors.New(apperrors.ErrCodeInsufficientStock,
					fmt.Sprintf("图书《%s》库存不足,当前库存:%d,需要:%d", b.Title, b.Quantity, item.Quantity))
			}

			// 使用锁定时的价格,而不是客户端传入的价格
			orderItems = append(orderItems, order.OrderItem{
				BookID:   b.ID,
				Quantity: item.Quantity,
				Price:    b.Price,
			})
			basket = append(basket, payment.BasketItem{
				Name: b.Title,
				Qty:  item.Quantity,
				Sum:  b.Price,
				Code: strconv.FormatUint(uint64(b.ID), 10),
			})
		}

		o, err := order.NewOrder(userID, orderItems)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}

		for _, item := range o.Items {
			if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, -item.Quantity); err != nil {
				return err
			}
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, basket, nil
}

// release 补偿:订单置为failure并回补库存(restocked保证只回补一次)
func (uc *CreateOrderUseCase) release(ctx context.Context, orderID uint) error {
	restocked := 0
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if o.ApplyStatus(order.StatusFailure) {
			if restocked, err = restock(txCtx, uc.bookRepo, o); err != nil {
				return err
			}
		}
		return uc.orderRepo.Update(txCtx, o)
	})
	if err != nil {
		return err
	}

	metrics.AddRestocked(restocked)
	log.Ctx(ctx).Info().Uint("order_id", orderID).Int("restocked", restocked).Msg("order reservation released")
	return nil
}

func (uc *CreateOrderUseCase) webhookURL(baseURL string) string {
	if uc.mono.WebhookURL != "" {
		return uc.mono.WebhookURL
	}
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + CallbackPath
}

// mergeItems 校验明细,合并同一本书的数量,并按图书ID排序
// 固定的加锁顺序避免并发下单时死锁
func mergeItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, order.ErrEmptyItems
	}

	merged := make(map[uint]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
		if item.BookID == 0 {
			return nil, order.ErrUnknownBook
		}
		merged[item.BookID] += item.Quantity
	}

	result := make([]CreateOrderItem, 0, len(merged))
	for id, qty := range merged {
		result = append(result, CreateOrderItem{BookID: id, Quantity: qty})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BookID < result[j].BookID })
	return result, nil
}

func failureReason(err error) string {
	switch {
	case apperrors.HasCode(err, apperrors.ErrCodeInsufficientStock):
		return "insufficient_stock"
	case apperrors.HasCode(err, apperrors.ErrCodeGatewayError):
		return "gateway"
	case apperrors.HasCode(err, apperrors.ErrCodeInvalidParams):
		return "invalid_request"
	default:
		return "internal"
	}
}
