package order

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/payment"
	"github.com/xiebiao/monobook/internal/domain/transaction"
	"github.com/xiebiao/monobook/pkg/metrics"
	"github.com/xiebiao/monobook/pkg/mq"
	"github.com/xiebiao/monobook/pkg/tracing"
)

// HandleCallbackUseCase 处理支付网关回调
//  1. 校验X-Sign签名
//  2. 解析负载
//  3. 重复投递直接返回已记录的状态
//  4. 事务内锁定订单,校验invoiceId,更新状态
//  5. 进入failure/expired/reversed/hold时回补全部明细库存(至多一次)
type HandleCallbackUseCase struct {
	orderRepo   order.Repository
	bookRepo    book.Repository
	txManager   transaction.Manager
	verifier    payment.Verifier
	callbackLog order.CallbackLog
	bookCache   book.Cache
	publisher   mq.EventPublisher
}

// NewHandleCallbackUseCase 创建回调处理用例
func NewHandleCallbackUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	txManager transaction.Manager,
	verifier payment.Verifier,
	callbackLog order.CallbackLog,
	bookCache book.Cache,
	publisher mq.EventPublisher,
) *HandleCallbackUseCase {
	return &HandleCallbackUseCase{
		orderRepo:   orderRepo,
		bookRepo:    bookRepo,
		txManager:   txManager,
		verifier:    verifier,
		callbackLog: callbackLog,
		bookCache:   bookCache,
		publisher:   publisher,
	}
}

// CallbackRequest 原始回调请求
type CallbackRequest struct {
	Body      []byte
	Signature string // X-Sign
}

// CallbackResponse 回调处理结果
type CallbackResponse struct {
	Status string `json:"status"`
}

// Execute 处理回调
func (uc *HandleCallbackUseCase) Execute(ctx context.Context, req CallbackRequest) (*CallbackResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "HandlePaymentCallback")
	defer span.End()

	if err := uc.verifier.Verify(ctx, req.Body, req.Signature); err != nil {
		tracing.RecordError(span, err)
		metrics.RecordCallback("unknown", "bad_signature")
		log.Ctx(ctx).Warn().Err(err).Msg("payment callback rejected")
		return nil, err
	}

	cb, err := payment.ParseCallback(req.Body)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordCallback("unknown", "bad_payload")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("mono.invoice_id", cb.InvoiceID),
		attribute.String("mono.status", cb.Status),
		attribute.String("mono.reference", cb.Reference),
	)

	logger := log.Ctx(ctx).With().
		Str("invoice_id", cb.InvoiceID).
		Str("status", cb.Status).
		Str("reference", cb.Reference).
		Logger()

	status := order.Status(cb.Status)
	if !status.IsKnown() {
		logger.Warn().Msg("unknown payment status, stored as is")
	}

	key := order.CallbackKey(cb.InvoiceID, status, cb.ModifiedDate)
	if stored, ok, err := uc.callbackLog.Lookup(ctx, key); err != nil {
		logger.Warn().Err(err).Msg("lookup callback log failed")
	} else if ok {
		metrics.RecordCallback(cb.Status, "duplicate")
		logger.Info().Msg("duplicate payment callback ignored")
		return &CallbackResponse{Status: stored.String()}, nil
	}

	orderID, err := strconv.ParseUint(cb.Reference, 10, 64)
	if err != nil || orderID == 0 {
		metrics.RecordCallback(cb.Status, "not_found")
		return nil, order.ErrOrderNotFound
	}

	var (
		updated   *order.Order
		restocked int
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, uint(orderID))
		if err != nil {
			return err
		}

		if !o.MatchesInvoice(cb.InvoiceID) {
			return order.ErrInvoiceMismatch
		}

		if o.ApplyStatus(status) {
			if restocked, err = restock(txCtx, uc.bookRepo, o); err != nil {
				return err
			}
		}
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordCallback(cb.Status, "rejected")
		logger.Warn().Err(err).Msg("payment callback failed")
		return nil, err
	}

	if err := uc.callbackLog.Record(ctx, key, updated.Status); err != nil {
		logger.Warn().Err(err).Msg("record callback log failed")
	}
	if restocked > 0 {
		invalidateBooks(ctx, uc.bookCache, updated)
	}
	metrics.RecordCallback(cb.Status, "processed")
	metrics.AddRestocked(restocked)
	publish(ctx, uc.publisher, EventOrderStatusChanged, updated)

	logger.Info().Uint("order_id", updated.ID).Int("restocked", restocked).Msg("payment callback processed")
	return &CallbackResponse{Status: updated.Status.String()}, nil
}
