// Package payment 支付网关的领域端口
// 订单流程只依赖这里的接口,具体网关(monobank)在infrastructure/gateway中实现
package payment

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// CurrencyUAH ISO 4217数字代码,网关只支持单一币种
const CurrencyUAH = 980

// BasketItem 发票中的商品行
type BasketItem struct {
	Name string
	Qty  int
	Sum  int64 // 单价(最小货币单位)
	Code string
}

// InvoiceRequest 创建发票请求
type InvoiceRequest struct {
	Amount      int64  // 总金额(最小货币单位)
	Reference   string // 商户侧订单号,回调时原样带回
	Destination string
	Basket      []BasketItem
	RedirectURL string
	WebhookURL  string
	Validity    time.Duration
}

// Invoice 网关返回的发票
type Invoice struct {
	ID      string // 网关会话ID(invoiceId)
	PageURL string // 支付页面
}

// Gateway 支付网关
type Gateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}

// Verifier 回调签名校验
type Verifier interface {
	// Verify 签名无效时返回ErrSignatureMismatch
	Verify(ctx context.Context, body []byte, signature string) error
}

var (
	// ErrSignatureMismatch 回调签名无效
	ErrSignatureMismatch = apperrors.New(apperrors.ErrCodeSignatureMismatch, "signature mismatch")

	// ErrGatewayUnavailable 网关调用失败
	ErrGatewayUnavailable = apperrors.New(apperrors.ErrCodeGatewayError, "支付网关暂不可用")
)
