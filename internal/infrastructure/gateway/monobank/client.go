// Package monobank monobank收单(acquiring)API客户端
//
// 接口文档: https://api.monobank.ua/docs/acquiring.html
// 1. 所有请求带X-Token头
// 2. 错误响应为{errCode, errText}
// 3. 调用经过熔断器,网关持续不可用时快速失败
package monobank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/monobook/internal/domain/payment"
	"github.com/xiebiao/monobook/internal/infrastructure/config"
	"github.com/xiebiao/monobook/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/metrics"
	"github.com/xiebiao/monobook/pkg/tracing"
)

const (
	pathCreateInvoice = "/api/merchant/invoice/create"
	pathPublicKey     = "/api/merchant/pubkey"

	tracerName = "monobank"
)

// Client monobank API客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	breaker    *circuitbreaker.CircuitBreaker
	keyBreaker *circuitbreaker.CircuitBreaker
}

var _ payment.Gateway = (*Client)(nil)

// NewClient 创建客户端
func NewClient(cfg *config.Config) *Client {
	return newClient(cfg.Mono, &http.Client{Timeout: cfg.Mono.Timeout})
}

func newClient(cfg config.MonoConfig, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		http:       httpClient,
		breaker:    newBreaker("monobank", cfg),
		keyBreaker: newBreaker("monobank_pubkey", cfg), // 公钥拉取由公开的回调接口触发,与下单分开熔断
	}
}

func newBreaker(name string, cfg config.MonoConfig) *circuitbreaker.CircuitBreaker {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := circuitbreaker.NewCircuitBreaker(name, circuitbreaker.Config{
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 4xx是请求本身的问题,不代表网关故障
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetBreakerState(name, int(to))
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
			Msg("circuit breaker state changed")
	})
	return breaker
}

// APIError 网关返回的错误
type APIError struct {
	StatusCode int
	ErrCode    string `json:"errCode"`
	ErrText    string `json:"errText"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("monobank: HTTP %d %s: %s", e.StatusCode, e.ErrCode, e.ErrText)
}

type merchantPaymInfo struct {
	Reference   string        `json:"reference"`
	Destination string        `json:"destination,omitempty"`
	BasketOrder []basketOrder `json:"basketOrder,omitempty"`
}

type basketOrder struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
	Sum  int64  `json:"sum"`
	Code string `json:"code"`
}

type createInvoiceRequest struct {
	Amount           int64            `json:"amount"`
	Ccy              int              `json:"ccy"`
	MerchantPaymInfo merchantPaymInfo `json:"merchantPaymInfo"`
	RedirectURL      string           `json:"redirectUrl,omitempty"`
	WebHookURL       string           `json:"webHookUrl,omitempty"`
	Validity         int64            `json:"validity,omitempty"` // 秒
}

type createInvoiceResponse struct {
	InvoiceID string `json:"invoiceId"`
	PageURL   string `json:"pageUrl"`
}

// CreateInvoice 创建发票
func (c *Client) CreateInvoice(ctx context.Context, req payment.InvoiceRequest) (*payment.Invoice, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "monobank.CreateInvoice")
	defer span.End()
	span.SetAttributes(
		attribute.String("mono.reference", req.Reference),
		attribute.Int64("mono.amount", req.Amount),
	)

	body := createInvoiceRequest{
		Amount: req.Amount,
		Ccy:    payment.CurrencyUAH,
		MerchantPaymInfo: merchantPaymInfo{
			Reference:   req.Reference,
			Destination: req.Destination,
		},
		RedirectURL: req.RedirectURL,
		WebHookURL:  req.WebhookURL,
		Validity:    int64(req.Validity / time.Second),
	}
	for _, item := range req.Basket {
		body.MerchantPaymInfo.BasketOrder = append(body.MerchantPaymInfo.BasketOrder, basketOrder{
			Name: item.Name,
			Qty:  item.Qty,
			Sum:  item.Sum,
			Code: item.Code,
		})
	}

	var out createInvoiceResponse
	if err := c.call(ctx, c.breaker, "create_invoice", http.MethodPost, pathCreateInvoice, body, &out); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if out.InvoiceID == "" {
		err := apperrors.WithCode(apperrors.ErrCodeGatewayError, "支付网关返回了空的invoiceId", nil)
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("mono.invoice_id", out.InvoiceID))
	return &payment.Invoice{ID: out.InvoiceID, PageURL: out.PageURL}, nil
}

// FetchPublicKey 获取回调验签公钥(base64编码的PEM)
func (c *Client) FetchPublicKey(ctx context.Context) (string, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "monobank.FetchPublicKey")
	defer span.End()

	var out struct {
		Key string `json:"key"`
	}
	if err := c.call(ctx, c.keyBreaker, "pubkey", http.MethodGet, pathPublicKey, nil, &out); err != nil {
		tracing.RecordError(span, err)
		return "", err
	}
	return out.Key, nil
}

// call 经过熔断器执行一次请求,错误统一转换为网关错误(502)
func (c *Client) call(
	ctx context.Context,
	breaker *circuitbreaker.CircuitBreaker,
	op, method, path string,
	in, out interface{},
) error {
	start := time.Now()
	err := breaker.Execute(func() error {
		return c.do(ctx, method, path, in, out)
	})

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.ObserveGatewayCall(op, result, time.Since(start))

	if err == nil {
		return nil
	}

	log.Ctx(ctx).Error().Err(err).Str("operation", op).Msg("monobank request failed")
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return apperrors.WithCode(apperrors.ErrCodeGatewayError, payment.ErrGatewayUnavailable.Message, err)
	}
	return apperrors.WithCode(apperrors.ErrCodeGatewayError, "支付网关调用失败", err)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("X-Token", c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return nil
}
