// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP层：请求总数、耗时、并发数（由middleware.Metrics记录）
//   - 业务层：订单创建、支付回调、回补库存
//   - 依赖层：支付网关调用、熔断器状态、Saga执行、消息发布
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值的维度（method、status），不要用order_id、user_id做标签。
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，不是原始URL）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 订单业务指标

	// OrdersCreatedTotal 订单创建成功总数（已拿到支付链接）
	OrdersCreatedTotal prometheus.Counter

	// OrdersFailedTotal 订单创建失败总数
	// 标签：reason（validation/stock/gateway/internal）
	OrdersFailedTotal *prometheus.CounterVec

	// OrderCreationDuration 订单创建耗时（含网关调用）
	OrderCreationDuration prometheus.Histogram

	// PaymentCallbacksTotal 支付回调总数
	// 标签：status（回调携带的订单状态）、result（applied/duplicate/rejected）
	PaymentCallbacksTotal *prometheus.CounterVec

	// BooksRestockedTotal 回补的图书件数
	BooksRestockedTotal prometheus.Counter

	// 支付网关指标

	// GatewayRequestDuration 网关调用耗时
	// 标签：operation（create_invoice/pubkey）、result（success/failure/rejected）
	GatewayRequestDuration *prometheus.HistogramVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数
	// 标签：result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration prometheus.Histogram

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry
// 可重复调用，只有第一次生效
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "订单创建总数",
		},
	)

	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "订单创建失败总数",
		},
		[]string{"reason"},
	)

	// 订单创建包含一次外部网关调用，桶比普通HTTP请求宽
	OrderCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_creation_duration_seconds",
			Help:    "订单创建耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	PaymentCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "支付回调总数",
		},
		[]string{"status", "result"},
	)

	BooksRestockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "books_restocked_total",
			Help: "回补库存的图书件数",
		},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "支付网关调用耗时（秒）",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// =========================================
// 通用便捷函数
// =========================================

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// =========================================
// 业务记录函数
// 内部先调用InitMetrics，业务代码和测试无需关心初始化顺序
// =========================================

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	InitMetrics()
	IncCounterVec(HTTPRequestsTotal, map[string]string{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	})
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{
		"method": method,
		"path":   path,
	}, d.Seconds())
}

// RecordOrderCreated 记录订单创建成功
func RecordOrderCreated(d time.Duration) {
	InitMetrics()
	IncCounter(OrdersCreatedTotal)
	ObserveHistogram(OrderCreationDuration, d.Seconds())
}

// RecordOrderFailed 记录订单创建失败
func RecordOrderFailed(reason string) {
	InitMetrics()
	IncCounterVec(OrdersFailedTotal, map[string]string{"reason": reason})
}

// RecordCallback 记录一次支付回调
func RecordCallback(status, result string) {
	InitMetrics()
	IncCounterVec(PaymentCallbacksTotal, map[string]string{"status": status, "result": result})
}

// AddRestocked 累加回补件数
func AddRestocked(qty int) {
	InitMetrics()
	BooksRestockedTotal.Add(float64(qty))
}

// ObserveGatewayCall 记录一次网关调用
func ObserveGatewayCall(operation, result string, d time.Duration) {
	InitMetrics()
	ObserveHistogramVec(GatewayRequestDuration, map[string]string{
		"operation": operation,
		"result":    result,
	}, d.Seconds())
}

// SetBreakerState 更新熔断器状态
func SetBreakerState(name string, state int) {
	InitMetrics()
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": name}, float64(state))
}

// RecordSaga 记录Saga执行结果
func RecordSaga(result string, d time.Duration) {
	InitMetrics()
	IncCounterVec(SagaExecutionsTotal, map[string]string{"result": result})
	ObserveHistogram(SagaExecutionDuration, d.Seconds())
}

// RecordCompensation 记录一次补偿
func RecordCompensation() {
	InitMetrics()
	IncCounter(SagaCompensationsTotal)
}

// RecordPublish 记录一次消息发布
func RecordPublish(exchange, routingKey, result string) {
	InitMetrics()
	IncCounterVec(MessagesPublishedTotal, map[string]string{
		"exchange":    exchange,
		"routing_key": routingKey,
		"result":      result,
	})
}
