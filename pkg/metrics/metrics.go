// Package metrics 基于Prometheus的业务与HTTP指标
//
// 命名规范：
//   - Counter 以 _total 结尾
//   - Histogram 以单位结尾（_seconds）
//   - 标签只用有限取值（change_type、result），不要用 product_id / user_id
//
// 所有指标在第一次使用时注册到默认Registry，/metrics 通过 promhttp.Handler() 暴露
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

	// HTTPRequestsTotal HTTP请求总数，标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// StockAdjustmentsTotal 库存变更次数，标签：change_type、result（applied/rejected）
	StockAdjustmentsTotal *prometheus.CounterVec

	// CheckoutsTotal 结算次数，标签：result（success/failure）
	CheckoutsTotal *prometheus.CounterVec

	// CheckoutDuration 结算事务耗时
	CheckoutDuration prometheus.Histogram

	// RestocksTotal 退货入库次数，标签：result（restocked/conflict）
	RestocksTotal *prometheus.CounterVec

	// LowStockTotal 库存低于补货点的次数
	LowStockTotal prometheus.Counter

	// AuthzDecisionsTotal 授权判定次数，标签：action、decision（allow/deny）
	AuthzDecisionsTotal *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求数，标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// EventsPublishedTotal 领域事件发布次数，标签：driver、topic、result
	EventsPublishedTotal *prometheus.CounterVec

	// EventsConsumedTotal 领域事件消费次数，标签：queue、result
	EventsConsumedTotal *prometheus.CounterVec
)

// InitMetrics 注册全部指标，可以重复调用
func InitMetrics() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP请求总数"},
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
			prometheus.GaugeOpts{Name: "http_requests_in_progress", Help: "正在处理的HTTP请求数"},
		)

		StockAdjustmentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "stock_adjustments_total", Help: "库存变更次数"},
			[]string{"change_type", "result"},
		)
		CheckoutsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "checkouts_total", Help: "结算次数"},
			[]string{"result"},
		)
		CheckoutDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "checkout_duration_seconds",
				Help:    "结算事务耗时（秒）",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		)
		RestocksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "return_restocks_total", Help: "退货入库次数"},
			[]string{"result"},
		)
		LowStockTotal = promauto.NewCounter(
			prometheus.CounterOpts{Name: "low_stock_events_total", Help: "库存低于补货点的次数"},
		)
		AuthzDecisionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "authz_decisions_total", Help: "授权判定次数"},
			[]string{"action", "decision"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{Name: "circuit_breaker_state", Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）"},
			[]string{"name"},
		)
		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "circuit_breaker_requests_total", Help: "熔断器请求总数"},
			[]string{"name", "result"},
		)

		EventsPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "events_published_total", Help: "领域事件发布次数"},
			[]string{"driver", "topic", "result"},
		)
		EventsConsumedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "events_consumed_total", Help: "领域事件消费次数"},
			[]string{"queue", "result"},
		)
	})
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordStockAdjustment 记录一次库存变更
func RecordStockAdjustment(changeType string, applied bool) {
	InitMetrics()
	StockAdjustmentsTotal.WithLabelValues(changeType, outcome(applied, "applied", "rejected")).Inc()
}

// RecordCheckout 记录一次结算
func RecordCheckout(success bool, elapsed time.Duration) {
	InitMetrics()
	CheckoutsTotal.WithLabelValues(outcome(success, "success", "failure")).Inc()
	CheckoutDuration.Observe(elapsed.Seconds())
}

// RecordRestock 记录一次退货入库尝试
func RecordRestock(restocked bool) {
	InitMetrics()
	RestocksTotal.WithLabelValues(outcome(restocked, "restocked", "conflict")).Inc()
}

// RecordLowStock 记录一次低库存
func RecordLowStock() {
	InitMetrics()
	LowStockTotal.Inc()
}

// RecordAuthzDecision 记录一次授权判定
func RecordAuthzDecision(action string, allowed bool) {
	InitMetrics()
	AuthzDecisionsTotal.WithLabelValues(action, outcome(allowed, "allow", "deny")).Inc()
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest 记录熔断器放行结果
func RecordCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordEventPublished 记录一次事件发布
func RecordEventPublished(driver, topic string, ok bool) {
	InitMetrics()
	EventsPublishedTotal.WithLabelValues(driver, topic, outcome(ok, "success", "failure")).Inc()
}

// RecordEventConsumed 记录一次事件消费
func RecordEventConsumed(queue string, ok bool) {
	InitMetrics()
	EventsConsumedTotal.WithLabelValues(queue, outcome(ok, "success", "failure")).Inc()
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
