package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/pkg/logger"
	"github.com/xiebiao/shoptrack/pkg/tracing"
)

const (
	headerRequestID = "X-Request-ID"
	slowRequest     = 3 * time.Second
)

// RequestLogger 请求日志 + 链路追踪
//   - 透传或生成 X-Request-ID
//   - 从请求头提取上游 traceparent，开启服务端Span
//   - 把带 request_id / trace_id 的logger放进ctx，后续日志自动关联
//
// 不记录请求体和Authorization头
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(headerRequestID, requestID)

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracing.StartSpan(ctx, "http", c.Request.Method+" "+routeOf(c))
		defer span.End()

		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		log := base.With(fields...)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, log))

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", routeOf(c)),
			attribute.Int("http.status_code", status),
		)
		if status >= 500 || len(c.Errors) > 0 {
			span.SetStatus(codes.Error, c.Errors.String())
		}

		// 认证中间件可能追加了 user_id
		log = logger.FromContext(c.Request.Context(), log)
		entry := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			entry = append(entry, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("request", entry...)
		case latency > slowRequest:
			log.Warn("slow request", entry...)
		default:
			log.Info("request", entry...)
		}
	}
}

// routeOf 路由模板，未匹配时用 unmatched 避免路径把指标标签撑爆
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
