package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	"github.com/xiebiao/shoptrack/pkg/circuitbreaker"
	"github.com/xiebiao/shoptrack/pkg/metrics"
	"github.com/xiebiao/shoptrack/pkg/mq"
)

// NoopPublisher 不投递，只打调试日志（events.driver=none）
type NoopPublisher struct {
	log *zap.Logger
}

// NewNoopPublisher 创建空发布者
func NewNoopPublisher(log *zap.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(_ context.Context, events ...event.Event) error {
	for _, e := range events {
		p.log.Debug("event dropped", zap.String("type", e.Type), zap.String("key", e.Key))
	}
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// amqpPublisher mq.Publisher 的可替换接口
type amqpPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Close() error
}

// RabbitPublisher 以事件类型为 routing key 发布到 topic 交换机
type RabbitPublisher struct {
	pub     amqpPublisher
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

func (p *RabbitPublisher) Publish(ctx context.Context, events ...event.Event) error {
	for _, e := range events {
		err := execute(ctx, p.breaker, func(ctx context.Context) error {
			return p.pub.Publish(ctx, e.Type, e)
		})
		metrics.RecordEventPublished(config.EventsRabbitMQ, e.Type, err == nil)
		if err != nil {
			return fmt.Errorf("发布事件%s失败: %w", e.Type, err)
		}
	}
	return nil
}

func (p *RabbitPublisher) Close() error { return p.pub.Close() }

// kafkaWriter kafka.Writer 的可替换接口
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 每种事件一个topic：{prefix}.{type}，以聚合ID为key保证同一商品有序
type KafkaPublisher struct {
	writer  kafkaWriter
	prefix  string
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...event.Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("事件序列化失败: %w", err)
		}
		msg := kafka.Message{
			Topic: p.topic(e.Type),
			Key:   []byte(e.Key),
			Value: body,
			Time:  e.OccurredAt,
		}
		otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})
		msgs = append(msgs, msg)
	}

	err := execute(ctx, p.breaker, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	for _, e := range events {
		metrics.RecordEventPublished(config.EventsKafka, e.Type, err == nil)
	}
	if err != nil {
		return fmt.Errorf("写入Kafka失败: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) topic(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// headerCarrier 把trace上下文写进Kafka消息头
type headerCarrier struct {
	msg *kafka.Message
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.msg.Headers {
		if h.Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c.msg.Headers))
	for i, h := range c.msg.Headers {
		keys[i] = h.Key
	}
	return keys
}

// Publisher 可关闭的事件发布者
type Publisher interface {
	event.Publisher
	Close() error
}

// NewPublisher 按 events.driver 创建发布者
func NewPublisher(cfg config.EventsConfig, log *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case config.EventsRabbitMQ:
		pub, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ExchangeType, log)
		if err != nil {
			return nil, err
		}
		return &RabbitPublisher{pub: pub, breaker: newBreaker("events-rabbitmq", cfg, log), log: log}, nil

	case config.EventsKafka:
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		}
		log.Info("kafka publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic_prefix", cfg.Kafka.TopicPrefix))
		return &KafkaPublisher{writer: writer, prefix: cfg.Kafka.TopicPrefix, breaker: newBreaker("events-kafka", cfg, log), log: log}, nil

	default:
		return NewNoopPublisher(log), nil
	}
}

// execute 熔断保护下调用并记录放行结果
func execute(ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func(ctx context.Context) error) error {
	err := cb.Execute(ctx, fn)
	switch {
	case err == nil:
		metrics.RecordCircuitBreakerRequest(cb.Name(), "success")
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.RecordCircuitBreakerRequest(cb.Name(), "rejected")
	default:
		metrics.RecordCircuitBreakerRequest(cb.Name(), "failure")
	}
	return err
}

func newBreaker(name string, cfg config.EventsConfig, log *zap.Logger) *circuitbreaker.CircuitBreaker {
	failures := cfg.BreakerFails
	if failures == 0 {
		failures = 5
	}
	metrics.SetCircuitBreakerState(name, int(circuitbreaker.StateClosed))
	return circuitbreaker.New(name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool { return c.ConsecutiveFailures >= failures },
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			log.Warn("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
}
