// Package mq 基于RabbitMQ的事件发布
//
// 订单生命周期事件（order.created / order.status_changed）发布到topic类型的Exchange，
// 下游系统（通知、对账、数据仓库）按routing key自行绑定队列消费。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/pkg/metrics"
)

// EventPublisher 事件发布接口
// 业务层依赖该接口，未开启消息队列时注入NoopPublisher
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Close() error
}

// channel amqp.Channel中Publisher用到的方法
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher RabbitMQ发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// NewPublisher 连接RabbitMQ并声明Exchange
func NewPublisher(url, exchange, exchangeType string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // Exchange名称
		exchangeType, // Exchange类型
		true,         // Durable
		false,        // AutoDelete
		false,        // Internal
		false,        // NoWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log.Info().Str("exchange", exchange).Str("type", exchangeType).Msg("mq publisher ready")

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish 以JSON发布持久化消息
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		metrics.RecordPublish(p.exchange, routingKey, "failure")
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.RecordPublish(p.exchange, routingKey, "success")
	log.Debug().Str("routing_key", routingKey).RawJSON("body", body).Msg("mq message published")
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// NoopPublisher 丢弃所有消息
type NoopPublisher struct{}

// Publish 不做任何事
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Close 不做任何事
func (NoopPublisher) Close() error { return nil }
