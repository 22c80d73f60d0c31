package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"graficaltda/orquestrador/pkg/config"
	"graficaltda/orquestrador/pkg/errorutil"
	"graficaltda/orquestrador/pkg/logger"
)

// Publisher 出站消息发布者
// 首次使用（或检测到掉线后）惰性建连，互斥锁保证并发建连串行化；
// 发布失败原样上抛，是否致命由编排层决定
type Publisher struct {
	cfg    *config.RabbitMQConfig
	logger logger.Logger
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// NewPublisher 创建发布者（不立即建连）
func NewPublisher(cfg *config.RabbitMQConfig, log logger.Logger) *Publisher {
	return &Publisher{
		cfg:    cfg,
		logger: log,
	}
}

// Publish 序列化消息并以持久化投递发布到指定队列
func (p *Publisher) Publish(ctx context.Context, message interface{}, queueName string) error {
	ch, err := p.ensureChannel(ctx)
	if err != nil {
		return errorutil.Publish("failed to connect for publish", err)
	}

	// 队列声明与绑定幂等，可重复执行
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return errorutil.Publish("failed to declare queue", err)
	}
	if err := ch.QueueBind(queueName, queueName, p.cfg.Exchange, false, nil); err != nil {
		return errorutil.Publish("failed to bind queue", err)
	}

	body, err := json.Marshal(message)
	if err != nil {
		return errorutil.Publish("failed to marshal message", err)
	}

	err = ch.PublishWithContext(ctx, p.cfg.Exchange, queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return errorutil.Publish("failed to publish message", err)
	}

	p.logger.Infof(ctx, "[Publisher] Message published to queue %s: %d bytes", queueName, len(body))
	return nil
}

// ensureChannel 返回可用信道（必要时重建连接）
func (p *Publisher) ensureChannel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	p.logger.Infof(ctx, "[Publisher] Establishing connection...")

	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     p.cfg.Host,
		Port:     p.cfg.Port,
		Username: p.cfg.Username,
		Password: p.cfg.Password,
		Vhost:    p.cfg.VirtualHost,
	}

	conn, err := amqp.Dial(uri.String())
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	p.conn = conn
	p.ch = ch

	p.logger.Infof(ctx, "[Publisher] Connected, exchange: %s", p.cfg.Exchange)
	return ch, nil
}

// Close 关闭连接（尽力而为）
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx := context.Background()

	if p.ch != nil && !p.ch.IsClosed() {
		if err := p.ch.Close(); err != nil {
			p.logger.Warnf(ctx, "[Publisher] Channel close failed: %v", err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			p.logger.Warnf(ctx, "[Publisher] Connection close failed: %v", err)
		}
	}

	p.ch = nil
	p.conn = nil
}
