package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/atomic"

	"graficaltda/orquestrador/internal/model"
	"graficaltda/orquestrador/pkg/config"
	"graficaltda/orquestrador/pkg/logger"
)

// Proc 业务处理函数类型（注入的编排入口）
// 返回 nil 表示消费成功（业务失败由编排层内部消化，同样 ACK）；
// 返回 error 表示处理器自身异常，消息被 NACK 丢弃（不重新入队）
type Proc func(ctx context.Context, msg *model.LoteMessage) error

// Consumer 入站队列消费者
// 持有独立的连接/信道（与 Publisher 不共享），prefetch=1 串行消费
type Consumer struct {
	cfg        *config.RabbitMQConfig
	proc       Proc
	logger     logger.Logger
	tag        string
	cancelFunc context.CancelFunc
	closing    *atomic.Bool
	wg         sync.WaitGroup

	// conn/ch 由循环 goroutine 重连时写、Stop 读，mu 保护
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewConsumer 创建消费者
func NewConsumer(cfg *config.RabbitMQConfig, proc Proc, log logger.Logger) *Consumer {
	return &Consumer{
		cfg:     cfg,
		proc:    proc,
		logger:  log,
		tag:     "orquestrador-worker",
		closing: atomic.NewBool(false),
	}
}

// Start 建立连接并启动消费循环
// 启动期连接失败是进程级错误，直接返回；运行期掉线在循环内退避重连
func (c *Consumer) Start(parentCtx context.Context) error {
	ctx, cancel := context.WithCancel(parentCtx)
	c.cancelFunc = cancel

	deliveries, err := c.connect()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	c.logger.Infof(ctx, "[Consumer] Started on queue: %s (tag: %s)", c.cfg.Queue, c.tag)

	c.wg.Add(1)
	go c.loop(ctx, deliveries)

	return nil
}

// Stop 停止消费（各步骤尽力而为，只记日志不抛错）
// 顺序约束：先撤销消费注册并等待在途消息处理完成，信道保持打开供其 ACK，
// 最后才关闭信道和连接（重连期间建立的新连接也在此收口，不泄漏）
func (c *Consumer) Stop() {
	if !c.closing.CAS(false, true) {
		return
	}

	ctx := context.Background()
	c.logger.Infof(ctx, "[Consumer] Stopping...")

	c.mu.Lock()
	if c.ch != nil && !c.ch.IsClosed() {
		if err := c.ch.Cancel(c.tag, false); err != nil {
			c.logger.Warnf(ctx, "[Consumer] Cancel failed: %v", err)
		}
	}
	c.mu.Unlock()

	if c.cancelFunc != nil {
		c.cancelFunc()
	}

	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil && !c.ch.IsClosed() {
		if err := c.ch.Close(); err != nil {
			c.logger.Warnf(ctx, "[Consumer] Channel close failed: %v", err)
		}
	}

	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logger.Warnf(ctx, "[Consumer] Connection close failed: %v", err)
		}
	}

	c.logger.Infof(ctx, "[Consumer] Stopped")
}

// connect 建连、声明并绑定队列、注册消费
func (c *Consumer) connect() (<-chan amqp.Delivery, error) {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     c.cfg.Host,
		Port:     c.cfg.Port,
		Username: c.cfg.Username,
		Password: c.cfg.Password,
		Vhost:    c.cfg.VirtualHost,
	}

	conn, err := amqp.Dial(uri.String())
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel failed: %w", err)
	}

	// prefetch=1：一次只处理一条消息，处理完才接收下一条
	if err := ch.Qos(1, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("qos failed: %w", err)
	}

	// Exchange 由上游 API 创建，这里只声明并绑定本服务的两个队列
	for _, queue := range []string{c.cfg.Queue, c.cfg.QueueRetorno} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("declare queue %s failed: %w", queue, err)
		}
		if err := ch.QueueBind(queue, queue, c.cfg.Exchange, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind queue %s failed: %w", queue, err)
		}
	}

	deliveries, err := ch.Consume(c.cfg.Queue, c.tag, false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("consume failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.ch = ch
	c.mu.Unlock()

	return deliveries, nil
}

// loop 消费循环
// deliveries 通道关闭表示连接断开，退避后重连；容错不退出
func (c *Consumer) loop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			c.logger.Infof(ctx, "[Consumer] Context cancelled, exiting")
			return

		case d, ok := <-deliveries:
			if !ok {
				// 停机时消费注册被撤销同样走到这里，不触发重连
				if c.closing.Load() {
					return
				}

				select {
				case <-ctx.Done():
					c.logger.Infof(ctx, "[Consumer] Context cancelled, exiting")
					return
				case <-time.After(c.cfg.RecoveryWait):
				}

				c.logger.Warnf(ctx, "[Consumer] Connection lost, reconnecting...")
				next, err := c.connect()
				if err != nil {
					c.logger.Warnf(ctx, "[Consumer] Reconnect failed: %v, retrying...", err)
					continue
				}
				c.logger.Infof(ctx, "[Consumer] Reconnected to queue: %s", c.cfg.Queue)
				deliveries = next
				continue
			}

			c.handle(ctx, d)
		}
	}
}

// handle 处理单条投递：反序列化 → 调用编排 → ACK/NACK
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	c.logger.Infof(ctx, "[Consumer] Message received: deliveryTag=%d, size=%d bytes", d.DeliveryTag, len(d.Body))

	var msg model.LoteMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		// 无法解析的消息直接丢弃，不重新入队
		c.logger.Errorf(ctx, "[Consumer] Unmarshal failed, dropping message: %v", err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Warnf(ctx, "[Consumer] Nack failed: %v", nackErr)
		}
		return
	}

	// 在途处理只受 Invoker 自身超时约束，停机取消不传导到处理中的调用
	err := c.invoke(context.WithoutCancel(ctx), &msg)
	if err != nil {
		c.logger.Errorf(ctx, "[Consumer] Handler failed for lote %d, dropping message: %v", msg.LoteID, err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Warnf(ctx, "[Consumer] Nack failed: %v", nackErr)
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Warnf(ctx, "[Consumer] Ack failed for lote %d: %v", msg.LoteID, ackErr)
		return
	}

	c.logger.Infof(ctx, "[Consumer] Message acked: lote=%d", msg.LoteID)
}

// invoke 调用业务处理函数（捕获 panic，折算为处理失败）
func (c *Consumer) invoke(ctx context.Context, msg *model.LoteMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return c.proc(ctx, msg)
}
