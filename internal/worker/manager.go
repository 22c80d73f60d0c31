package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"gorm.io/gorm"

	"graficaltda/orquestrador/internal/business"
	"graficaltda/orquestrador/internal/routing"
	"graficaltda/orquestrador/pkg/config"
	"graficaltda/orquestrador/pkg/infra/lambda"
	"graficaltda/orquestrador/pkg/infra/mysql"
	"graficaltda/orquestrador/pkg/infra/redis"
	"graficaltda/orquestrador/pkg/logger"
	"graficaltda/orquestrador/pkg/rabbitmq"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
// 负责装配全部依赖并管理生命周期：DB → Redis → Lambda → Publisher → Router → Service → Consumer
type ManagerInstance struct {
	ctx        context.Context
	cfg        *config.Config
	db         *gorm.DB
	pubsub     *redis.PubSub
	publisher  *rabbitmq.Publisher
	consumer   *rabbitmq.Consumer
	closing    *atomic.Bool
	shutdownCh chan struct{}
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager
// 启动期依赖不可用（DB、AWS 配置）是进程级错误，直接返回
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	db, err := mysql.NewDB(cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}

	// Redis 侧信道可选：未配置地址则禁用
	var pubsub *redis.PubSub
	if cfg.Redis.Addr != "" {
		pubsub, err = redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
	}

	invoker, err := lambda.NewInvoker(ctx, &cfg.AWS, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create lambda invoker: %w", err)
	}

	table := routing.NewTable(cfg.AWS.Lambda.Functions)
	log.Infof(ctx, "[Manager] Routing table loaded with %d functions", table.Len())

	router := routing.NewRouter(table, invoker, log)
	publisher := rabbitmq.NewPublisher(&cfg.RabbitMQ, log)

	var notifier business.Notifier
	if pubsub != nil {
		notifier = &loteNotifier{pubsub: pubsub, channel: cfg.Redis.Channel}
	}

	service := business.NewProcessamentoService(
		mysql.NewLoteDAO(db),
		mysql.NewPerfilDAO(db),
		mysql.NewClienteDAO(db),
		mysql.NewArquivoDAO(db),
		mysql.NewLogDAO(db),
		router,
		publisher,
		notifier,
		cfg.RabbitMQ.QueueRetorno,
		log,
	)

	consumer := rabbitmq.NewConsumer(&cfg.RabbitMQ, service.ProcessarLote, log)

	return &ManagerInstance{
		ctx:        ctx,
		cfg:        cfg,
		db:         db,
		pubsub:     pubsub,
		publisher:  publisher,
		consumer:   consumer,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 启动 Manager（阻塞直到 Shutdown）
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	if err := m.consumer.Start(m.ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] Start success, queue: %s", m.cfg.RabbitMQ.Queue)

	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出（原子 CAS 防止并发重入）
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	if m.closing.CAS(false, true) {
		// 1. 停止消费（不再接收新消息，等待在途消息处理完成）
		m.consumer.Stop()

		// 2. 关闭出站连接
		m.publisher.Close()

		// 3. 关闭侧信道与数据库（尽力而为）
		if m.pubsub != nil {
			if err := m.pubsub.Close(); err != nil {
				m.logger.Warnf(m.ctx, "[Manager] Redis close failed: %v", err)
			}
		}
		if err := mysql.CloseDB(m.db); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] MySQL close failed: %v", err)
		}

		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loteNotifier Redis 终态通知适配器（实现 business.Notifier）
type loteNotifier struct {
	pubsub  *redis.PubSub
	channel string
}

// Notify 发布批次终态通知
func (n *loteNotifier) Notify(ctx context.Context, loteID, clienteID int, status string) error {
	return n.pubsub.PublishLoteComplete(ctx, n.channel, &redis.LoteNotification{
		LoteID:    loteID,
		ClienteID: clienteID,
		Status:    status,
		Timestamp: time.Now().Unix(),
	})
}
