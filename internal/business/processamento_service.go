package business

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"graficaltda/orquestrador/internal/entity"
	"graficaltda/orquestrador/internal/model"
	"graficaltda/orquestrador/internal/routing"
	"graficaltda/orquestrador/pkg/logger"
)

// LoteStore 批次存储接口
type LoteStore interface {
	GetByID(ctx context.Context, id int) (*entity.LoteProcessamento, error)
	UpdateStatus(ctx context.Context, id int, status string, arquivoSaida string) error
}

// PerfilStore 处理配置存储接口
type PerfilStore interface {
	GetByID(ctx context.Context, id int) (*entity.PerfilProcessamento, error)
}

// ClienteStore 客户存储接口
type ClienteStore interface {
	GetByID(ctx context.Context, id int) (*entity.Cliente, error)
}

// ArquivoStore 批次文件存储接口
type ArquivoStore interface {
	ListByLote(ctx context.Context, loteID int) ([]entity.ArquivoPcl, error)
}

// LogStore 处理审计日志存储接口（只追加）
type LogStore interface {
	Append(ctx context.Context, loteID int, mensagem string, tipoLog string) error
}

// Router 路由接口（推导类型 → 调用 Lambda）
type Router interface {
	Route(ctx context.Context, msg *model.LoteMessage, perfil *entity.PerfilProcessamento, snapshot *model.LoteSnapshot) (*model.Resultado, error)
}

// Publisher 结果消息发布接口
type Publisher interface {
	Publish(ctx context.Context, message interface{}, queueName string) error
}

// Notifier 终态通知侧信道接口（尽力而为，失败不影响流水线）
type Notifier interface {
	Notify(ctx context.Context, loteID, clienteID int, status string) error
}

// ProcessamentoService 批次编排服务
// 状态机：Pendente → Processando → Concluído/Erro；
// 唯一接触关系存储的组件，所有错误恢复在此收口
type ProcessamentoService struct {
	lotes        LoteStore
	perfis       PerfilStore
	clientes     ClienteStore
	arquivos     ArquivoStore
	logs         LogStore
	router       Router
	publisher    Publisher
	notifier     Notifier
	queueRetorno string
	logger       logger.Logger
}

// NewProcessamentoService 创建编排服务（notifier 可为 nil 表示禁用侧信道）
func NewProcessamentoService(
	lotes LoteStore,
	perfis PerfilStore,
	clientes ClienteStore,
	arquivos ArquivoStore,
	logs LogStore,
	router Router,
	publisher Publisher,
	notifier Notifier,
	queueRetorno string,
	log logger.Logger,
) *ProcessamentoService {
	return &ProcessamentoService{
		lotes:        lotes,
		perfis:       perfis,
		clientes:     clientes,
		arquivos:     arquivos,
		logs:         logs,
		router:       router,
		publisher:    publisher,
		notifier:     notifier,
		queueRetorno: queueRetorno,
		logger:       log,
	}
}

// ProcessarLote 处理一条批次消息（消费者的注入入口）
// 业务失败在内部消化并走恢复管道，调用方可以无条件 ACK
func (s *ProcessamentoService) ProcessarLote(ctx context.Context, msg *model.LoteMessage) error {
	ctx = context.WithValue(ctx, logger.CtxTraceID, uuid.New().String())
	ctx = context.WithValue(ctx, logger.CtxLoteID, msg.LoteID)

	if err := s.processar(ctx, msg); err != nil {
		s.logger.Errorf(ctx, "[Processamento] Erro crítico ao processar lote %d: %v", msg.LoteID, err)
		s.recuperar(ctx, msg.LoteID, err)
	}

	return nil
}

// processar 主流程，返回的 error 进入顶层恢复管道
func (s *ProcessamentoService) processar(ctx context.Context, msg *model.LoteMessage) error {
	loteID := msg.LoteID

	// 1. 查询批次；不存在视为 no-op（消息可能属于另一代消费者）
	lote, err := s.lotes.GetByID(ctx, loteID)
	if err != nil {
		return err
	}
	if lote == nil {
		s.logger.Errorf(ctx, "[Processamento] Lote %d não encontrado, ignorando mensagem", loteID)
		return nil
	}

	// 终态批次不重新处理（重复投递快速跳过）
	if entity.IsTerminal(lote.Status) {
		s.logger.Warnf(ctx, "[Processamento] Lote %d já em estado terminal (%s), ignorando redelivery", loteID, lote.Status)
		return nil
	}

	// 2. 查询处理配置；不存在是批次级失败，不发布结果事件
	perfil, err := s.perfis.GetByID(ctx, lote.PerfilProcessamentoID)
	if err != nil {
		return err
	}
	if perfil == nil {
		s.logger.Errorf(ctx, "[Processamento] Perfil %d não encontrado para lote %d", lote.PerfilProcessamentoID, loteID)
		if err := s.lotes.UpdateStatus(ctx, loteID, entity.StatusErro, ""); err != nil {
			return err
		}
		if err := s.logs.Append(ctx, loteID, "Perfil de processamento não encontrado", entity.LogTipoError); err != nil {
			return err
		}
		s.notificar(ctx, loteID, lote.ClienteID, entity.StatusErro)
		return nil
	}

	// 3. 状态迁移到 Processando
	if err := s.lotes.UpdateStatus(ctx, loteID, entity.StatusProcessando, ""); err != nil {
		return err
	}

	// 4. 记录推导出的处理类型
	tipo := routing.DeterminarTipo(perfil)
	ctx = context.WithValue(ctx, logger.CtxAction, tipo)
	if err := s.logs.Append(ctx, loteID, fmt.Sprintf("Iniciando processamento via Lambda - Tipo: %s", tipo), entity.LogTipoInfo); err != nil {
		return err
	}

	// 5. 路由并同步调用 Lambda（主要延迟来源，受 Invoker 的超时约束）
	snapshot := s.carregarSnapshot(ctx, lote)
	resultado, err := s.router.Route(ctx, msg, perfil, snapshot)
	if err != nil {
		// 端点无法解析（config 类缺陷），中止批次
		return err
	}

	if resultado.Sucesso {
		return s.concluir(ctx, lote, resultado)
	}
	return s.falhar(ctx, lote, resultado)
}

// concluir 成功分支：Concluído + 产物路径 + 审计 + 结果事件
func (s *ProcessamentoService) concluir(ctx context.Context, lote *entity.LoteProcessamento, resultado *model.Resultado) error {
	loteID := lote.ID

	s.logger.Infof(ctx, "[Processamento] Lote %d concluído: %d registros em %.2fs",
		loteID, resultado.RegistrosProcessados, resultado.TempoProcessamento.Seconds())

	if err := s.lotes.UpdateStatus(ctx, loteID, entity.StatusConcluido, resultado.PrimeiroArquivo()); err != nil {
		return err
	}

	mensagem := fmt.Sprintf("Processamento concluído - %d registros processados", resultado.RegistrosProcessados)
	if err := s.logs.Append(ctx, loteID, mensagem, entity.LogTipoSuccess); err != nil {
		return err
	}

	// 发布失败在此分支直接上抛，由顶层恢复管道接管
	if err := s.publisher.Publish(ctx, model.NovoRetorno(loteID, resultado), s.queueRetorno); err != nil {
		return err
	}

	s.notificar(ctx, loteID, lote.ClienteID, entity.StatusConcluido)
	return nil
}

// falhar 失败分支：Erro + 审计 + 带错误信息的结果事件
func (s *ProcessamentoService) falhar(ctx context.Context, lote *entity.LoteProcessamento, resultado *model.Resultado) error {
	loteID := lote.ID

	s.logger.Errorf(ctx, "[Processamento] Erro no processamento do lote %d: %s", loteID, resultado.Mensagem)

	if err := s.lotes.UpdateStatus(ctx, loteID, entity.StatusErro, ""); err != nil {
		return err
	}

	if err := s.logs.Append(ctx, loteID, fmt.Sprintf("Erro no processamento: %s", resultado.Mensagem), entity.LogTipoError); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, model.NovoRetorno(loteID, resultado), s.queueRetorno); err != nil {
		return err
	}

	s.notificar(ctx, loteID, lote.ClienteID, entity.StatusErro)
	return nil
}

// recoveryStep 恢复管道中的单个步骤
// 每步独立守护：一步失败只记日志，不阻断后续步骤
type recoveryStep struct {
	name string
	run  func(ctx context.Context) error
}

// recuperar 顶层恢复管道
// 尽力而为地：标记 Erro → 追加审计 → 发布失败事件；
// 恢复路径中的发布失败被吞掉（避免掩盖原始错误），与主分支的上抛语义不同
func (s *ProcessamentoService) recuperar(ctx context.Context, loteID int, cause error) {
	mensagem := fmt.Sprintf("Erro crítico: %s", cause.Error())

	steps := []recoveryStep{
		{
			name: "update_status",
			run: func(ctx context.Context) error {
				lote, err := s.lotes.GetByID(ctx, loteID)
				if err != nil {
					return err
				}
				if lote == nil {
					return nil
				}
				return s.lotes.UpdateStatus(ctx, loteID, entity.StatusErro, "")
			},
		},
		{
			name: "append_log",
			run: func(ctx context.Context) error {
				return s.logs.Append(ctx, loteID, mensagem, entity.LogTipoError)
			},
		},
		{
			name: "publish_retorno",
			run: func(ctx context.Context) error {
				return s.publisher.Publish(ctx, model.RetornoErro(loteID, mensagem), s.queueRetorno)
			},
		},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			s.logger.Errorf(ctx, "[Processamento] Recovery step %s failed for lote %d: %v", step.name, loteID, err)
			continue
		}
		s.logger.Infof(ctx, "[Processamento] Recovery step %s done for lote %d", step.name, loteID)
	}
}

// carregarSnapshot 尽力而为地加载完整实体快照（client + 文件列表）
// 任一查询失败只降级，不影响主流程
func (s *ProcessamentoService) carregarSnapshot(ctx context.Context, lote *entity.LoteProcessamento) *model.LoteSnapshot {
	snapshot := &model.LoteSnapshot{}

	cliente, err := s.clientes.GetByID(ctx, lote.ClienteID)
	if err != nil {
		s.logger.Warnf(ctx, "[Processamento] Falha ao carregar cliente %d: %v", lote.ClienteID, err)
	} else if cliente != nil {
		snapshot.Cliente = &model.ClienteSnapshot{
			ID:    cliente.ID,
			Nome:  cliente.Nome,
			Email: cliente.Email,
		}
	}

	arquivos, err := s.arquivos.ListByLote(ctx, lote.ID)
	if err != nil {
		s.logger.Warnf(ctx, "[Processamento] Falha ao carregar arquivos do lote %d: %v", lote.ID, err)
	} else {
		for _, a := range arquivos {
			snapshot.Arquivos = append(snapshot.Arquivos, model.ArquivoSnapshot{
				ID:            a.ID,
				NomeArquivo:   a.NomeArquivo,
				CaminhoS3:     a.CaminhoS3,
				NumeroPaginas: a.NumeroPaginas,
			})
		}
	}

	return snapshot
}

// notificar 发布终态通知（尽力而为，失败只记日志）
func (s *ProcessamentoService) notificar(ctx context.Context, loteID, clienteID int, status string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, loteID, clienteID, status); err != nil {
		s.logger.Warnf(ctx, "[Processamento] Falha ao notificar lote %d: %v", loteID, err)
	}
}
