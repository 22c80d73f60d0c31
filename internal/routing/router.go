package routing

import (
	"context"
	"strings"

	"graficaltda/orquestrador/internal/entity"
	"graficaltda/orquestrador/internal/model"
	"graficaltda/orquestrador/pkg/logger"
)

// 处理类型常量
const (
	TipoMalaDireta = "ClienteMalaDireta"
	TipoEtiquetas  = "ClienteEtiquetas"
	TipoCartoes    = "ClienteCartoes"
)

// Lambda 函数名的处理族前缀（"ProcessamentoClienteMalaDireta" → "ClienteMalaDireta"）
const prefixoProcessamento = "Processamento"

// Invoker 外部计算端点调用接口
type Invoker interface {
	Invoke(ctx context.Context, payload *model.LambdaPayload) *model.Resultado
}

// Router 处理类型推导与 payload 构建
// 推导出类型 → 解析 Lambda ARN → 组装并增强 payload → 委托 Invoker 调用
type Router struct {
	table   *Table
	invoker Invoker
	logger  logger.Logger
}

// NewRouter 创建 Router 实例
func NewRouter(table *Table, invoker Invoker, log logger.Logger) *Router {
	return &Router{
		table:   table,
		invoker: invoker,
		logger:  log,
	}
}

// ResolveEndpoint 解析处理类型对应的端点（委托路由表）
func (r *Router) ResolveEndpoint(tipo string) (string, error) {
	return r.table.Resolve(tipo)
}

// Route 为一个批次推导处理类型、构建 payload 并调用 Lambda
// 返回 error 仅在端点无法解析时（config 类错误，中止批次）
func (r *Router) Route(ctx context.Context, msg *model.LoteMessage, perfil *entity.PerfilProcessamento, snapshot *model.LoteSnapshot) (*model.Resultado, error) {
	tipo := DeterminarTipo(perfil)
	r.logger.Infof(ctx, "[Router] Tipo de processamento: %s (perfil: %s)", tipo, perfil.Nome)

	arn, err := r.table.Resolve(tipo)
	if err != nil {
		return nil, err
	}
	r.logger.Infof(ctx, "[Router] Lambda selecionada: %s", arn)

	payload := &model.LambdaPayload{
		LoteID:   msg.LoteID,
		S3Bucket: msg.S3Bucket(),
		S3Key:    msg.S3Key(),
		Perfil: &model.PerfilSnapshot{
			ID:                perfil.ID,
			Nome:              perfil.Nome,
			TemplatePcl:       perfil.TemplatePcl,
			TipoProcessamento: perfil.TipoProcessamento,
			LambdaFunction:    perfil.LambdaFunction,
		},
		TipoProcessamento: tipo,
		LambdaArn:         arn,
		Config:            EnriquecerConfig(tipo, perfil),
		CallbackURL:       msg.CallbackURL,
	}

	// 编排层已解析出完整实体快照时嵌入；不可用时 payload 只携带消息可派生的字段
	if snapshot != nil {
		payload.Cliente = snapshot.Cliente
		payload.Arquivos = snapshot.Arquivos
	}

	r.logger.Debugf(ctx, "[Router] Payload pronto: lote=%d, config=%d entradas", msg.LoteID, len(payload.Config))

	return r.invoker.Invoke(ctx, payload), nil
}

// DeterminarTipo 从处理配置推导处理类型（纯函数，首个命中生效）
// 优先级：显式类型字段 → Lambda 函数名推断 → 名称关键词推断 → Default
func DeterminarTipo(perfil *entity.PerfilProcessamento) string {
	if perfil.TipoProcessamento != "" {
		return perfil.TipoProcessamento
	}

	if perfil.LambdaFunction != "" {
		if strings.HasPrefix(perfil.LambdaFunction, prefixoProcessamento) {
			return perfil.LambdaFunction[len(prefixoProcessamento):]
		}
		return perfil.LambdaFunction
	}

	nome := strings.ToLower(perfil.Nome)

	if strings.Contains(nome, "mala") && strings.Contains(nome, "direta") {
		return TipoMalaDireta
	}
	if strings.Contains(nome, "etiqueta") {
		return TipoEtiquetas
	}
	if strings.Contains(nome, "cartao") || strings.Contains(nome, "cartão") {
		return TipoCartoes
	}

	return TipoDefault
}

// EnriquecerConfig 按处理类型生成类型特定配置（纯函数，每个分支非空）
// 模板路径优先取配置中的 TemplatePcl，缺省为类型命名的模板文件
func EnriquecerConfig(tipo string, perfil *entity.PerfilProcessamento) model.ProcessamentoConfig {
	template := func(padrao string) model.ConfigValor {
		if perfil.TemplatePcl != "" {
			return model.Texto(perfil.TemplatePcl)
		}
		return model.Texto(padrao)
	}

	switch tipo {
	case TipoMalaDireta:
		return model.ProcessamentoConfig{
			"formatoSaida":     model.Texto("PCL_MALA_DIRETA"),
			"incluirCodBarras": model.Booleano(true),
			"margemEsquerda":   model.Texto("10mm"),
			"margemSuperior":   model.Texto("15mm"),
			"template":         template("template_mala_direta.pcl"),
		}

	case TipoEtiquetas:
		return model.ProcessamentoConfig{
			"formatoSaida":       model.Texto("PCL_ETIQUETAS"),
			"tipoEtiqueta":       model.Texto("PIMACO_6180"),
			"etiquetasPorPagina": model.Numero(30),
			"template":           template("template_etiquetas.pcl"),
		}

	case TipoCartoes:
		return model.ProcessamentoConfig{
			"formatoSaida":     model.Texto("PCL_CARTOES"),
			"tamanhoCartao":    model.Texto("85x54mm"),
			"cartoesPorPagina": model.Numero(10),
			"template":         template("template_cartoes.pcl"),
		}

	default:
		return model.ProcessamentoConfig{
			"formatoSaida": model.Texto("PCL_GENERICO"),
			"template":     template("template_generico.pcl"),
		}
	}
}
