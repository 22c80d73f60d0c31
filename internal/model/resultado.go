package model

import (
	"strings"
	"time"

	"graficaltda/orquestrador/internal/entity"
)

// Resultado 单次 Lambda 调用的归一化结果
// 不变量：Sucesso=false 时 Mensagem 非空；Sucesso=true 时 TempoProcessamento >= 0
type Resultado struct {
	Sucesso              bool
	Mensagem             string
	RegistrosProcessados int
	ArquivosProcessados  []string
	TempoProcessamento   time.Duration
}

// MensagemErroPadrao 失败结果缺少描述时的兜底文案
const MensagemErroPadrao = "Erro desconhecido no processamento"

// Falha 构造失败结果（保证消息非空）
func Falha(mensagem string) *Resultado {
	if mensagem == "" {
		mensagem = MensagemErroPadrao
	}
	return &Resultado{Sucesso: false, Mensagem: mensagem}
}

// PrimeiroArquivo 返回第一个产物路径（无产物返回空串）
func (r *Resultado) PrimeiroArquivo() string {
	if len(r.ArquivosProcessados) == 0 {
		return ""
	}
	return r.ArquivosProcessados[0]
}

// NovoRetorno 由归一化结果构建出站结果消息
// 多个产物路径以逗号拼接进 arquivoSaida
func NovoRetorno(loteID int, r *Resultado) *RetornoMessage {
	retorno := &RetornoMessage{
		LoteID:                     loteID,
		Sucesso:                    r.Sucesso,
		RegistrosProcessados:       r.RegistrosProcessados,
		ArquivoSaida:               strings.Join(r.ArquivosProcessados, ","),
		TempoProcessamentoSegundos: r.TempoProcessamento.Seconds(),
		DataProcessamento:          time.Now().UTC(),
	}

	if r.Sucesso {
		retorno.Status = entity.StatusConcluido
	} else {
		retorno.Status = entity.StatusErro
		retorno.MensagemErro = r.Mensagem
		if retorno.MensagemErro == "" {
			retorno.MensagemErro = MensagemErroPadrao
		}
	}

	return retorno
}

// RetornoErro 构建编排层错误的出站结果消息（无调用结果可用时）
func RetornoErro(loteID int, mensagem string) *RetornoMessage {
	if mensagem == "" {
		mensagem = MensagemErroPadrao
	}
	return &RetornoMessage{
		LoteID:            loteID,
		Sucesso:           false,
		Status:            entity.StatusErro,
		MensagemErro:      mensagem,
		DataProcessamento: time.Now().UTC(),
	}
}
