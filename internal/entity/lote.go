package entity

import "time"

// LoteProcessamento 批次实体（一次提交的客户文件处理单元）
// 由上游 API 创建，本服务只在单次处理中更新状态，不做删除
type LoteProcessamento struct {
	ID                    int    `gorm:"column:id;primaryKey;autoIncrement"`
	ClienteID             int    `gorm:"column:cliente_id;not null;index:idx_cliente"`
	UsuarioID             int    `gorm:"column:usuario_id;not null"`
	PerfilProcessamentoID int    `gorm:"column:perfil_processamento_id;not null"`
	NomeArquivo           string `gorm:"column:nome_arquivo;type:varchar(200);not null"`
	CaminhoS3             string `gorm:"column:caminho_s3;type:varchar(300);not null"`

	// 处理状态与产物
	Status       string  `gorm:"column:status;type:varchar(50);not null;index:idx_status"`
	ArquivoSaida *string `gorm:"column:arquivo_saida;type:varchar(300)"`

	// 时间戳
	DataCriacao       time.Time  `gorm:"column:data_criacao;not null"`
	DataProcessamento *time.Time `gorm:"column:data_processamento"`
}

// TableName 指定表名
func (LoteProcessamento) TableName() string {
	return "lotes_processamento"
}

// 批次状态常量（状态机: Pendente → Processando → Concluído/Erro）
const (
	StatusPendente    = "Pendente"
	StatusProcessando = "Processando"
	StatusConcluido   = "Concluído"
	StatusErro        = "Erro"
)

// IsTerminal 判断状态是否为终态（终态批次不再被本流水线处理）
func IsTerminal(status string) bool {
	return status == StatusConcluido || status == StatusErro
}
