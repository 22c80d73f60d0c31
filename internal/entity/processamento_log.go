package entity

import "time"

// ProcessamentoLog 处理审计日志（只追加，不更新不删除）
type ProcessamentoLog struct {
	ID                  int       `gorm:"column:id;primaryKey;autoIncrement"`
	LoteProcessamentoID int       `gorm:"column:lote_processamento_id;not null;index:idx_lote"`
	Mensagem            string    `gorm:"column:mensagem;type:text"`
	TipoLog             string    `gorm:"column:tipo_log;type:varchar(20)"`
	DataHora            time.Time `gorm:"column:data_hora;not null"`
}

// TableName 指定表名
func (ProcessamentoLog) TableName() string {
	return "processamento_logs"
}

// 日志级别常量
const (
	LogTipoInfo    = "Info"
	LogTipoSuccess = "Success"
	LogTipoError   = "Error"
)
