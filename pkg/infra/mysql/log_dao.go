package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"graficaltda/orquestrador/internal/entity"
	"graficaltda/orquestrador/pkg/errorutil"
)

// LogDAO 处理审计日志数据访问对象（只追加）
type LogDAO struct {
	db *gorm.DB
}

// NewLogDAO 创建 LogDAO 实例
func NewLogDAO(db *gorm.DB) *LogDAO {
	return &LogDAO{db: db}
}

// Append 追加一条处理日志
func (dao *LogDAO) Append(ctx context.Context, loteID int, mensagem string, tipoLog string) error {
	log := &entity.ProcessamentoLog{
		LoteProcessamentoID: loteID,
		Mensagem:            mensagem,
		TipoLog:             tipoLog,
		DataHora:            time.Now().UTC(),
	}

	if err := dao.db.WithContext(ctx).Create(log).Error; err != nil {
		return errorutil.Persistence("failed to append processamento log", err)
	}
	return nil
}
