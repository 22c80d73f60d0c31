package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"graficaltda/orquestrador/internal/entity"
	"graficaltda/orquestrador/pkg/errorutil"
)

// LoteDAO 批次数据访问对象
type LoteDAO struct {
	db *gorm.DB
}

// NewLoteDAO 创建 LoteDAO 实例
func NewLoteDAO(db *gorm.DB) *LoteDAO {
	return &LoteDAO{db: db}
}

// GetByID 根据 ID 查询批次（不存在返回 nil, nil）
func (dao *LoteDAO) GetByID(ctx context.Context, id int) (*entity.LoteProcessamento, error) {
	var lote entity.LoteProcessamento
	result := dao.db.WithContext(ctx).Where("id = ?", id).First(&lote)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errorutil.Persistence("failed to get lote", result.Error)
	}
	return &lote, nil
}

// UpdateStatus 更新批次状态与处理时间（arquivoSaida 可选）
func (dao *LoteDAO) UpdateStatus(ctx context.Context, id int, status string, arquivoSaida string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":             status,
		"data_processamento": now,
	}
	if arquivoSaida != "" {
		updates["arquivo_saida"] = arquivoSaida
	}

	result := dao.db.WithContext(ctx).
		Model(&entity.LoteProcessamento{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return errorutil.Persistence("failed to update lote", result.Error)
	}
	if result.RowsAffected == 0 {
		return errorutil.NotFound("lote not found for update")
	}
	return nil
}
