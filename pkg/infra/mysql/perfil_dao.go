package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"graficaltda/orquestrador/internal/entity"
	"graficaltda/orquestrador/pkg/errorutil"
)

// PerfilDAO 处理配置数据访问对象
type PerfilDAO struct {
	db *gorm.DB
}

// NewPerfilDAO 创建 PerfilDAO 实例
func NewPerfilDAO(db *gorm.DB) *PerfilDAO {
	return &PerfilDAO{db: db}
}

// 历史库表可能缺少 tipo_processamento / lambda_function 两列，
// 查询时只投影确定存在的列，避免生成引用缺失列的 SQL
var perfilSafeColumns = []string{
	"id",
	"cliente_id",
	"nome",
	"descricao",
	"tipo_arquivo",
	"delimitador",
	"template_pcl",
	"data_criacao",
}

// GetByID 根据 ID 查询处理配置（不存在返回 nil, nil）
func (dao *PerfilDAO) GetByID(ctx context.Context, id int) (*entity.PerfilProcessamento, error) {
	var perfil entity.PerfilProcessamento
	result := dao.db.WithContext(ctx).
		Select(perfilSafeColumns).
		Where("id = ?", id).
		First(&perfil)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errorutil.Persistence("failed to get perfil", result.Error)
	}
	return &perfil, nil
}
