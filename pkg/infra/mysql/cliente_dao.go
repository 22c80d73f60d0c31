package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"graficaltda/orquestrador/internal/entity"
	"graficaltda/orquestrador/pkg/errorutil"
)

// ClienteDAO 客户数据访问对象
type ClienteDAO struct {
	db *gorm.DB
}

// NewClienteDAO 创建 ClienteDAO 实例
func NewClienteDAO(db *gorm.DB) *ClienteDAO {
	return &ClienteDAO{db: db}
}

// GetByID 根据 ID 查询客户（不存在返回 nil, nil）
func (dao *ClienteDAO) GetByID(ctx context.Context, id int) (*entity.Cliente, error) {
	var cliente entity.Cliente
	result := dao.db.WithContext(ctx).Where("id = ?", id).First(&cliente)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errorutil.Persistence("failed to get cliente", result.Error)
	}
	return &cliente, nil
}

// ArquivoDAO 批次文件数据访问对象
type ArquivoDAO struct {
	db *gorm.DB
}

// NewArquivoDAO 创建 ArquivoDAO 实例
func NewArquivoDAO(db *gorm.DB) *ArquivoDAO {
	return &ArquivoDAO{db: db}
}

// ListByLote 查询批次下的全部文件
func (dao *ArquivoDAO) ListByLote(ctx context.Context, loteID int) ([]entity.ArquivoPcl, error) {
	var arquivos []entity.ArquivoPcl
	result := dao.db.WithContext(ctx).
		Where("lote_id = ?", loteID).
		Order("id").
		Find(&arquivos)
	if result.Error != nil {
		return nil, errorutil.Persistence("failed to list arquivos", result.Error)
	}
	return arquivos, nil
}
