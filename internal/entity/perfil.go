package entity

import "time"

// PerfilProcessamento 处理配置实体（决定批次文件如何被转换）
type PerfilProcessamento struct {
	ID        int    `gorm:"column:id;primaryKey;autoIncrement"`
	ClienteID int    `gorm:"column:cliente_id;not null;index:idx_cliente"`
	Nome      string `gorm:"column:nome;type:varchar(100);not null"`
	Descricao string `gorm:"column:descricao;type:text"`

	// 文件解析配置
	TipoArquivo string `gorm:"column:tipo_arquivo;type:varchar(20)"`
	Delimitador string `gorm:"column:delimitador;type:varchar(5)"`
	TemplatePcl string `gorm:"column:template_pcl;type:varchar(200)"`

	// Lambda 路由配置（历史库表中可能不存在这两列，查询时不做投影）
	TipoProcessamento string `gorm:"column:tipo_processamento;type:varchar(50)"`
	LambdaFunction    string `gorm:"column:lambda_function;type:varchar(100)"`

	DataCriacao time.Time `gorm:"column:data_criacao;not null"`
}

// TableName 指定表名
func (PerfilProcessamento) TableName() string {
	return "perfis_processamento"
}
