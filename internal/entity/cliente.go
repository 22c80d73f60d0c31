package entity

import "time"

// Cliente 客户实体（构建完整 payload 快照时使用）
type Cliente struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	Nome        string    `gorm:"column:nome;type:varchar(200);not null"`
	Email       string    `gorm:"column:email;type:varchar(100)"`
	Telefone    string    `gorm:"column:telefone;type:varchar(20)"`
	DataCriacao time.Time `gorm:"column:data_criacao;not null"`
}

// TableName 指定表名
func (Cliente) TableName() string {
	return "clientes"
}

// ArquivoPcl 批次内单个待处理文件
type ArquivoPcl struct {
	ID            int       `gorm:"column:id;primaryKey;autoIncrement"`
	LoteID        int       `gorm:"column:lote_id;not null;index:idx_lote"`
	NomeArquivo   string    `gorm:"column:nome_arquivo;type:varchar(200);not null"`
	CaminhoS3     string    `gorm:"column:caminho_s3;type:varchar(300);not null"`
	TamanhoBytes  int64     `gorm:"column:tamanho_bytes"`
	NumeroPaginas int       `gorm:"column:numero_paginas"`
	Status        string    `gorm:"column:status;type:varchar(50)"`
	DataUpload    time.Time `gorm:"column:data_upload;not null"`
}

// TableName 指定表名
func (ArquivoPcl) TableName() string {
	return "arquivos_pcl"
}
