package model

// PerfilSnapshot 处理配置的公开字段快照（随 payload 发送给 Lambda）
type PerfilSnapshot struct {
	ID                int    `json:"id"`
	Nome              string `json:"nome"`
	TemplatePcl       string `json:"templatePcl,omitempty"`
	TipoProcessamento string `json:"tipoProcessamento,omitempty"`
	LambdaFunction    string `json:"lambdaFunction,omitempty"`
}

// ClienteSnapshot 客户快照（快照可用时嵌入 payload）
type ClienteSnapshot struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email,omitempty"`
}

// ArquivoSnapshot 批次文件快照
type ArquivoSnapshot struct {
	ID            int    `json:"id"`
	NomeArquivo   string `json:"nomeArquivo"`
	CaminhoS3     string `json:"caminhoS3"`
	NumeroPaginas int    `json:"numeroPaginas"`
}

// LoteSnapshot 编排器预先解析好的完整实体快照（client + 文件列表）
// 查询失败时为空，payload 退化为仅含消息可派生的字段
type LoteSnapshot struct {
	Cliente  *ClienteSnapshot
	Arquivos []ArquivoSnapshot
}

// LambdaPayload 发送给外部计算端点的调用载荷
// 每次调用由 Router 重新构造，不持久化
type LambdaPayload struct {
	LoteID            int                 `json:"loteId"`
	S3Bucket          string              `json:"s3Bucket"`
	S3Key             string              `json:"s3Key"`
	Perfil            *PerfilSnapshot     `json:"perfilProcessamento"`
	Cliente           *ClienteSnapshot    `json:"cliente,omitempty"`
	Arquivos          []ArquivoSnapshot   `json:"arquivosPcl,omitempty"`
	TipoProcessamento string              `json:"tipoProcessamento"`
	LambdaArn         string              `json:"lambdaArn"`
	Config            ProcessamentoConfig `json:"processamentoConfig"`
	CallbackURL       string              `json:"callbackUrl,omitempty"`
}
