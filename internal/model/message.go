package model

import (
	"net/url"
	"strings"
	"time"
)

// LoteMessage 入站队列消息（由上游 API 发布，字段为 camelCase JSON）
// s3Bucket/s3Key 不在消息中传输，由 CaminhoS3 派生
type LoteMessage struct {
	LoteID      int    `json:"loteId"`
	ClienteID   int    `json:"clienteId"`
	NomeArquivo string `json:"nomeArquivo"`
	CaminhoS3   string `json:"caminhoS3"`
	PerfilID    int    `json:"perfilId"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

// S3Bucket 从 CaminhoS3 派生 bucket
func (m *LoteMessage) S3Bucket() string {
	return ExtractS3Bucket(m.CaminhoS3)
}

// S3Key 从 CaminhoS3 派生 key
func (m *LoteMessage) S3Key() string {
	return ExtractS3Key(m.CaminhoS3)
}

// ExtractS3Bucket 解析 S3 路径中的 bucket 部分
// 纯函数：任意输入不报错，解析失败返回空串
//   - "s3://bucket/a/b" → "bucket"
//   - "bucket/a/b"      → "bucket"
//   - "onlybucket"      → "onlybucket"
func ExtractS3Bucket(s3Path string) string {
	if s3Path == "" {
		return ""
	}

	if hasS3Scheme(s3Path) {
		u, err := url.Parse(s3Path)
		if err != nil {
			return ""
		}
		return u.Host
	}

	// 无协议前缀，按第一个 / 切分，前半段为 bucket
	parts := strings.SplitN(s3Path, "/", 2)
	return parts[0]
}

// ExtractS3Key 解析 S3 路径中的 key 部分
// 纯函数：任意输入不报错，解析失败返回原始字符串
//   - "s3://bucket/a/b" → "a/b"
//   - "bucket/a/b"      → "a/b"
//   - "onlybucket"      → ""
func ExtractS3Key(s3Path string) string {
	if s3Path == "" {
		return ""
	}

	if hasS3Scheme(s3Path) {
		u, err := url.Parse(s3Path)
		if err != nil {
			return s3Path
		}
		return strings.TrimPrefix(u.Path, "/")
	}

	parts := strings.SplitN(s3Path, "/", 2)
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// hasS3Scheme 判断路径是否带 s3:// 前缀（大小写不敏感）
func hasS3Scheme(s3Path string) bool {
	return len(s3Path) >= 5 && strings.EqualFold(s3Path[:5], "s3://")
}

// RetornoMessage 出站结果消息（发布到 lote.processamento.retorno）
type RetornoMessage struct {
	LoteID                     int       `json:"loteId"`
	Sucesso                    bool      `json:"sucesso"`
	Status                     string    `json:"status"`
	RegistrosProcessados       int       `json:"registrosProcessados"`
	ArquivoSaida               string    `json:"arquivoSaida,omitempty"`
	TempoProcessamentoSegundos float64   `json:"tempoProcessamentoSegundos"`
	MensagemErro               string    `json:"mensagemErro,omitempty"`
	DataProcessamento          time.Time `json:"dataProcessamento"`
}
