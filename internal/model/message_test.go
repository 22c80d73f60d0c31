package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractS3(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		bucket string
		key    string
	}{
		{"scheme", "s3://bucket/a/b", "bucket", "a/b"},
		{"scheme upper", "S3://Bucket/pasta/arquivo.pcl", "Bucket", "pasta/arquivo.pcl"},
		{"scheme bucket only", "s3://bucket", "bucket", ""},
		{"no scheme", "bucket/a/b", "bucket", "a/b"},
		{"only bucket", "onlybucket", "onlybucket", ""},
		{"empty", "", "", ""},
		{"trailing slash", "bucket/", "bucket", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractS3Bucket(tc.path); got != tc.bucket {
				t.Fatalf("ExtractS3Bucket(%q) = %q, want %q", tc.path, got, tc.bucket)
			}
			if got := ExtractS3Key(tc.path); got != tc.key {
				t.Fatalf("ExtractS3Key(%q) = %q, want %q", tc.path, got, tc.key)
			}
		})
	}
}

func TestExtractS3Malformed(t *testing.T) {
	// 含控制字符的路径无法按 URI 解析：bucket 为空，key 保留原始字符串
	bad := "s3://bu\x00cket/a/b"
	if got := ExtractS3Bucket(bad); got != "" {
		t.Fatalf("ExtractS3Bucket(malformed) = %q, want empty", got)
	}
	if got := ExtractS3Key(bad); got != bad {
		t.Fatalf("ExtractS3Key(malformed) = %q, want original string", got)
	}
}

func TestExtractS3Idempotent(t *testing.T) {
	// 对 bucket 结果再次解析得到同一 bucket
	bucket := ExtractS3Bucket("s3://bucket/a/b")
	if got := ExtractS3Bucket(bucket); got != bucket {
		t.Fatalf("ExtractS3Bucket not idempotent: %q vs %q", got, bucket)
	}

	key := ExtractS3Key("s3://bucket/a/b")
	if got := ExtractS3Key("bucket/" + key); got != key {
		t.Fatalf("ExtractS3Key round = %q, want %q", got, key)
	}
}

func TestLoteMessageDerivedFields(t *testing.T) {
	raw := `{"loteId":501,"clienteId":7,"nomeArquivo":"dados.csv","caminhoS3":"s3://grafica-input/lotes/501/dados.csv","perfilId":12}`

	var msg LoteMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}

	if msg.LoteID != 501 || msg.PerfilID != 12 {
		t.Fatalf("unexpected ids: lote=%d perfil=%d", msg.LoteID, msg.PerfilID)
	}
	if got := msg.S3Bucket(); got != "grafica-input" {
		t.Fatalf("S3Bucket() = %q", got)
	}
	if got := msg.S3Key(); got != "lotes/501/dados.csv" {
		t.Fatalf("S3Key() = %q", got)
	}
}

func TestNovoRetornoSucesso(t *testing.T) {
	r := &Resultado{
		Sucesso:              true,
		RegistrosProcessados: 120,
		ArquivosProcessados:  []string{"out/a.pcl", "out/b.pcl"},
	}

	retorno := NovoRetorno(42, r)

	if !retorno.Sucesso || retorno.Status != "Concluído" {
		t.Fatalf("unexpected retorno: sucesso=%v status=%q", retorno.Sucesso, retorno.Status)
	}
	if retorno.ArquivoSaida != "out/a.pcl,out/b.pcl" {
		t.Fatalf("ArquivoSaida = %q, want comma-joined list", retorno.ArquivoSaida)
	}
	if retorno.MensagemErro != "" {
		t.Fatalf("MensagemErro should be empty on success, got %q", retorno.MensagemErro)
	}
}

func TestNovoRetornoFalhaSempreComMensagem(t *testing.T) {
	// 不变量：失败结果构建的事件必须带非空错误信息
	for _, mensagem := range []string{"timeout na Lambda", ""} {
		retorno := NovoRetorno(42, &Resultado{Sucesso: false, Mensagem: mensagem})
		if retorno.Sucesso {
			t.Fatalf("retorno should not be success")
		}
		if retorno.Status != "Erro" {
			t.Fatalf("Status = %q, want Erro", retorno.Status)
		}
		if strings.TrimSpace(retorno.MensagemErro) == "" {
			t.Fatalf("MensagemErro must be non-empty (input %q)", mensagem)
		}
	}
}

func TestFalhaMensagemPadrao(t *testing.T) {
	if got := Falha("").Mensagem; got != MensagemErroPadrao {
		t.Fatalf("Falha(\"\").Mensagem = %q", got)
	}
	if got := Falha("x").Mensagem; got != "x" {
		t.Fatalf("Falha(\"x\").Mensagem = %q", got)
	}
}
