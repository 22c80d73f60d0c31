package lambda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"graficaltda/orquestrador/internal/model"
)

// nopLogger 测试用空日志
type nopLogger struct{}

func (nopLogger) Debugf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Sync() error                                                    { return nil }

// fakeLambdaClient 按调用序返回预设响应/错误
type fakeLambdaClient struct {
	outs  []*awslambda.InvokeOutput
	errs  []error
	calls int
}

func (f *fakeLambdaClient) Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error) {
	n := f.calls
	f.calls++
	var err error
	if n < len(f.errs) {
		err = f.errs[n]
	}
	var out *awslambda.InvokeOutput
	if n < len(f.outs) {
		out = f.outs[n]
	}
	return out, err
}

func testInvoker() *Invoker {
	return &Invoker{logger: nopLogger{}}
}

func testPayload() *model.LambdaPayload {
	return &model.LambdaPayload{LoteID: 42, LambdaArn: "arn:test"}
}

func TestNormalizeSucesso(t *testing.T) {
	out := &awslambda.InvokeOutput{
		StatusCode: 200,
		Payload: []byte(`{
			"loteId": 42,
			"sucesso": true,
			"registrosProcessados": 300,
			"arquivosProcessados": ["s3://out/a.pcl"],
			"tempoProcessamentoSegundos": 12.5
		}`),
	}

	r := testInvoker().normalize(context.Background(), testPayload(), out, 3*time.Second)

	assert.True(t, r.Sucesso)
	assert.Equal(t, 300, r.RegistrosProcessados)
	assert.Equal(t, []string{"s3://out/a.pcl"}, r.ArquivosProcessados)
	// 端点上报的耗时优先于本地测量
	assert.Equal(t, 12500*time.Millisecond, r.TempoProcessamento)
}

func TestNormalizeRegistrosDeTotalPaginas(t *testing.T) {
	out := &awslambda.InvokeOutput{
		StatusCode: 200,
		Payload:    []byte(`{"sucesso": true, "totalPaginas": 77}`),
	}

	r := testInvoker().normalize(context.Background(), testPayload(), out, time.Second)

	assert.True(t, r.Sucesso)
	assert.Equal(t, 77, r.RegistrosProcessados)
	// 响应无耗时则用本地测量
	assert.Equal(t, time.Second, r.TempoProcessamento)
}

func TestNormalizeStatusCodeNao200(t *testing.T) {
	out := &awslambda.InvokeOutput{StatusCode: 500}

	r := testInvoker().normalize(context.Background(), testPayload(), out, time.Second)

	assert.False(t, r.Sucesso)
	assert.Contains(t, r.Mensagem, "500")
}

func TestNormalizeFunctionError(t *testing.T) {
	out := &awslambda.InvokeOutput{
		StatusCode:    200,
		FunctionError: aws.String("Unhandled"),
		Payload:       []byte(`{"errorMessage": "out of memory"}`),
	}

	r := testInvoker().normalize(context.Background(), testPayload(), out, time.Second)

	assert.False(t, r.Sucesso)
	assert.Contains(t, r.Mensagem, "Unhandled")
	assert.Contains(t, r.Mensagem, "out of memory")
}

func TestNormalizeRespostaInvalida(t *testing.T) {
	out := &awslambda.InvokeOutput{StatusCode: 200, Payload: []byte(`nem json`)}

	r := testInvoker().normalize(context.Background(), testPayload(), out, time.Second)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "Resposta inválida da Lambda", r.Mensagem)
}

func TestNormalizeFalhaNegocio(t *testing.T) {
	out := &awslambda.InvokeOutput{
		StatusCode: 200,
		Payload:    []byte(`{"sucesso": false, "mensagemRetorno": "Arquivo corrompido"}`),
	}

	r := testInvoker().normalize(context.Background(), testPayload(), out, time.Second)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "Arquivo corrompido", r.Mensagem)
}

func TestNormalizeFalhaSemMensagem(t *testing.T) {
	out := &awslambda.InvokeOutput{StatusCode: 200, Payload: []byte(`{"sucesso": false}`)}

	r := testInvoker().normalize(context.Background(), testPayload(), out, time.Second)

	assert.False(t, r.Sucesso)
	assert.Equal(t, model.MensagemErroPadrao, r.Mensagem)
}

func TestInvokeSemArn(t *testing.T) {
	payload := testPayload()
	payload.LambdaArn = ""
	payload.TipoProcessamento = "ClienteEtiquetas"

	r := testInvoker().Invoke(context.Background(), payload)

	assert.False(t, r.Sucesso)
	assert.Contains(t, r.Mensagem, "ClienteEtiquetas")
}

func TestInvokeSemTentativasConfiguradas(t *testing.T) {
	// maxAttempts <= 0 仍然执行一次调用，失败归一化为失败结果而非崩溃
	client := &fakeLambdaClient{errs: []error{errors.New("dial tcp: connection refused")}}
	inv := &Invoker{client: client, timeout: time.Second, maxAttempts: 0, logger: nopLogger{}}

	r := inv.Invoke(context.Background(), testPayload())

	assert.Equal(t, 1, client.calls)
	assert.False(t, r.Sucesso)
	assert.Contains(t, r.Mensagem, "connection refused")
}

func TestInvokeRetryTransiente(t *testing.T) {
	client := &fakeLambdaClient{
		errs: []error{errors.New("dial tcp: connection refused"), nil},
		outs: []*awslambda.InvokeOutput{
			nil,
			{StatusCode: 200, Payload: []byte(`{"sucesso": true, "registrosProcessados": 9}`)},
		},
	}
	inv := &Invoker{client: client, timeout: time.Second, maxAttempts: 3, logger: nopLogger{}}

	r := inv.Invoke(context.Background(), testPayload())

	assert.Equal(t, 2, client.calls)
	assert.True(t, r.Sucesso)
	assert.Equal(t, 9, r.RegistrosProcessados)
}

func TestInvokeAPIErrorSemRetry(t *testing.T) {
	// 服务端明确拒绝的调用不消耗剩余重试次数
	client := &fakeLambdaClient{
		errs: []error{&smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "function not found"}},
	}
	inv := &Invoker{client: client, timeout: time.Second, maxAttempts: 3, logger: nopLogger{}}

	r := inv.Invoke(context.Background(), testPayload())

	assert.Equal(t, 1, client.calls)
	assert.False(t, r.Sucesso)
	assert.Contains(t, r.Mensagem, "function not found")
}

func TestIsTransient(t *testing.T) {
	// 服务端已响应的 API 错误不重试
	apiErr := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "function not found"}
	assert.False(t, isTransient(apiErr))

	// 传输层错误重试
	assert.True(t, isTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, isTransient(context.DeadlineExceeded))
}
