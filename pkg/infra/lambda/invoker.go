package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"

	"graficaltda/orquestrador/internal/model"
	"graficaltda/orquestrador/pkg/config"
	"graficaltda/orquestrador/pkg/logger"
)

// lambdaAPI SDK 客户端的调用面（便于注入替身）
type lambdaAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// Invoker Lambda 同步调用客户端
// 约定：普通调用失败不返回 error，统一归一化为失败结果，
// 编排层只需要处理一个成功/失败分支
type Invoker struct {
	client      lambdaAPI
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	logger      logger.Logger
}

// NewInvoker 创建 Invoker 实例
// SDK 自带重试收敛为 1 次，重试策略由本层控制
func NewInvoker(ctx context.Context, cfg *config.AWSConfig, log logger.Logger) (*Invoker, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &Invoker{
		client:      awslambda.NewFromConfig(awsCfg),
		timeout:     cfg.Lambda.Timeout,
		maxAttempts: cfg.Lambda.MaxAttempts,
		backoff:     cfg.Lambda.RetryBackoff,
		logger:      log,
	}, nil
}

// lambdaResposta Lambda 响应的线上结构（camelCase JSON）
type lambdaResposta struct {
	LoteID                     int      `json:"loteId"`
	Sucesso                    bool     `json:"sucesso"`
	Status                     string   `json:"status"`
	MensagemRetorno            string   `json:"mensagemRetorno"`
	RegistrosProcessados       int      `json:"registrosProcessados"`
	ArquivosProcessados        []string `json:"arquivosProcessados"`
	TotalPaginas               int      `json:"totalPaginas"`
	TempoProcessamentoSegundos float64  `json:"tempoProcessamentoSegundos"`
}

// Invoke 同步调用 Lambda 并归一化结果
// 仅传输层瞬时错误（连接拒绝/超时）做有限重试；端点已给出响应的失败不重试
func (i *Invoker) Invoke(ctx context.Context, payload *model.LambdaPayload) *model.Resultado {
	if payload.LambdaArn == "" {
		return model.Falha(fmt.Sprintf("Lambda ARN não especificado para tipo de processamento %s", payload.TipoProcessamento))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return model.Falha(fmt.Sprintf("falha ao serializar payload: %v", err))
	}

	startTime := time.Now()

	// 至少调用一次（配置 0 或负数不能把调用短路成空循环）
	attempts := i.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		invokeCtx, cancel := context.WithTimeout(ctx, i.timeout)
		out, err := i.client.Invoke(invokeCtx, &awslambda.InvokeInput{
			FunctionName:   aws.String(payload.LambdaArn),
			Payload:        body,
			InvocationType: types.InvocationTypeRequestResponse,
		})
		cancel()

		if err != nil {
			if !isTransient(err) {
				// 端点已作出明确拒绝，重试不会改变结果
				return model.Falha(err.Error())
			}

			lastErr = err
			i.logger.Warnf(ctx, "[Invoker] Transient invoke error for lote %d (attempt %d/%d): %v",
				payload.LoteID, attempt, attempts, err)

			if attempt < attempts {
				select {
				case <-ctx.Done():
					return model.Falha(ctx.Err().Error())
				case <-time.After(i.backoff * time.Duration(attempt)):
				}
			}
			continue
		}

		return i.normalize(ctx, payload, out, time.Since(startTime))
	}

	return model.Falha(lastErr.Error())
}

// normalize 将 Lambda 响应映射为归一化结果
func (i *Invoker) normalize(ctx context.Context, payload *model.LambdaPayload, out *awslambda.InvokeOutput, elapsed time.Duration) *model.Resultado {
	if out.StatusCode != 200 {
		return model.Falha(fmt.Sprintf("Lambda invocation failed with status code: %d", out.StatusCode))
	}

	if out.FunctionError != nil {
		return model.Falha(fmt.Sprintf("Lambda function error: %s: %s", *out.FunctionError, string(out.Payload)))
	}

	var resposta lambdaResposta
	if err := json.Unmarshal(out.Payload, &resposta); err != nil {
		i.logger.Errorf(ctx, "[Invoker] Invalid lambda response for lote %d: %v", payload.LoteID, err)
		return model.Falha("Resposta inválida da Lambda")
	}

	registros := resposta.RegistrosProcessados
	if registros == 0 {
		registros = resposta.TotalPaginas
	}

	tempo := elapsed
	if resposta.TempoProcessamentoSegundos > 0 {
		tempo = time.Duration(resposta.TempoProcessamentoSegundos * float64(time.Second))
	}

	if !resposta.Sucesso {
		falha := model.Falha(resposta.MensagemRetorno)
		falha.RegistrosProcessados = registros
		falha.TempoProcessamento = tempo
		return falha
	}

	return &model.Resultado{
		Sucesso:              true,
		Mensagem:             resposta.MensagemRetorno,
		RegistrosProcessados: registros,
		ArquivosProcessados:  resposta.ArquivosProcessados,
		TempoProcessamento:   tempo,
	}
}

// isTransient 判断错误是否为传输层瞬时故障
// SDK 的 APIError 表示请求已到达服务端并被拒绝（4xx 等），视为不可重试
func isTransient(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return false
	}
	return true
}
