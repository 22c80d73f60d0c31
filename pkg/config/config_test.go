package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
app:
  name: orquestrador
  env: test
  log_level: debug

mysql:
  dsn: "user:pass@tcp(localhost:3306)/grafica?parseTime=true"

redis:
  addr: "localhost:6379"
  channel: "lote:notifications"

rabbitmq:
  host: localhost
  port: 5673
  username: guest
  password: guest
  vhost: /grafica
  exchange: graficaltda.exchange
  queue: lote.processamento
  queue_retorno: lote.processamento.retorno
  recovery_wait: 5s

aws:
  region: sa-east-1
  lambda:
    timeout: 10m
    max_attempts: 2
    retry_backoff: 1s
    functions:
      ClienteMalaDireta: "arn:aws:lambda:sa-east-1:123:function:mala-direta"
      Default: "arn:aws:lambda:sa-east-1:123:function:default"
`

const minimalYAML = `
app:
  name: orquestrador

mysql:
  dsn: "user:pass@tcp(localhost:3306)/grafica"

rabbitmq:
  host: localhost

aws:
  lambda:
    functions:
      Default: "arn:aws:lambda:us-east-1:123:function:default"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullYAML))
	require.NoError(t, err)

	assert.Equal(t, "orquestrador", cfg.App.Name)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 5673, cfg.RabbitMQ.Port)
	assert.Equal(t, "/grafica", cfg.RabbitMQ.VirtualHost)
	assert.Equal(t, 5*time.Second, cfg.RabbitMQ.RecoveryWait)
	assert.Equal(t, "sa-east-1", cfg.AWS.Region)
	assert.Equal(t, 10*time.Minute, cfg.AWS.Lambda.Timeout)
	assert.Equal(t, 2, cfg.AWS.Lambda.MaxAttempts)
	assert.Len(t, cfg.AWS.Lambda.Functions, 2)
	assert.Equal(t, "lote:notifications", cfg.Redis.Channel)

	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.Equal(t, "/", cfg.RabbitMQ.VirtualHost)
	assert.Equal(t, "graficaltda.exchange", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "lote.processamento", cfg.RabbitMQ.Queue)
	assert.Equal(t, "lote.processamento.retorno", cfg.RabbitMQ.QueueRetorno)
	assert.Equal(t, 10*time.Second, cfg.RabbitMQ.RecoveryWait)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, 5*time.Minute, cfg.AWS.Lambda.Timeout)
	assert.Equal(t, 3, cfg.AWS.Lambda.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.AWS.Lambda.RetryBackoff)

	// Redis addr 为空表示侧信道禁用
	assert.Empty(t, cfg.Redis.Addr)

	assert.NoError(t, cfg.Validate())
}

func TestLoadArquivoInexistente(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nao_existe.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:      AppConfig{Name: "orquestrador"},
			MySQL:    MySQLConfig{DSN: "dsn"},
			RabbitMQ: RabbitMQConfig{Host: "localhost"},
			AWS: AWSConfig{
				Lambda: LambdaConfig{Functions: map[string]string{"Default": "arn"}},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valido", func(c *Config) {}, ""},
		{"sem app name", func(c *Config) { c.App.Name = "" }, "app.name"},
		{"sem dsn", func(c *Config) { c.MySQL.DSN = "" }, "mysql.dsn"},
		{"sem host", func(c *Config) { c.RabbitMQ.Host = "" }, "rabbitmq.host"},
		{"sem functions", func(c *Config) { c.AWS.Lambda.Functions = nil }, "aws.lambda.functions"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
