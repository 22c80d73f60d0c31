package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	AWS      AWSConfig      `mapstructure:"aws"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置（终态通知侧信道，Addr 为空则禁用）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// RabbitMQConfig RabbitMQ 配置
// Exchange 由上游 API 创建，本服务只声明并绑定自己的队列
type RabbitMQConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	VirtualHost  string        `mapstructure:"vhost"`
	Exchange     string        `mapstructure:"exchange"`
	Queue        string        `mapstructure:"queue"`
	QueueRetorno string        `mapstructure:"queue_retorno"`
	RecoveryWait time.Duration `mapstructure:"recovery_wait"`
}

// AWSConfig AWS 配置
type AWSConfig struct {
	Region    string       `mapstructure:"region"`
	AccessKey string       `mapstructure:"access_key"`
	SecretKey string       `mapstructure:"secret_key"`
	Lambda    LambdaConfig `mapstructure:"lambda"`
}

// LambdaConfig Lambda 调用配置
// Functions 为处理类型 → 函数 ARN 的静态映射，必须包含 Default 键
type LambdaConfig struct {
	Timeout      time.Duration     `mapstructure:"timeout"`
	MaxAttempts  int               `mapstructure:"max_attempts"`
	RetryBackoff time.Duration     `mapstructure:"retry_backoff"`
	Functions    map[string]string `mapstructure:"functions"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults 填充缺省值
func (c *Config) applyDefaults() {
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
	if c.RabbitMQ.VirtualHost == "" {
		c.RabbitMQ.VirtualHost = "/"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "graficaltda.exchange"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "lote.processamento"
	}
	if c.RabbitMQ.QueueRetorno == "" {
		c.RabbitMQ.QueueRetorno = "lote.processamento.retorno"
	}
	if c.RabbitMQ.RecoveryWait == 0 {
		c.RabbitMQ.RecoveryWait = 10 * time.Second
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.AWS.Lambda.Timeout == 0 {
		c.AWS.Lambda.Timeout = 5 * time.Minute
	}
	if c.AWS.Lambda.MaxAttempts == 0 {
		c.AWS.Lambda.MaxAttempts = 3
	}
	if c.AWS.Lambda.RetryBackoff == 0 {
		c.AWS.Lambda.RetryBackoff = 2 * time.Second
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq.host is required")
	}
	if len(c.AWS.Lambda.Functions) == 0 {
		return fmt.Errorf("aws.lambda.functions is required")
	}
	return nil
}
