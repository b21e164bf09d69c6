package config

import "time"

// Valores padrão usados quando o arquivo de configuração não existe ou omite campos.
const (
	DefaultConfigPath      = "config.yaml"
	DefaultServiceName     = "procurement-mock"
	DefaultPort            = 3000
	DefaultSource          = "mock-data/db.json"
	DefaultPersistFile     = "mock-data/db.json"
	DefaultTimeout         = "30s"
	DefaultShutdownTimeout = "10s"
)

// Config representa a estrutura raiz do arquivo YAML do mock backend.
type Config struct {
	Service  ServiceDetails `yaml:"service" validate:"required"`
	Store    StoreConf      `yaml:"store" validate:"required"`
	CORS     CORSConf       `yaml:"cors"`
	Rewrites []RewriteRule  `yaml:"rewrites" validate:"dive"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name            string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime         string      `yaml:"runtime" env:"SERVICE_RUNTIME" validate:"required,oneof=local lambda"`
	Port            int         `yaml:"port" env:"PORT" validate:"required_if=Runtime local,gte=0,lte=65535"`
	Timeout         string      `yaml:"timeout" validate:"required"`          // Ex: "500ms", "2s"
	ShutdownTimeout string      `yaml:"shutdown_timeout" validate:"required"` // tempo máximo do graceful shutdown
	Logging         LoggingConf `yaml:"logging"`
	Metrics         MetricsConf `yaml:"metrics"`
}

// StoreConf descreve de onde o documento seed é carregado e se as mutações são persistidas.
type StoreConf struct {
	Source      string `yaml:"source" env:"DB_SOURCE" validate:"required"` // file, s3://, dynamodb://, redis://, postgres://
	Region      string `yaml:"region" env:"AWS_REGION"`
	Persist     bool   `yaml:"persist" env:"DB_PERSIST"`
	PersistPath string `yaml:"persist_path" validate:"required_if=Persist true"`
	ReloadQueue string `yaml:"reload_queue" env:"RELOAD_QUEUE_URL"`
}

// CORSConf define os headers CORS enviados em toda resposta.
type CORSConf struct {
	AllowOrigin  string `yaml:"allow_origin"`
	AllowMethods string `yaml:"allow_methods"`
	AllowHeaders string `yaml:"allow_headers"`
}

// RewriteRule é uma entrada da tabela de reescrita de caminhos.
type RewriteRule struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// Defaults retorna a configuração usada sem arquivo: porta 3000, seed local,
// CORS aberto e logs em JSON.
func Defaults() *Config {
	return &Config{
		Service: ServiceDetails{
			Name:            DefaultServiceName,
			Runtime:         "local",
			Port:            DefaultPort,
			Timeout:         DefaultTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			Logging:         LoggingConf{Enabled: true, Level: "info", Format: "json"},
		},
		Store: StoreConf{
			Source:      DefaultSource,
			PersistPath: DefaultPersistFile,
		},
		CORS: CORSConf{
			AllowOrigin:  "*",
			AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders: "Origin, X-Requested-With, Content-Type, Accept",
		},
	}
}

func (s ServiceDetails) GetTimeout() time.Duration {
	return parseDuration(s.Timeout, 30*time.Second)
}

func (s ServiceDetails) GetShutdownTimeout() time.Duration {
	return parseDuration(s.ShutdownTimeout, 10*time.Second)
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
