package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/raywall/procurement-mock/pkg/config/injector"
	"gopkg.in/yaml.v2"
)

// EnvConfigPath é a variável que aponta para o arquivo de configuração.
const EnvConfigPath = "CONFIG_FILE_PATH"

// Path retorna o caminho do arquivo de configuração (CONFIG_FILE_PATH ou config.yaml).
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load lê o YAML sobre os valores padrão, resolve variáveis e segredos e valida o resultado.
// Arquivo inexistente não é erro: o serviço sobe com Defaults().
func Load(ctx context.Context, path string, opts ...injector.Option) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// segue com os padrões
	case err != nil:
		return nil, fmt.Errorf("falha leitura config (%s): %w", path, err)
	default:
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("falha parse yaml (%s): %w", path, err)
		}
	}

	if err := injector.New(opts...).Inject(ctx, cfg); err != nil {
		return nil, fmt.Errorf("falha injeção de variáveis: %w", err)
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodifica data sobre cfg; campos ausentes mantêm o valor atual.
func Parse(data []byte, cfg *Config) error {
	return yaml.UnmarshalStrict(data, cfg)
}
