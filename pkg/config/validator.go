package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *Config) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *Config) error {
	// 1. Durações
	for name, v := range map[string]string{
		"service.timeout":          cfg.Service.Timeout,
		"service.shutdown_timeout": cfg.Service.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("duração inválida em %s: '%s'", name, v)
		}
	}

	// 2. Tabela de reescrita: padrões absolutos e sem duplicidade
	seen := make(map[string]bool)
	for _, r := range cfg.Rewrites {
		if !strings.HasPrefix(r.From, "/") || !strings.HasPrefix(r.To, "/") {
			return fmt.Errorf("regra de reescrita deve usar caminhos absolutos: '%s' -> '%s'", r.From, r.To)
		}
		if seen[r.From] {
			return fmt.Errorf("regra de reescrita duplicada detectada: '%s'", r.From)
		}
		seen[r.From] = true
	}

	// 3. Hot reload exige a URL completa da fila SQS
	if cfg.Store.ReloadQueue != "" && !strings.HasPrefix(cfg.Store.ReloadQueue, "https://") {
		return fmt.Errorf("reload_queue deve ser a URL da fila SQS: '%s'", cfg.Store.ReloadQueue)
	}

	return nil
}
