// Package injector resolve valores dinâmicos na configuração já decodificada.
//
// Duas formas são suportadas:
//   - tags `env:"NOME"` (com `envDefault:"valor"` opcional) em campos string, int, bool e duration;
//   - interpolação `${env.NOME}`, `${ssm./caminho}` e `${secret.id}` (ou `${secret.id#campo}`)
//     em qualquer string da estrutura, inclusive dentro de slices e mapas.
package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.API_KEY}, ${ssm./app/config}, ${secret.db_pass}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

var durationType = reflect.TypeOf(time.Duration(0))

// Injector aplica as substituições. O valor zero usa os clientes AWS reais.
type Injector struct {
	region  string
	ssm     SSMClient
	secrets SecretsClient
	lookup  func(string) (string, bool)
}

// Option configura o Injector.
type Option func(*Injector)

// WithRegion define a região AWS usada para SSM e Secrets Manager.
func WithRegion(region string) Option {
	return func(i *Injector) { i.region = region }
}

// WithSSMClient troca o cliente SSM (testes ou endpoints customizados).
func WithSSMClient(c SSMClient) Option {
	return func(i *Injector) { i.ssm = c }
}

// WithSecretsClient troca o cliente do Secrets Manager.
func WithSecretsClient(c SecretsClient) Option {
	return func(i *Injector) { i.secrets = c }
}

// WithLookup troca a fonte de variáveis de ambiente.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(i *Injector) { i.lookup = fn }
}

func New(opts ...Option) *Injector {
	i := &Injector{region: os.Getenv("AWS_REGION"), lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for k := 0; k < t.NumField(); k++ {
			field := t.Field(k)
			value := v.Field(k)
			if !field.IsExported() {
				continue
			}

			if err := i.injectRecursive(ctx, value); err != nil {
				return err
			}

			// Tags têm a palavra final sobre o conteúdo do arquivo
			if err := i.processStructTags(field, value); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		newValue, err := i.interpolateString(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(newValue)

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// processStructTags aplica env e envDefault. envDefault só preenche campos zerados.
func (i *Injector) processStructTags(field reflect.StructField, value reflect.Value) error {
	if !value.CanSet() {
		return nil
	}
	name := field.Tag.Get("env")
	if name == "" {
		return nil
	}
	if val, exists := i.lookup(name); exists && val != "" {
		if err := setField(value, val); err != nil {
			return fmt.Errorf("variável %s inválida para o campo %s: %w", name, field.Name, err)
		}
		return nil
	}
	if def, ok := field.Tag.Lookup("envDefault"); ok && value.IsZero() {
		return setField(value, def)
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if err != nil {
			return match
		}
		sub := pattern.FindStringSubmatch(match)
		val, resolveErr := i.fetchValue(ctx, sub[1], sub[2])
		if resolveErr != nil {
			err = resolveErr
			return match
		}
		return val
	})

	return result, err
}

// injectMap lida com mapas dinâmicos (map[string]string e map[string]interface{}).
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.interpolateString(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = reflect.ValueOf(newVal).Convert(v.Type().Elem())
		case reflect.Map:
			if elem.Type().Key().Kind() == reflect.String {
				if err := i.injectMap(ctx, elem); err != nil {
					return err
				}
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val)
	}
	return nil
}

// fetchValue centraliza a busca de dados
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		val, _ := i.lookup(key)
		return val, nil
	case "ssm":
		return i.getParameter(ctx, key)
	case "secret":
		return i.getSecret(ctx, key)
	}
	return "", fmt.Errorf("fonte de interpolação desconhecida: %s", sourceType)
}

func setField(field reflect.Value, val string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("tipo não suportado: %s", field.Kind())
	}
	return nil
}
