package injector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type MockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

type TestConfig struct {
	Name        string        `yaml:"name" env:"SERVICE_NAME"` // Caso 1: Tag
	APIKey      string        `yaml:"api_key"`                 // Caso 2: Interpolação String "${env.KEY}"
	Description string        `yaml:"description"`             // Caso 3: Texto misto
	Port        int           `env:"PORT" envDefault:"3000"`
	Persist     bool          `env:"PERSIST"`
	Timeout     time.Duration `env:"TIMEOUT"`
	Meta        map[string]interface{}
	Labels      map[string]string
	Nested      *NestedConfig
	Rules       []NestedConfig
}

type NestedConfig struct {
	URL string
}

func env(vars map[string]string) Option {
	return WithLookup(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
}

func TestInjector_Inject_Environment(t *testing.T) {
	inj := New(env(map[string]string{
		"SERVICE_NAME": "OrderService",
		"API_KEY":      "12345-abcde",
		"REGION":       "us-east-1",
		"DB_HOST":      "localhost",
		"PERSIST":      "true",
		"TIMEOUT":      "2s",
	}))

	target := &TestConfig{
		Name:        "Placeholder", // Deve ser sobrescrito pela tag
		APIKey:      "${env.API_KEY}",
		Description: "Service running in ${env.REGION}",
		Meta: map[string]interface{}{
			"db_host": "${env.DB_HOST}",
			"timeout": 5000, // Inteiro não deve ser tocado
		},
		Labels: map[string]string{"region": "${env.REGION}"},
		Nested: &NestedConfig{URL: "https://${env.REGION}.api.com"},
		Rules:  []NestedConfig{{URL: "/${env.REGION}/*"}},
	}

	require.NoError(t, inj.Inject(context.Background(), target))

	assert.Equal(t, "OrderService", target.Name, "Tag env não funcionou")
	assert.Equal(t, "12345-abcde", target.APIKey, "Interpolação direta falhou")
	assert.Equal(t, "Service running in us-east-1", target.Description, "Interpolação mista falhou")
	assert.Equal(t, 3000, target.Port, "envDefault não aplicado")
	assert.True(t, target.Persist)
	assert.Equal(t, 2*time.Second, target.Timeout)
	assert.Equal(t, "localhost", target.Meta["db_host"], "Interpolação em mapa falhou")
	assert.Equal(t, 5000, target.Meta["timeout"])
	assert.Equal(t, "us-east-1", target.Labels["region"])
	assert.Equal(t, "https://us-east-1.api.com", target.Nested.URL, "Interpolação aninhada falhou")
	assert.Equal(t, "/us-east-1/*", target.Rules[0].URL)
}

func TestInjector_EnvDefaultKeepsFileValue(t *testing.T) {
	inj := New(env(map[string]string{}))
	target := &TestConfig{Port: 8080}

	require.NoError(t, inj.Inject(context.Background(), target))
	assert.Equal(t, 8080, target.Port)
}

func TestInjector_InvalidTagValue(t *testing.T) {
	inj := New(env(map[string]string{"PORT": "abc"}))

	err := inj.Inject(context.Background(), &TestConfig{})
	assert.ErrorContains(t, err, "PORT")
}

func TestInjector_NotPointer(t *testing.T) {
	err := New().Inject(context.Background(), TestConfig{})
	assert.Error(t, err)
}

func TestInjector_SSMAndSecrets(t *testing.T) {
	ssmMock := &MockSSM{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			assert.Equal(t, "/mock/queue", *params.Name)
			assert.True(t, *params.WithDecryption)
			return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String("https://sqs/queue")}}, nil
		},
	}
	secretsMock := &MockSecrets{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			assert.Equal(t, "mock/db", *params.SecretId)
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"password":"s3cr3t","port":5432}`)}, nil
		},
	}

	inj := New(env(nil), WithSSMClient(ssmMock), WithSecretsClient(secretsMock))
	target := &TestConfig{
		APIKey:      "${ssm./mock/queue}",
		Description: "postgres://app:${secret.mock/db#password}@db:${secret.mock/db#port}/mock",
	}

	require.NoError(t, inj.Inject(context.Background(), target))
	assert.Equal(t, "https://sqs/queue", target.APIKey)
	assert.Equal(t, "postgres://app:s3cr3t@db:5432/mock", target.Description)
}

func TestInjector_ResolveErrors(t *testing.T) {
	ssmMock := &MockSSM{
		GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	secretsMock := &MockSecrets{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return &secretsmanager.GetSecretValueOutput{SecretString: aws.String("plain")}, nil
		},
	}
	inj := New(env(nil), WithSSMClient(ssmMock), WithSecretsClient(secretsMock))

	err := inj.Inject(context.Background(), &TestConfig{APIKey: "${ssm./x}"})
	assert.ErrorContains(t, err, "access denied")

	err = inj.Inject(context.Background(), &TestConfig{APIKey: "${secret.x#field}"})
	assert.ErrorContains(t, err, "não é JSON")

	target := &TestConfig{APIKey: "${secret.x}"}
	require.NoError(t, inj.Inject(context.Background(), target))
	assert.Equal(t, "plain", target.APIKey)
}
