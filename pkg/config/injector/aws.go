package injector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/raywall/procurement-mock/pkg/cloud"
)

// SSMClient é o subconjunto do cliente SSM usado na interpolação (permite Mocking).
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretsClient é o subconjunto do Secrets Manager usado na interpolação.
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// getParameter busca o valor no Parameter Store (sempre com decriptação).
func (i *Injector) getParameter(ctx context.Context, path string) (string, error) {
	client := i.ssm
	if client == nil {
		cfg, err := cloud.AWSConfig(ctx, i.region)
		if err != nil {
			return "", err
		}
		client = ssm.NewFromConfig(cfg)
	}
	return getParameterInternal(ctx, client, path)
}

func getParameterInternal(ctx context.Context, client SSMClient, path string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter (%s): %w", path, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parâmetro SSM sem valor: %s", path)
	}
	return *out.Parameter.Value, nil
}

// getSecret busca o segredo. Com "id#campo" o segredo é tratado como JSON e
// apenas o campo é retornado.
func (i *Injector) getSecret(ctx context.Context, ref string) (string, error) {
	client := i.secrets
	if client == nil {
		cfg, err := cloud.AWSConfig(ctx, i.region)
		if err != nil {
			return "", err
		}
		client = secretsmanager.NewFromConfig(cfg)
	}
	return getSecretInternal(ctx, client, ref)
}

func getSecretInternal(ctx context.Context, client SecretsClient, ref string) (string, error) {
	secretID, field, hasField := strings.Cut(ref, "#")

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager (%s): %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo sem SecretString: %s", secretID)
	}

	val := *out.SecretString
	if !hasField {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("segredo %s não é JSON: %w", secretID, err)
	}
	fieldVal, ok := data[field]
	if !ok {
		return "", fmt.Errorf("campo %q ausente no segredo %s", field, secretID)
	}
	return fmt.Sprintf("%v", fieldVal), nil
}
