package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lib/pq"
	"github.com/raywall/procurement-mock/pkg/cloud"
	"github.com/redis/go-redis/v9"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type RedisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SourceLoader lê o documento seed de múltiplas fontes (Local, S3, DynamoDB, Redis, Postgres).
type SourceLoader struct {
	region string
}

// NewSourceLoader cria o loader; region é usada pelos clientes AWS.
func NewSourceLoader(region string) *SourceLoader {
	return &SourceLoader{region: region}
}

// Load detecta o esquema da fonte e decodifica o documento.
func (sl *SourceLoader) Load(ctx context.Context, source string) (Document, error) {
	var (
		raw    []byte
		format = FormatFromPath(strings.SplitN(source, "?", 2)[0])
		err    error
	)

	switch {
	case strings.HasPrefix(source, "s3://"):
		cfg, cfgErr := cloud.AWSConfig(ctx, sl.region)
		if cfgErr != nil {
			return nil, fmt.Errorf("erro config aws: %w", cfgErr)
		}
		raw, err = sl.loadFromS3Internal(ctx, s3.NewFromConfig(cfg), source)

	case strings.HasPrefix(source, "dynamodb://"):
		cfg, cfgErr := cloud.AWSConfig(ctx, sl.region)
		if cfgErr != nil {
			return nil, fmt.Errorf("erro config aws: %w", cfgErr)
		}
		raw, err = sl.loadFromDynamoDBInternal(ctx, dynamodb.NewFromConfig(cfg), source)
		format = FormatJSON

	case strings.HasPrefix(source, "redis://"):
		client, key, clientErr := newRedisClient(source)
		if clientErr != nil {
			return nil, clientErr
		}
		defer client.Close()
		raw, err = sl.loadFromRedisInternal(ctx, client, key)
		format = FormatJSON

	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		dsn, table, dsnErr := splitSQLSource(source)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, openErr := sql.Open("postgres", dsn)
		if openErr != nil {
			return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", openErr)
		}
		defer db.Close()
		doc, sqlErr := sl.loadFromSQLInternal(ctx, db, table)
		if sqlErr != nil {
			return nil, fmt.Errorf("falha leitura do documento (%s): %w", redact(source), sqlErr)
		}
		return doc, nil

	default:
		raw, err = sl.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura do documento (%s): %w", redact(source), err)
	}
	return Decode(raw, format)
}

// --- Estratégias de carregamento (métodos internos testáveis) ---

func (sl *SourceLoader) loadFromFile(path string) ([]byte, error) {
	// Suporta tanto "file://db.json" quanto apenas "db.json"
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (sl *SourceLoader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// loadFromDynamoDBInternal lê dynamodb://tabela/chave?col=document&pk=id.
func (sl *SourceLoader) loadFromDynamoDBInternal(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "document" // Coluna padrão onde o JSON está salvo
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	proj, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(colName))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("erro ao montar projeção: %w", err)
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                &tableName,
		Key:                      map[string]types.AttributeValue{pkName: &types.AttributeValueMemberS{Value: pkValue}},
		ProjectionExpression:     proj.Projection(),
		ExpressionAttributeNames: proj.Names(),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}
	return []byte(content), nil
}

func (sl *SourceLoader) loadFromRedisInternal(ctx context.Context, client RedisGetter, key string) ([]byte, error) {
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("chave '%s' não encontrada no Redis", key)
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// loadFromSQLInternal monta o documento a partir de linhas (collection, record)
// mantendo a ordem de inserção de cada coleção.
func (sl *SourceLoader) loadFromSQLInternal(ctx context.Context, db *sql.DB, table string) (Document, error) {
	query := fmt.Sprintf("SELECT collection, record FROM %s ORDER BY position", pq.QuoteIdentifier(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	defer rows.Close()

	doc := make(Document)
	for rows.Next() {
		var (
			collection string
			payload    []byte
		)
		if err := rows.Scan(&collection, &payload); err != nil {
			return nil, err
		}

		var rec Record
		dec := json.NewDecoder(strings.NewReader(string(payload)))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("registro inválido em '%s': %w", collection, err)
		}
		doc[collection] = append(doc[collection], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// newRedisClient interpreta redis://[:senha@]host:porta/chave?db=0.
func newRedisClient(uri string) (*redis.Client, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("URL Redis inválida: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, "", fmt.Errorf("URL Redis sem chave: %s", redact(uri))
	}

	opts := &redis.Options{Addr: u.Host}
	if u.User != nil {
		opts.Username = u.User.Username()
		opts.Password, _ = u.User.Password()
	}
	if db := u.Query().Get("db"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, "", fmt.Errorf("db Redis inválido '%s': %w", db, err)
		}
		opts.DB = n
	}
	return redis.NewClient(opts), key, nil
}

// splitSQLSource separa o parâmetro "table" do DSN repassado ao driver.
func splitSQLSource(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("DSN Postgres inválido: %w", err)
	}
	q := u.Query()
	table := q.Get("table")
	if table == "" {
		table = "mock_records"
	}
	q.Del("table")
	u.RawQuery = q.Encode()
	return u.String(), table, nil
}

// redact remove credenciais da URI antes de ela aparecer em erros e logs.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
