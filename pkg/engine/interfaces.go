package engine

import (
	"context"

	"github.com/raywall/procurement-mock/pkg/store"
)

// DocumentLoader é responsável por carregar e decodificar o documento seed.
// Ele abstrai a origem (Sistema de arquivos, S3, DynamoDB, Redis, Postgres).
type DocumentLoader interface {
	// Load lê o documento a partir de uma origem.
	Load(ctx context.Context, source string) (store.Document, error)
}

var _ DocumentLoader = (*store.SourceLoader)(nil)
