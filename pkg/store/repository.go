package store

import "context"

// Predicate seleciona registros em ListWhere.
type Predicate func(Record) bool

// Repository é a capacidade de leitura emprestada pelas junções.
// A camada de enriquecimento depende apenas desta interface, então o Store em
// memória pode ser trocado por um banco real sem tocar na lógica de junção.
type Repository interface {
	FindByID(ctx context.Context, collection, keyField string, id any) (Record, bool)
	ListWhere(ctx context.Context, collection string, pred Predicate) []Record
}

// FieldEquals é o predicado de chave estrangeira: field == id na forma canônica.
func FieldEquals(field string, id any) Predicate {
	return func(rec Record) bool {
		return SameID(rec[field], id)
	}
}

var _ Repository = (*Store)(nil)

// Viewer oferece uma visão consistente: todas as leituras feitas dentro de fn
// observam a mesma versão do documento.
type Viewer interface {
	View(ctx context.Context, fn func(Repository))
}

var _ Viewer = (*Store)(nil)
