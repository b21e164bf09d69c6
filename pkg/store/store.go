package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// IDField é o campo usado pelo roteador genérico para endereçar registros.
const IDField = "id"

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateID        = errors.New("duplicate id")
)

// Record é um registro plano, sem schema além dos campos presentes no seed.
type Record map[string]any

// Document é o layout persistido: nome da coleção -> registros.
type Document map[string][]Record

// Store guarda o Document e serializa o acesso a ele.
type Store struct {
	mu   sync.RWMutex
	doc  Document
	sink Sink
}

// Option configura o Store na criação.
type Option func(*Store)

// WithSink grava o snapshot no Sink após cada mutação.
func WithSink(s Sink) Option {
	return func(st *Store) {
		st.sink = s
	}
}

// New cria um Store a partir de um documento já decodificado.
// O documento é copiado; o chamador pode continuar usando o seu.
func New(doc Document, opts ...Option) *Store {
	st := &Store{doc: doc.clone()}
	if st.doc == nil {
		st.doc = make(Document)
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Reset substitui o documento inteiro (usado pelo hot reload).
func (s *Store) Reset(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.clone()
	if s.doc == nil {
		s.doc = make(Document)
	}
}

// Collections retorna os nomes das coleções em ordem alfabética.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.doc))
	for name := range s.doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has informa se a coleção existe no documento.
func (s *Store) Has(collection string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.doc[collection]
	return ok
}

// List retorna cópias de todos os registros da coleção, na ordem do documento.
func (s *Store) List(collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.doc[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out, nil
}

// Get busca um registro pelo campo "id".
func (s *Store) Get(collection string, id any) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.doc[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	if i := indexOf(records, IDField, id); i >= 0 {
		return records[i].Clone(), nil
	}
	return nil, ErrNotFound
}

// Insert adiciona o registro ao final da coleção, criando-a se necessário.
// Nenhum id é atribuído: o registro é gravado como o chamador enviou.
func (s *Store) Insert(collection string, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := rec[IDField]; ok && indexOf(s.doc[collection], IDField, id) >= 0 {
		return nil, ErrDuplicateID
	}
	current := s.doc[collection]
	stored := rec.Clone()
	next := make([]Record, len(current), len(current)+1)
	copy(next, current)

	if err := s.commitLocked(collection, append(next, stored)); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Replace troca o registro inteiro, preservando o id do caminho.
func (s *Store) Replace(collection string, id any, rec Record) (Record, error) {
	return s.update(collection, id, func(current Record) Record {
		next := rec.Clone()
		next[IDField] = current[IDField]
		return next
	})
}

// Patch mescla os campos informados no registro existente.
func (s *Store) Patch(collection string, id any, fields Record) (Record, error) {
	return s.update(collection, id, func(current Record) Record {
		next := current.Clone()
		for k, v := range fields {
			if k == IDField {
				continue
			}
			next[k] = v
		}
		return next
	})
}

// Delete remove o registro pelo id.
func (s *Store) Delete(collection string, id any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.doc[collection]
	if !ok {
		return ErrCollectionNotFound
	}
	i := indexOf(records, IDField, id)
	if i < 0 {
		return ErrNotFound
	}
	return s.commitLocked(collection, append(records[:i:i], records[i+1:]...))
}

// Snapshot retorna uma cópia completa do documento.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.clone()
}

// FindByID implementa Repository.
func (s *Store) FindByID(_ context.Context, collection, keyField string, id any) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(collection, keyField, id)
}

// ListWhere implementa Repository. Coleção ausente equivale a coleção vazia.
func (s *Store) ListWhere(_ context.Context, collection string, pred Predicate) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(collection, pred)
}

// View executa fn com o lock de leitura mantido durante toda a chamada.
// Todas as leituras feitas pelo Repository recebido veem a mesma versão do
// documento; fn não deve chamar métodos de escrita do Store.
func (s *Store) View(_ context.Context, fn func(Repository)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(lockedView{s: s})
}

func (s *Store) findLocked(collection, keyField string, id any) (Record, bool) {
	if i := indexOf(s.doc[collection], keyField, id); i >= 0 {
		return s.doc[collection][i].Clone(), true
	}
	return nil, false
}

func (s *Store) listLocked(collection string, pred Predicate) []Record {
	out := make([]Record, 0)
	for _, rec := range s.doc[collection] {
		if pred == nil || pred(rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// lockedView lê s.doc sem adquirir o lock; só é válido dentro de View.
type lockedView struct {
	s *Store
}

func (v lockedView) FindByID(_ context.Context, collection, keyField string, id any) (Record, bool) {
	return v.s.findLocked(collection, keyField, id)
}

func (v lockedView) ListWhere(_ context.Context, collection string, pred Predicate) []Record {
	return v.s.listLocked(collection, pred)
}

func (s *Store) update(collection string, id any, fn func(Record) Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.doc[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	i := indexOf(records, IDField, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	next := make([]Record, len(records))
	copy(next, records)
	next[i] = fn(records[i])

	if err := s.commitLocked(collection, next); err != nil {
		return nil, err
	}
	return next[i].Clone(), nil
}

// commitLocked grava o documento candidato no Sink e só então o adota.
// Se o Sink falhar, s.doc permanece como estava. Exige o lock de escrita.
func (s *Store) commitLocked(collection string, records []Record) error {
	if s.sink == nil {
		s.doc[collection] = records
		return nil
	}

	candidate := make(Document, len(s.doc)+1)
	for name, recs := range s.doc {
		candidate[name] = recs
	}
	candidate[collection] = records

	if err := s.sink.Write(candidate); err != nil {
		return fmt.Errorf("falha ao persistir documento: %w", err)
	}
	s.doc = candidate
	return nil
}

func indexOf(records []Record, field string, id any) int {
	want, ok := CanonicalID(id)
	if !ok {
		return -1
	}
	for i, rec := range records {
		if got, ok := CanonicalID(rec[field]); ok && got == want {
			return i
		}
	}
	return -1
}

// Clone faz uma cópia profunda do registro (mapas e listas aninhados).
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func (d Document) clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for name, records := range d {
		cp := make([]Record, len(records))
		for i, rec := range records {
			cp[i] = rec.Clone()
		}
		out[name] = cp
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = cloneValue(val)
		}
		return m
	case Record:
		return x.Clone()
	case []any:
		l := make([]any, len(x))
		for i, val := range x {
			l[i] = cloneValue(val)
		}
		return l
	default:
		return v
	}
}
