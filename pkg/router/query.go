package router

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/raywall/procurement-mock/pkg/jsonpath"
	"github.com/raywall/procurement-mock/pkg/rules"
	"github.com/raywall/procurement-mock/pkg/store"
)

// DefaultPageLimit é o tamanho de página quando _page vem sem _limit.
const DefaultPageLimit = 10

// Operator é o sufixo de um filtro de campo.
type Operator string

const (
	OpEq   Operator = ""
	OpNe   Operator = "_ne"
	OpGte  Operator = "_gte"
	OpLte  Operator = "_lte"
	OpLike Operator = "_like"
)

// Filter é uma condição sobre um campo (aceita caminhos como "vendor.name").
// Com vários valores, eq casa com qualquer um e ne exige que nenhum case.
type Filter struct {
	Field  string
	Op     Operator
	Values []string

	patterns []*regexp.Regexp
}

// SortKey é um critério de ordenação.
type SortKey struct {
	Field string
	Desc  bool
}

// Query é a gramática de consulta do json-server aplicada às listas.
type Query struct {
	Filters []Filter
	Search  string // q
	Expr    string // _filter, expressão CEL sobre record
	Sort    []SortKey

	Page  int // 0 quando ausente
	Limit int // 0 quando ausente
	Start int
	End   int // 0 quando ausente
}

// Paginated informa se a resposta usa _page.
func (q Query) Paginated() bool { return q.Page > 0 }

// Sliced informa se a resposta usa _start, _end ou _limit sem _page.
func (q Query) Sliced() bool { return !q.Paginated() && (q.Start > 0 || q.End > 0 || q.Limit > 0) }

// ParseQuery interpreta os parâmetros da URL. Parâmetros começando com '_'
// que não são reconhecidos são ignorados.
func ParseQuery(values url.Values) (Query, error) {
	var q Query

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		last := vals[len(vals)-1]

		switch key {
		case "q":
			q.Search = last
			continue
		case "_filter":
			q.Expr = last
			continue
		case "_page", "_limit", "_start", "_end":
			n, err := strconv.Atoi(last)
			if err != nil || n < 0 {
				return Query{}, fmt.Errorf("parâmetro %s inválido: %q", key, last)
			}
			switch key {
			case "_page":
				q.Page = n
			case "_limit":
				q.Limit = n
			case "_start":
				q.Start = n
			case "_end":
				q.End = n
			}
			continue
		}
		if strings.HasPrefix(key, "_") {
			continue
		}

		f := Filter{Field: key, Op: OpEq, Values: vals}
		for _, op := range []Operator{OpNe, OpGte, OpLte, OpLike} {
			if field := strings.TrimSuffix(key, string(op)); field != key && field != "" {
				f.Field, f.Op = field, op
				break
			}
		}
		if f.Op == OpLike {
			for _, v := range vals {
				re, err := regexp.Compile("(?i)" + v)
				if err != nil {
					return Query{}, fmt.Errorf("expressão inválida em %s: %w", key, err)
				}
				f.patterns = append(f.patterns, re)
			}
		}
		q.Filters = append(q.Filters, f)
	}

	if sortParam := values.Get("_sort"); sortParam != "" {
		orders := splitList(values.Get("_order"))
		for i, field := range splitList(sortParam) {
			key := SortKey{Field: field}
			if i < len(orders) {
				key.Desc = strings.EqualFold(orders[i], "desc")
			}
			q.Sort = append(q.Sort, key)
		}
	}
	return q, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Apply filtra e ordena os registros. O recorte de página fica a cargo de Window.
func (q Query) Apply(records []store.Record, rm *rules.RuleManager) ([]store.Record, error) {
	if q.Expr != "" {
		if rm == nil {
			return nil, fmt.Errorf("_filter não suportado")
		}
		if _, err := rm.Compile(q.Expr); err != nil {
			return nil, err
		}
	}

	out := make([]store.Record, 0, len(records))
	for _, rec := range records {
		if q.matches(rec, rm) {
			out = append(out, rec)
		}
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, key := range q.Sort {
				a, _ := jsonpath.Lookup(map[string]interface{}(out[i]), key.Field)
				b, _ := jsonpath.Lookup(map[string]interface{}(out[j]), key.Field)
				c := compare(a, b)
				if c == 0 {
					continue
				}
				if key.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	return out, nil
}

// Window devolve os índices [from, to) a recortar de uma lista com total itens.
func (q Query) Window(total int) (from, to int) {
	switch {
	case q.Paginated():
		limit := q.Limit
		if limit == 0 {
			limit = DefaultPageLimit
		}
		from = (q.Page - 1) * limit
		to = from + limit
	case q.End > 0:
		from, to = q.Start, q.End
	case q.Limit > 0:
		from, to = q.Start, q.Start+q.Limit
	default:
		from, to = q.Start, total
	}
	if from > total {
		from = total
	}
	if to > total {
		to = total
	}
	if to < from {
		to = from
	}
	return from, to
}

func (q Query) matches(rec store.Record, rm *rules.RuleManager) bool {
	data := map[string]interface{}(rec)

	for _, f := range q.Filters {
		v, found := jsonpath.Lookup(data, f.Field)
		if !f.matches(v, found) {
			return false
		}
	}

	if q.Search != "" && !containsText(data, strings.ToLower(q.Search)) {
		return false
	}

	if q.Expr != "" {
		ok, err := rm.EvaluateBool(q.Expr, data)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func (f Filter) matches(v interface{}, found bool) bool {
	switch f.Op {
	case OpEq:
		if !found {
			return false
		}
		for _, want := range f.Values {
			if equalValue(v, want) {
				return true
			}
		}
		return false
	case OpNe:
		for _, want := range f.Values {
			if found && equalValue(v, want) {
				return false
			}
		}
		return true
	case OpGte, OpLte:
		if !found || v == nil {
			return false
		}
		for _, bound := range f.Values {
			c := compare(v, bound)
			if (f.Op == OpGte && c < 0) || (f.Op == OpLte && c > 0) {
				return false
			}
		}
		return true
	case OpLike:
		if !found || v == nil {
			return false
		}
		s := text(v)
		for _, re := range f.patterns {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}
	return false
}

// equalValue compara o valor do registro com o texto da query.
// Números são comparados pelo valor, então "10" casa com 10 e 10.0.
func equalValue(v interface{}, want string) bool {
	if a, ok := jsonpath.ToFloat(v); ok {
		if b, err := strconv.ParseFloat(want, 64); err == nil {
			return a == b
		}
	}
	return text(v) == want
}

// compare ordena numericamente quando ambos os lados são números e
// lexicograficamente no resto. nil fica sempre no fim.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if x, ok := jsonpath.ToFloat(a); ok {
		if y, ok := jsonpath.ToFloat(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(text(a), text(b))
}

func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// containsText procura needle (já em minúsculas) em qualquer string do valor.
func containsText(v interface{}, needle string) bool {
	switch x := v.(type) {
	case map[string]interface{}:
		for _, child := range x {
			if containsText(child, needle) {
				return true
			}
		}
	case store.Record:
		return containsText(map[string]interface{}(x), needle)
	case []interface{}:
		for _, child := range x {
			if containsText(child, needle) {
				return true
			}
		}
	case string:
		return strings.Contains(strings.ToLower(x), needle)
	case json.Number:
		return strings.Contains(x.String(), needle)
	}
	return false
}
