// Package rewrite normaliza as variantes de URL aceitas pelo backend para o
// caminho canônico consultado pelo interceptor e pelo roteador genérico.
//
// As regras seguem a sintaxe do routes.json do json-server:
//
//	"/api/*"           -> "/$1"                 (* captura qualquer sufixo)
//	"/orders/:id/show" -> "/sales-order-headers/:id"
//
// A tabela é ordenada e a primeira regra que casar vence.
package rewrite

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Rule é uma entrada declarativa da tabela de reescrita.
type Rule struct {
	From string `yaml:"from" json:"from" validate:"required"`
	To   string `yaml:"to" json:"to" validate:"required"`
}

// DefaultRules canonicaliza os aliases históricos de sales-orders e remove os
// prefixos /api/v1, /api e /v1 dos demais caminhos. O alias só casa em limite
// de segmento: /sales-orders-archive não vira /sales-order-headers-archive.
func DefaultRules() []Rule {
	var rules []Rule
	for _, prefix := range []string{"/api/v1", "/api", "/v1", ""} {
		rules = append(rules,
			Rule{From: prefix + "/sales-orders", To: "/sales-order-headers"},
			Rule{From: prefix + "/sales-orders/*", To: "/sales-order-headers/$1"},
		)
	}
	return append(rules,
		Rule{From: "/api/v1/*", To: "/$1"},
		Rule{From: "/api/*", To: "/$1"},
		Rule{From: "/v1/*", To: "/$1"},
	)
}

var tokenRegex = regexp.MustCompile(`\*|:[A-Za-z_][A-Za-z0-9_]*`)

type compiled struct {
	rule  Rule
	re    *regexp.Regexp
	names []string // nome de cada grupo; vazio para '*'
}

// Rewriter aplica uma tabela de regras compilada. É seguro para uso concorrente.
type Rewriter struct {
	rules []compiled
}

// New compila a tabela. Regras com From fora do formato /... são rejeitadas.
func New(rules []Rule) (*Rewriter, error) {
	rw := &Rewriter{rules: make([]compiled, 0, len(rules))}
	for i, r := range rules {
		c, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("regra de reescrita %d (%s): %w", i, r.From, err)
		}
		rw.rules = append(rw.rules, c)
	}
	return rw, nil
}

func compile(r Rule) (compiled, error) {
	if !strings.HasPrefix(r.From, "/") {
		return compiled{}, fmt.Errorf("o padrão deve começar com '/'")
	}

	var (
		pattern strings.Builder
		names   []string
		last    int
	)
	pattern.WriteString("^")
	for _, loc := range tokenRegex.FindAllStringIndex(r.From, -1) {
		pattern.WriteString(regexp.QuoteMeta(r.From[last:loc[0]]))
		token := r.From[loc[0]:loc[1]]
		if token == "*" {
			pattern.WriteString("(.*)")
			names = append(names, "")
		} else {
			pattern.WriteString("([^/]+)")
			names = append(names, token[1:])
		}
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(r.From[last:]))
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return compiled{}, err
	}
	return compiled{rule: r, re: re, names: names}, nil
}

// Rules retorna a tabela na ordem de avaliação.
func (rw *Rewriter) Rules() []Rule {
	out := make([]Rule, len(rw.rules))
	for i, c := range rw.rules {
		out[i] = c.rule
	}
	return out
}

// Rewrite devolve o caminho canônico e se alguma regra casou.
func (rw *Rewriter) Rewrite(path string) (string, bool) {
	for _, c := range rw.rules {
		m := c.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		return expand(c, m[1:]), true
	}
	return path, false
}

// expand substitui $N e :name no destino. Índices altos primeiro para $10 não virar $1+"0".
func expand(c compiled, groups []string) string {
	out := c.rule.To
	for i := len(groups); i >= 1; i-- {
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(i), groups[i-1])
	}
	for i, name := range c.names {
		if name != "" {
			out = strings.ReplaceAll(out, ":"+name, groups[i])
		}
	}
	if out == "" {
		out = "/"
	}
	return out
}

type originalPathKey struct{}

// OriginalPath retorna o caminho recebido antes da reescrita.
func OriginalPath(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(originalPathKey{}).(string)
	return p, ok
}

// Middleware reescreve r.URL.Path preservando a query string.
func (rw *Rewriter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rewritten, ok := rw.Rewrite(r.URL.Path)
		if !ok || rewritten == r.URL.Path {
			next.ServeHTTP(w, r)
			return
		}

		zerolog.Ctx(r.Context()).Debug().
			Str("from", r.URL.Path).
			Str("to", rewritten).
			Msg("caminho reescrito")

		ctx := context.WithValue(r.Context(), originalPathKey{}, r.URL.Path)
		u := *r.URL
		u.Path = rewritten
		u.RawPath = ""

		r2 := r.WithContext(ctx)
		r2.URL = &u
		r2.RequestURI = u.RequestURI()
		next.ServeHTTP(w, r2)
	})
}
