// Package interceptor responde, para um conjunto fechado de rotas de leitura,
// com os registros desnormalizados montados pelo pacote enrichment.
//
// A tabela de rotas é avaliada em ordem e a primeira que casar vence. Uma
// requisição que não casa com nenhuma rota segue intacta para o próximo
// handler (o roteador genérico de coleções).
package interceptor

import (
	"context"
	"net/http"
	"regexp"

	"github.com/raywall/procurement-mock/pkg/enrichment"
	"github.com/raywall/procurement-mock/pkg/metrics"
	"github.com/raywall/procurement-mock/pkg/responder"
	"github.com/rs/zerolog"
)

// Mensagens de erro das buscas de registro raiz.
const (
	MsgPurchaseOrderNotFound = "Purchase order not found"
	MsgSalesOrderNotFound    = "Sales order not found"
)

// Nomes das rotas, usados em logs e na tag route das métricas.
const (
	RoutePurchaseOrderDetails = "purchase-order-details"
	RoutePurchaseOrder        = "purchase-order"
	RoutePurchaseOrders       = "purchase-orders"
	RouteSalesOrderDetails    = "sales-order-details"
	RouteSalesOrder           = "sales-order"
	RouteSalesOrders          = "sales-orders"
)

// Result é a resposta de uma rota: status HTTP e corpo serializável.
type Result struct {
	Status int
	Body   interface{}
}

// HandleFunc executa uma rota; id é o segmento capturado (vazio nas listas).
type HandleFunc func(ctx context.Context, id string) Result

// Route descreve uma entrada da tabela de despacho.
// QueryToRouter marca as rotas que o roteador genérico também sabe servir: com
// query string elas seguem para ele, que aplica filtros e paginação. As rotas
// /details não existem no roteador e são sempre atendidas aqui.
type Route struct {
	Name          string
	Method        string
	Pattern       *regexp.Regexp
	QueryToRouter bool
	Handle        HandleFunc
}

// Interceptor despacha as rotas de junção sobre um Enricher.
type Interceptor struct {
	routes []Route
}

// New monta a tabela padrão sobre o enricher informado.
func New(e *enrichment.Enricher) *Interceptor {
	return &Interceptor{routes: Routes(e)}
}

// Routes retorna a tabela na ordem de prioridade. Os caminhos são os canônicos,
// já normalizados pelo pacote rewrite.
func Routes(e *enrichment.Enricher) []Route {
	return []Route{
		{
			Name:          RoutePurchaseOrderDetails,
			Method:        http.MethodGet,
			Pattern:       regexp.MustCompile(`^/purchase-orders/([^/]+)/details/?$`),
			Handle: func(ctx context.Context, id string) Result {
				return Result{http.StatusOK, e.PurchaseOrderDetails(ctx, id)}
			},
		},
		{
			Name:          RoutePurchaseOrder,
			Method:        http.MethodGet,
			Pattern:       regexp.MustCompile(`^/purchase-orders/([^/]+)/?$`),
			QueryToRouter: true,
			Handle: func(ctx context.Context, id string) Result {
				po, ok := e.PurchaseOrder(ctx, id)
				if !ok {
					return Result{http.StatusNotFound, responder.ErrorBody{Error: MsgPurchaseOrderNotFound}}
				}
				return Result{http.StatusOK, po}
			},
		},
		{
			Name:          RoutePurchaseOrders,
			Method:        http.MethodGet,
			Pattern:       regexp.MustCompile(`^/purchase-orders/?$`),
			QueryToRouter: true,
			Handle: func(ctx context.Context, _ string) Result {
				return Result{http.StatusOK, e.PurchaseOrders(ctx)}
			},
		},
		{
			Name:          RouteSalesOrderDetails,
			Method:        http.MethodGet,
			Pattern:       regexp.MustCompile(`^/sales-order-headers/([^/]+)/details/?$`),
			Handle: func(ctx context.Context, id string) Result {
				return Result{http.StatusOK, e.SalesOrderDetails(ctx, id)}
			},
		},
		{
			Name:          RouteSalesOrder,
			Method:        http.MethodGet,
			Pattern:       regexp.MustCompile(`^/sales-order-headers/([^/]+)/?$`),
			QueryToRouter: true,
			Handle: func(ctx context.Context, id string) Result {
				so, ok := e.SalesOrder(ctx, id)
				if !ok {
					return Result{http.StatusNotFound, responder.ErrorBody{Error: MsgSalesOrderNotFound}}
				}
				return Result{http.StatusOK, so}
			},
		},
		{
			Name:          RouteSalesOrders,
			Method:        http.MethodGet,
			Pattern:       regexp.MustCompile(`^/sales-order-headers/?$`),
			QueryToRouter: true,
			Handle: func(ctx context.Context, _ string) Result {
				return Result{http.StatusOK, e.SalesOrders(ctx)}
			},
		},
	}
}

// Match procura a primeira rota para method e path. Não depende de HTTP.
func (i *Interceptor) Match(method, path string) (Route, string, bool) {
	for _, route := range i.routes {
		if route.Method != method {
			continue
		}
		m := route.Pattern.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		id := ""
		if len(m) > 1 {
			id = m[1]
		}
		return route, id, true
	}
	return Route{}, "", false
}

// Middleware atende as rotas de junção e delega o resto para next.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, id, ok := i.Match(r.Method, r.URL.Path)
		if !ok || (route.QueryToRouter && r.URL.RawQuery != "") {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		metrics.SetRoute(ctx, route.Name)

		res := route.Handle(ctx, id)
		zerolog.Ctx(ctx).Debug().
			Str("route", route.Name).
			Str("id", id).
			Int("status", res.Status).
			Msg("rota de junção atendida")

		responder.NoCache(w)
		responder.JSON(w, r, res.Status, res.Body)
	})
}
