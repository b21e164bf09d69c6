// Package router implementa o CRUD genérico de coleções no estilo json-server
// sobre o Store: toda coleção do documento ganha list, get, create, update e delete.
package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/raywall/procurement-mock/pkg/metrics"
	"github.com/raywall/procurement-mock/pkg/responder"
	"github.com/raywall/procurement-mock/pkg/rewrite"
	"github.com/raywall/procurement-mock/pkg/rules"
	"github.com/raywall/procurement-mock/pkg/store"
	"github.com/rs/zerolog"
)

// Nomes de rota para métricas.
const (
	RouteDB         = "db"
	RouteCollection = "collection"
	RouteRecord     = "record"
)

// Headers expostos ao browser nas listas paginadas.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderLink       = "Link"
)

// Router é o http.Handler do CRUD genérico.
type Router struct {
	store *store.Store
	rules *rules.RuleManager
	mux   *mux.Router
}

// New registra as rotas sobre o Store. rm pode ser nil, desabilitando _filter.
func New(st *store.Store, rm *rules.RuleManager) *Router {
	rt := &Router{store: st, rules: rm, mux: mux.NewRouter()}

	rt.mux.HandleFunc("/db", rt.handleDB).Methods(http.MethodGet)
	rt.mux.HandleFunc("/{collection}{slash:/?}", rt.handleList).Methods(http.MethodGet)
	rt.mux.HandleFunc("/{collection}{slash:/?}", rt.handleCreate).Methods(http.MethodPost)
	rt.mux.HandleFunc("/{collection}/{id}{slash:/?}", rt.handleGet).Methods(http.MethodGet)
	rt.mux.HandleFunc("/{collection}/{id}{slash:/?}", rt.handleReplace).Methods(http.MethodPut)
	rt.mux.HandleFunc("/{collection}/{id}{slash:/?}", rt.handlePatch).Methods(http.MethodPatch)
	rt.mux.HandleFunc("/{collection}/{id}{slash:/?}", rt.handleDelete).Methods(http.MethodDelete)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.Empty(w, r, http.StatusNotFound)
	})
	rt.mux.NotFoundHandler = notFound
	rt.mux.MethodNotAllowedHandler = notFound
	return rt
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

func (rt *Router) handleDB(w http.ResponseWriter, r *http.Request) {
	metrics.SetRoute(r.Context(), RouteDB)
	responder.JSON(w, r, http.StatusOK, rt.store.Snapshot())
}

func (rt *Router) handleList(w http.ResponseWriter, r *http.Request) {
	metrics.SetRoute(r.Context(), RouteCollection)
	collection := mux.Vars(r)["collection"]

	records, err := rt.store.List(collection)
	if err != nil {
		responder.Empty(w, r, http.StatusNotFound)
		return
	}

	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		responder.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	filtered, err := q.Apply(records, rt.rules)
	if err != nil {
		responder.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	total := len(filtered)
	from, to := q.Window(total)
	page := filtered[from:to]

	if q.Paginated() || q.Sliced() {
		w.Header().Set(HeaderTotalCount, strconv.Itoa(total))
		w.Header().Set("Access-Control-Expose-Headers", HeaderTotalCount+", "+HeaderLink)
	}
	if q.Paginated() {
		if link := pageLinks(r, q, total); link != "" {
			w.Header().Set(HeaderLink, link)
		}
	}

	responder.JSON(w, r, http.StatusOK, page)
}

func (rt *Router) handleGet(w http.ResponseWriter, r *http.Request) {
	metrics.SetRoute(r.Context(), RouteRecord)
	vars := mux.Vars(r)

	rec, err := rt.store.Get(vars["collection"], vars["id"])
	if err != nil {
		responder.Empty(w, r, http.StatusNotFound)
		return
	}
	responder.JSON(w, r, http.StatusOK, rec)
}

func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request) {
	metrics.SetRoute(r.Context(), RouteCollection)
	collection := mux.Vars(r)["collection"]

	if !rt.store.Has(collection) {
		responder.Empty(w, r, http.StatusNotFound)
		return
	}

	rec, err := decodeRecord(r.Body)
	if err != nil {
		responder.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := rt.store.Insert(collection, rec)
	if err != nil {
		rt.writeStoreError(w, r, err)
		return
	}
	responder.JSON(w, r, http.StatusCreated, created)
}

func (rt *Router) handleReplace(w http.ResponseWriter, r *http.Request) {
	rt.handleUpdate(w, r, rt.store.Replace)
}

func (rt *Router) handlePatch(w http.ResponseWriter, r *http.Request) {
	rt.handleUpdate(w, r, rt.store.Patch)
}

func (rt *Router) handleUpdate(w http.ResponseWriter, r *http.Request, apply func(string, any, store.Record) (store.Record, error)) {
	metrics.SetRoute(r.Context(), RouteRecord)
	vars := mux.Vars(r)

	rec, err := decodeRecord(r.Body)
	if err != nil {
		responder.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := apply(vars["collection"], vars["id"], rec)
	if err != nil {
		rt.writeStoreError(w, r, err)
		return
	}
	responder.JSON(w, r, http.StatusOK, updated)
}

func (rt *Router) handleDelete(w http.ResponseWriter, r *http.Request) {
	metrics.SetRoute(r.Context(), RouteRecord)
	vars := mux.Vars(r)

	if err := rt.store.Delete(vars["collection"], vars["id"]); err != nil {
		rt.writeStoreError(w, r, err)
		return
	}
	responder.Empty(w, r, http.StatusOK)
}

func (rt *Router) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrCollectionNotFound):
		responder.Empty(w, r, http.StatusNotFound)
	case errors.Is(err, store.ErrDuplicateID):
		responder.Error(w, r, http.StatusConflict, "Insert failed, duplicate id")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Erro ao persistir alteração")
		responder.Error(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeRecord aceita apenas objetos JSON; números são preservados como escritos.
func decodeRecord(body io.Reader) (store.Record, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler o corpo: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("corpo vazio: esperado objeto JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec store.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.New("corpo inválido: esperado objeto JSON")
	}
	if rec == nil {
		return nil, errors.New("corpo inválido: esperado objeto JSON")
	}
	return rec, nil
}

// pageLinks monta o header Link (first, prev, next, last) sobre o caminho que o cliente pediu.
func pageLinks(r *http.Request, q Query, total int) string {
	limit := q.Limit
	if limit == 0 {
		limit = DefaultPageLimit
	}
	last := int(math.Ceil(float64(total) / float64(limit)))
	if last < 1 {
		last = 1
	}

	path := r.URL.Path
	if original, ok := rewrite.OriginalPath(r.Context()); ok {
		path = original
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	link := func(page int, rel string) string {
		values := r.URL.Query()
		values.Set("_page", strconv.Itoa(page))
		values.Set("_limit", strconv.Itoa(limit))
		u := url.URL{Scheme: scheme, Host: r.Host, Path: path, RawQuery: values.Encode()}
		return fmt.Sprintf(`<%s>; rel="%s"`, u.String(), rel)
	}

	links := []string{link(1, "first")}
	if q.Page > 1 {
		links = append(links, link(q.Page-1, "prev"))
	}
	if q.Page < last {
		links = append(links, link(q.Page+1, "next"))
	}
	links = append(links, link(last, "last"))
	return strings.Join(links, ", ")
}
