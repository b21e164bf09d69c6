package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raywall/procurement-mock/pkg/rules"
	"github.com/raywall/procurement-mock/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `{
  "vendors": [
    {"id": 1, "businessEntityId": 1, "name": "Australia Bike Retailer", "creditRating": 1, "activeFlag": true},
    {"id": 2, "businessEntityId": 2, "name": "Allenson Cycles", "creditRating": 2, "activeFlag": false},
    {"id": 3, "businessEntityId": 3, "name": "Advanced Bicycles", "creditRating": 1, "activeFlag": true}
  ],
  "sales-order-headers": [
    {"id": 1, "salesOrderId": 1, "customerId": 29825, "status": 5, "orderDate": "2011-05-31T00:00:00", "shipTo": {"city": "Seattle"}},
    {"id": 2, "salesOrderId": 2, "customerId": 29672, "status": 5, "orderDate": "2011-06-15T00:00:00", "shipTo": {"city": "Bothell"}},
    {"id": 3, "salesOrderId": 3, "customerId": 29825, "status": 1, "orderDate": "2011-07-01T00:00:00", "shipTo": {"city": "Seattle"}}
  ],
  "ship-methods": []
}`

func newRouter(t *testing.T) (*Router, *store.Store) {
	t.Helper()
	doc, err := store.Decode([]byte(seed), store.FormatJSON)
	require.NoError(t, err)
	st := store.New(doc)
	rm, err := rules.NewRuleManager()
	require.NoError(t, err)
	return New(st, rm), st
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func ids(t *testing.T, rr *httptest.ResponseRecorder) []float64 {
	t.Helper()
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list), rr.Body.String())
	out := make([]float64, 0, len(list))
	for _, rec := range list {
		out = append(out, rec["id"].(float64))
	}
	return out
}

func TestList(t *testing.T) {
	rt, _ := newRouter(t)

	rr := do(t, rt, http.MethodGet, "/vendors", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []float64{1, 2, 3}, ids(t, rr))
	assert.Empty(t, rr.Header().Get(HeaderTotalCount))

	rr = do(t, rt, http.MethodGet, "/vendors/", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, rt, http.MethodGet, "/ship-methods", "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, rt, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestList_Filters(t *testing.T) {
	rt, _ := newRouter(t)

	tests := []struct {
		name   string
		target string
		want   []float64
	}{
		{"eq", "/sales-order-headers?customerId=29825", []float64{1, 3}},
		{"eq repeat is or", "/sales-order-headers?status=1&status=9", []float64{3}},
		{"eq bool", "/vendors?activeFlag=false", []float64{2}},
		{"combined", "/sales-order-headers?customerId=29825&status=5", []float64{1}},
		{"ne", "/vendors?creditRating_ne=1", []float64{2}},
		{"gte date", "/sales-order-headers?orderDate_gte=2011-06-01", []float64{2, 3}},
		{"range", "/sales-order-headers?orderDate_gte=2011-06-01&orderDate_lte=2011-06-30", []float64{2}},
		{"lte number", "/vendors?creditRating_lte=1", []float64{1, 3}},
		{"like", "/vendors?name_like=%5Eal", []float64{2}},
		{"nested path", "/sales-order-headers?shipTo.city=Bothell", []float64{2}},
		{"full text", "/vendors?q=BIKE", []float64{1}},
		{"cel", "/vendors?_filter=" + "record.creditRating%20%3D%3D%201%20%26%26%20record.businessEntityId%20%3E%201", []float64{3}},
		{"unknown reserved ignored", "/vendors?_embed=x", []float64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, rt, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.want, ids(t, rr))
		})
	}
}

func TestList_BadQuery(t *testing.T) {
	rt, _ := newRouter(t)

	for _, target := range []string{
		"/vendors?_page=abc",
		"/vendors?name_like=(",
		"/vendors?_filter=record.%3D%3D",
	} {
		rr := do(t, rt, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
		assert.Contains(t, rr.Body.String(), `"error"`)
	}
}

func TestList_SortAndSlice(t *testing.T) {
	rt, _ := newRouter(t)

	rr := do(t, rt, http.MethodGet, "/vendors?_sort=name", "")
	assert.Equal(t, []float64{3, 2, 1}, ids(t, rr))

	rr = do(t, rt, http.MethodGet, "/sales-order-headers?_sort=customerId,id&_order=asc,desc", "")
	assert.Equal(t, []float64{2, 3, 1}, ids(t, rr))

	rr = do(t, rt, http.MethodGet, "/vendors?_start=1&_end=2", "")
	assert.Equal(t, []float64{2}, ids(t, rr))
	assert.Equal(t, "3", rr.Header().Get(HeaderTotalCount))

	rr = do(t, rt, http.MethodGet, "/vendors?_start=1&_limit=5", "")
	assert.Equal(t, []float64{2, 3}, ids(t, rr))
}

func TestList_Pagination(t *testing.T) {
	rt, _ := newRouter(t)

	rr := do(t, rt, http.MethodGet, "/vendors?_page=2&_limit=2", "")
	assert.Equal(t, []float64{3}, ids(t, rr))
	assert.Equal(t, "3", rr.Header().Get(HeaderTotalCount))

	link := rr.Header().Get(HeaderLink)
	assert.Contains(t, link, `_limit=2&_page=1>; rel="first"`)
	assert.Contains(t, link, `rel="prev"`)
	assert.NotContains(t, link, `rel="next"`)
	assert.Contains(t, link, `_limit=2&_page=2>; rel="last"`)

	rr = do(t, rt, http.MethodGet, "/vendors?_page=1", "")
	assert.Equal(t, []float64{1, 2, 3}, ids(t, rr), "limite padrão de 10")

	rr = do(t, rt, http.MethodGet, "/vendors?_page=9&_limit=2", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGet(t *testing.T) {
	rt, _ := newRouter(t)

	rr := do(t, rt, http.MethodGet, "/vendors/2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Allenson Cycles")

	rr = do(t, rt, http.MethodGet, "/vendors/99", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestDB(t *testing.T) {
	rt, _ := newRouter(t)

	rr := do(t, rt, http.MethodGet, "/db", "")
	var doc map[string][]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Len(t, doc["vendors"], 3)
	assert.Contains(t, doc, "ship-methods")
}

func TestCreate(t *testing.T) {
	rt, st := newRouter(t)

	rr := do(t, rt, http.MethodPost, "/vendors", `{"id": 4, "name": "Bike World"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id": 4, "name": "Bike World"}`, rr.Body.String())

	rec, err := st.Get("vendors", 4)
	require.NoError(t, err)
	assert.Equal(t, "Bike World", rec["name"])

	rr = do(t, rt, http.MethodPost, "/vendors", `{"name": "No Id"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"id"`, "nenhum id é atribuído")

	rr = do(t, rt, http.MethodPost, "/vendors", `{"id": "1"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, rt, http.MethodPost, "/vendors", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, rt, http.MethodPost, "/vendors", ``)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, rt, http.MethodPost, "/nowhere", `{"id": 1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReplaceAndPatch(t *testing.T) {
	rt, st := newRouter(t)

	rr := do(t, rt, http.MethodPut, "/vendors/1", `{"id": 77, "name": "Renamed"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rec, err := st.Get("vendors", 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", rec["name"])
	assert.NotContains(t, rec, "creditRating", "PUT substitui o registro inteiro")

	rr = do(t, rt, http.MethodPatch, "/vendors/2", `{"activeFlag": true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rec, err = st.Get("vendors", 2)
	require.NoError(t, err)
	assert.Equal(t, true, rec["activeFlag"])
	assert.Equal(t, "Allenson Cycles", rec["name"])

	rr = do(t, rt, http.MethodPatch, "/vendors/99", `{"a": 1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, rt, http.MethodPut, "/vendors/1", `"text"`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDelete(t *testing.T) {
	rt, st := newRouter(t)

	rr := do(t, rt, http.MethodDelete, "/vendors/3", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())

	_, err := st.Get("vendors", 3)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rr = do(t, rt, http.MethodDelete, "/vendors/3", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, rt, http.MethodDelete, "/vendors", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
