package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Kind  string
	Name  string
	Value float64
	Tags  []string
}

// MockProvider para verificar chamadas
type MockProvider struct {
	Calls []call
	Err   error
}

func (m *MockProvider) Count(name string, val float64, tags []string) error {
	m.Calls = append(m.Calls, call{"count", name, val, tags})
	return m.Err
}

func (m *MockProvider) Gauge(name string, val float64, tags []string) error {
	m.Calls = append(m.Calls, call{"gauge", name, val, tags})
	return m.Err
}

func (m *MockProvider) Histogram(name string, val float64, tags []string) error {
	m.Calls = append(m.Calls, call{"histogram", name, val, tags})
	return m.Err
}

func TestRecorder_Request(t *testing.T) {
	provider := &MockProvider{}
	rec := NewRecorder(provider)

	require.NoError(t, rec.Request("purchase-order", "GET", 404, 12*time.Millisecond))
	require.Len(t, provider.Calls, 2)

	wantTags := []string{"route:purchase-order", "method:GET", "status:404"}
	assert.Equal(t, call{"count", "http.requests", 1, wantTags}, provider.Calls[0])
	assert.Equal(t, call{"histogram", "http.latency_ms", 12, wantTags}, provider.Calls[1])
}

func TestRecorder_ProviderError(t *testing.T) {
	provider := &MockProvider{Err: errors.New("statsd down")}
	rec := NewRecorder(provider)

	err := rec.Request("db", "GET", 200, time.Millisecond)
	assert.EqualError(t, err, "statsd down")
	assert.Len(t, provider.Calls, 1, "falha no contador interrompe o envio")
}

func TestRecorder_Reload(t *testing.T) {
	provider := &MockProvider{}
	rec := NewRecorder(provider)

	require.NoError(t, rec.Reload("file", nil))
	require.NoError(t, rec.Reload("s3", errors.New("boom")))

	assert.Equal(t, []string{"source:file", "result:ok"}, provider.Calls[0].Tags)
	assert.Equal(t, []string{"source:s3", "result:error"}, provider.Calls[1].Tags)
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var rec *Recorder
	assert.NoError(t, rec.Request("x", "GET", 200, 0))
	assert.NoError(t, NewRecorder(nil).Reload("file", nil))
}

func TestRouteLabel(t *testing.T) {
	ctx := context.Background()
	SetRoute(ctx, "ignored")
	assert.Equal(t, RouteUnmatched, Route(ctx))

	ctx = WithRoute(ctx)
	assert.Equal(t, RouteUnmatched, Route(ctx))

	SetRoute(ctx, "sales-orders")
	assert.Equal(t, "sales-orders", Route(ctx))
}

func TestRecorder_GaugeAndUnknownKind(t *testing.T) {
	provider := &MockProvider{}
	rec := NewRecorder(provider)

	gauge := Definition{Name: "store.records", Kind: KindGauge, Tags: []string{"collection"}}
	require.NoError(t, rec.emit(gauge, 42, gauge.tagged("vendors")))
	assert.Equal(t, call{"gauge", "store.records", 42, []string{"collection:vendors"}}, provider.Calls[0])

	err := rec.emit(Definition{Name: "x", Kind: "summary"}, 1, nil)
	assert.EqualError(t, err, "tipo de métrica desconhecido: summary")
}
