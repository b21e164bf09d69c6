package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// RouteUnmatched é o rótulo usado quando nenhuma camada nomeou a rota.
const RouteUnmatched = "unmatched"

type routeKey struct{}

// routeLabel é mutável para que camadas internas nomeiem a rota depois que o
// middleware externo já criou o contexto.
type routeLabel struct {
	name string
}

// WithRoute prepara o contexto para receber o nome da rota.
func WithRoute(ctx context.Context) context.Context {
	return context.WithValue(ctx, routeKey{}, &routeLabel{})
}

// SetRoute nomeia a rota da requisição corrente. Sem WithRoute é um no-op.
func SetRoute(ctx context.Context, name string) {
	if l, ok := ctx.Value(routeKey{}).(*routeLabel); ok {
		l.name = name
	}
}

// Route retorna o nome registrado ou RouteUnmatched.
func Route(ctx context.Context) string {
	if l, ok := ctx.Value(routeKey{}).(*routeLabel); ok && l.name != "" {
		return l.name
	}
	return RouteUnmatched
}

// Recorder traduz eventos do serviço em chamadas ao Provider.
type Recorder struct {
	provider Provider
}

// NewRecorder cria um Recorder; provider nil descarta tudo.
func NewRecorder(provider Provider) *Recorder {
	return &Recorder{provider: provider}
}

// Request registra contagem e latência de uma requisição concluída.
func (r *Recorder) Request(route, method string, status int, latency time.Duration) error {
	tags := RequestCount.tagged(route, method, strconv.Itoa(status))
	if err := r.emit(RequestCount, 1, tags); err != nil {
		return err
	}
	return r.emit(RequestLatency, float64(latency.Milliseconds()), tags)
}

// Reload registra uma recarga do Store, com sucesso ou falha.
func (r *Recorder) Reload(source string, err error) error {
	result := "ok"
	if err != nil {
		result = "error"
	}
	return r.emit(StoreReloads, 1, StoreReloads.tagged(source, result))
}

func (r *Recorder) emit(def Definition, value float64, tags []string) error {
	if r == nil || r.provider == nil {
		return nil
	}
	switch def.Kind {
	case KindCount:
		return r.provider.Count(def.Name, value, tags)
	case KindGauge:
		return r.provider.Gauge(def.Name, value, tags)
	case KindHistogram:
		return r.provider.Histogram(def.Name, value, tags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Kind)
	}
}
