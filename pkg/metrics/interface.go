// Package metrics descreve as métricas do mock backend e as envia a um Provider
// (DataDog ou no-op, ver pacote observability).
package metrics

// Provider recebe as métricas já nomeadas e com tags no formato "chave:valor".
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Kind seleciona o método do Provider usado para uma Definition.
type Kind string

const (
	KindCount     Kind = "count"
	KindGauge     Kind = "gauge"
	KindHistogram Kind = "histogram"
)

// Definition nomeia uma métrica e lista as chaves de tag que ela carrega.
type Definition struct {
	Name string
	Kind Kind
	Tags []string
}

var (
	// RequestCount conta requisições concluídas.
	RequestCount = Definition{Name: "http.requests", Kind: KindCount, Tags: []string{"route", "method", "status"}}
	// RequestLatency mede a latência em milissegundos.
	RequestLatency = Definition{Name: "http.latency_ms", Kind: KindHistogram, Tags: []string{"route", "method", "status"}}
	// StoreReloads conta recargas do documento seed.
	StoreReloads = Definition{Name: "store.reloads", Kind: KindCount, Tags: []string{"source", "result"}}
)

// tagged combina as chaves da definição com values, na mesma ordem.
func (d Definition) tagged(values ...string) []string {
	tags := make([]string, 0, len(d.Tags))
	for i, key := range d.Tags {
		if i < len(values) {
			tags = append(tags, key+":"+values[i])
		}
	}
	return tags
}
