package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/raywall/procurement-mock/pkg/config"
	"github.com/raywall/procurement-mock/pkg/enrichment"
	"github.com/raywall/procurement-mock/pkg/interceptor"
	"github.com/raywall/procurement-mock/pkg/logger"
	"github.com/raywall/procurement-mock/pkg/metrics"
	"github.com/raywall/procurement-mock/pkg/observability"
	"github.com/raywall/procurement-mock/pkg/rewrite"
	"github.com/raywall/procurement-mock/pkg/router"
	"github.com/raywall/procurement-mock/pkg/rules"
	"github.com/raywall/procurement-mock/pkg/store"
	"github.com/raywall/procurement-mock/pkg/transport"
	"github.com/rs/zerolog"
)

// ServiceEngine monta o mock backend a partir da configuração: store, junções,
// reescrita de caminhos e roteador genérico atrás do pipeline HTTP.
type ServiceEngine struct {
	mu       sync.Mutex
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  observability.Provider
	Recorder *metrics.Recorder
	Store    *store.Store
	Rewriter *rewrite.Rewriter

	loader  DocumentLoader
	handler http.Handler
}

// Option customiza o ServiceEngine na criação.
type Option func(*ServiceEngine)

// WithLoader substitui o carregador de documentos padrão (store.SourceLoader).
func WithLoader(l DocumentLoader) Option {
	return func(se *ServiceEngine) {
		se.loader = l
	}
}

// NewServiceEngine carrega o documento seed e compõe o handler HTTP.
func NewServiceEngine(ctx context.Context, cfg *config.Config, opts ...Option) (*ServiceEngine, error) {
	log := logger.Configure(cfg.Service.Logging, cfg.Service.Name)

	metricProvider, err := observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name)
	if err != nil {
		return nil, fmt.Errorf("falha métricas: %w", err)
	}

	se := &ServiceEngine{
		Config:   cfg,
		Logger:   log,
		Metrics:  metricProvider,
		Recorder: metrics.NewRecorder(metricProvider),
		loader:   store.NewSourceLoader(cfg.Store.Region),
	}
	for _, opt := range opts {
		opt(se)
	}

	doc, err := se.load(ctx)
	if err != nil {
		_ = metricProvider.Close()
		return nil, err
	}

	var storeOpts []store.Option
	if cfg.Store.Persist {
		storeOpts = append(storeOpts, store.WithSink(store.NewFileSink(cfg.Store.PersistPath)))
		log.Info().Str("path", cfg.Store.PersistPath).Msg("Persistência de mutações habilitada")
	}
	se.Store = store.New(doc, storeOpts...)

	rm, err := rules.NewRuleManager()
	if err != nil {
		_ = metricProvider.Close()
		return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
	}

	se.Rewriter, err = rewrite.New(rewriteRules(cfg.Rewrites))
	if err != nil {
		_ = metricProvider.Close()
		return nil, fmt.Errorf("falha rewrites: %w", err)
	}

	se.handler = transport.NewHandler(transport.Pipeline{
		Recorder:    se.Recorder,
		CORS:        cfg.CORS,
		Rewriter:    se.Rewriter,
		Interceptor: interceptor.New(enrichment.New(se.Store)),
		Router:      router.New(se.Store, rm),
	})

	return se, nil
}

// Handler retorna o pipeline HTTP completo.
func (se *ServiceEngine) Handler() http.Handler {
	return se.handler
}

// Reload relê a origem configurada e substitui o documento do Store.
// Em caso de falha o documento atual é mantido.
func (se *ServiceEngine) Reload(ctx context.Context) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.Logger.Info().Str("source", se.Config.Store.Source).Msg("🔄 Hot Reload iniciado")
	doc, err := se.load(ctx)
	_ = se.Recorder.Reload(se.Config.Store.Source, err)
	if err != nil {
		return fmt.Errorf("falha ao recarregar documento: %w", err)
	}

	se.Store.Reset(doc)
	se.Logger.Info().Int("collections", len(doc)).Msg("✅ Hot Reload concluído com sucesso!")
	return nil
}

// Close libera o cliente de métricas.
func (se *ServiceEngine) Close() error {
	return se.Metrics.Close()
}

// load busca o documento e registra os avisos de integridade.
func (se *ServiceEngine) load(ctx context.Context) (store.Document, error) {
	doc, err := se.loader.Load(ctx, se.Config.Store.Source)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar %s: %w", se.Config.Store.Source, err)
	}

	report := Analyze(doc)
	for _, msg := range report.Errors {
		se.Logger.Error().Str("source", se.Config.Store.Source).Msg(msg)
	}
	for _, msg := range report.Warnings {
		se.Logger.Warn().Str("source", se.Config.Store.Source).Msg(msg)
	}
	return doc, nil
}

// rewriteRules converte a tabela da configuração; vazia usa os aliases padrão.
func rewriteRules(cfg []config.RewriteRule) []rewrite.Rule {
	if len(cfg) == 0 {
		return rewrite.DefaultRules()
	}
	out := make([]rewrite.Rule, len(cfg))
	for i, r := range cfg {
		out[i] = rewrite.Rule{From: r.From, To: r.To}
	}
	return out
}

var _ transport.Reloader = (*ServiceEngine)(nil)
