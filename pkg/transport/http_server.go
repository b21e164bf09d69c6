package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/procurement-mock/pkg/config"
	"github.com/raywall/procurement-mock/pkg/interceptor"
	"github.com/raywall/procurement-mock/pkg/metrics"
	"github.com/raywall/procurement-mock/pkg/responder"
	"github.com/raywall/procurement-mock/pkg/rewrite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type ctxKey string

// ContextKeyCorrID guarda o correlation id no contexto da requisição.
const ContextKeyCorrID ctxKey = "correlation_id"

// CorrelationID retorna o id atribuído pelo ObservabilityMiddleware.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyCorrID).(string)
	return id
}

// Pipeline reúne as etapas do handler HTTP. Campos nil são pulados.
type Pipeline struct {
	Recorder    *metrics.Recorder
	CORS        config.CORSConf
	Rewriter    *rewrite.Rewriter
	Interceptor *interceptor.Interceptor
	Router      http.Handler
}

// NewHandler compõe, de fora para dentro: observabilidade, CORS, reescrita de
// caminho, interceptor de junções e roteador genérico. Sem roteador, tudo que o
// interceptor não atender recebe 404 {}.
func NewHandler(p Pipeline) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.Empty(w, r, http.StatusNotFound)
	})
	if p.Router != nil {
		h = p.Router
	}
	if p.Interceptor != nil {
		h = p.Interceptor.Middleware(h)
	}
	if p.Rewriter != nil {
		h = p.Rewriter.Middleware(h)
	}
	h = CORSMiddleware(p.CORS)(h)
	return ObservabilityMiddleware(p.Recorder)(h)
}

// ServerOptions controla timeouts do servidor HTTP.
type ServerOptions struct {
	Timeout         time.Duration
	ShutdownTimeout time.Duration
}

// StartHTTPServer escuta em addr até ctx ser cancelado e então faz o graceful shutdown.
func StartHTTPServer(ctx context.Context, addr string, handler http.Handler, opts ServerOptions) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("falha ao escutar em %s: %w", addr, err)
	}
	return Serve(ctx, ln, handler, opts)
}

// Serve atende no listener informado. Retorna nil quando o encerramento foi limpo.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, opts ServerOptions) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: opts.Timeout,
		ReadTimeout:       opts.Timeout,
		WriteTimeout:      opts.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Servidor HTTP ouvindo em %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Encerrando servidor HTTP")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("falha no graceful shutdown: %w", err)
	}
	return nil
}

// CORSMiddleware envia os headers CORS em toda resposta e encerra preflights com 204.
func CORSMiddleware(cfg config.CORSConf) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if cfg.AllowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
			}
			if cfg.AllowMethods != "" {
				h.Set("Access-Control-Allow-Methods", cfg.AllowMethods)
			}
			if cfg.AllowHeaders != "" {
				h.Set("Access-Control-Allow-Headers", cfg.AllowHeaders)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware atribui o correlation id, injeta o logger da requisição
// no contexto e registra log e métricas ao final. rec pode ser nil.
func ObservabilityMiddleware(rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			logger := log.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)
			ctx = metrics.WithRoute(ctx)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			latency := time.Since(start)
			route := metrics.Route(ctx)
			if err := rec.Request(route, r.Method, wrapper.statusCode, latency); err != nil {
				logger.Warn().Err(err).Msg("falha ao enviar métricas")
			}

			logEvent(&logger, wrapper.statusCode).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", latency.Milliseconds()).
				Msg("request completed")
		})
	}
}

func logEvent(logger *zerolog.Logger, status int) *zerolog.Event {
	if status >= http.StatusInternalServerError {
		return logger.Error()
	}
	return logger.Info()
}
