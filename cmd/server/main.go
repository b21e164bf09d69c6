package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/procurement-mock/pkg/cloud"
	"github.com/raywall/procurement-mock/pkg/config"
	"github.com/raywall/procurement-mock/pkg/engine"
	"github.com/raywall/procurement-mock/pkg/transport"
	"github.com/rs/zerolog"
)

var (
	// Variáveis injetáveis para mocking
	serverStarter   = transport.StartHTTPServer
	lambdaStarter   = lambda.Start
	reloaderStarter = startSQSReloader
)

// endpoints lista as rotas anunciadas no banner de inicialização.
var endpoints = []string{
	"GET  /purchase-orders",
	"GET  /purchase-orders/{id}",
	"GET  /purchase-orders/{id}/details",
	"GET  /sales-order-headers",
	"GET  /sales-order-headers/{id}",
	"GET  /sales-order-headers/{id}/details",
	"GET  /sales-orders (alias de /sales-order-headers)",
	"*    /{collection} e /{collection}/{id}",
	"GET  /db",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Path()); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	// 1. Carrega Configuração
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	// 2. Inicializa Engine (Boot Time)
	svcEngine, err := engine.NewServiceEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcEngine.Close()

	// 3. Hot reload opcional
	if cfg.Store.ReloadQueue != "" {
		go reloaderStarter(ctx, cfg, svcEngine)
	}

	// 4. Seleciona Runtime Strategy
	switch cfg.Service.Runtime {
	case "local":
		addr := fmt.Sprintf(":%d", cfg.Service.Port)
		banner(svcEngine.Logger, addr, cfg.Store.Source)
		return serverStarter(ctx, addr, svcEngine.Handler(), transport.ServerOptions{
			Timeout:         cfg.Service.GetTimeout(),
			ShutdownTimeout: cfg.Service.GetShutdownTimeout(),
		})
	case "lambda":
		handler := transport.NewLambdaHandler(svcEngine.Handler())
		lambdaStarter(handler.Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
	}
}

func startSQSReloader(ctx context.Context, cfg *config.Config, r transport.Reloader) {
	awsCfg, err := cloud.AWSConfig(ctx, cfg.Store.Region)
	if err != nil {
		log.Printf("hot reload desativado: erro config aws: %v", err)
		return
	}
	transport.NewSQSReloader(sqs.NewFromConfig(awsCfg), cfg.Store.ReloadQueue, r).Start(ctx)
}

func banner(logger zerolog.Logger, addr, source string) {
	logger.Info().Str("addr", addr).Str("source", source).Msg("🚀 Mock backend no ar")
	for _, e := range endpoints {
		logger.Info().Msg("   " + e)
	}
}
