package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/raywall/procurement-mock/pkg/config"
	"github.com/raywall/procurement-mock/pkg/engine"
	"github.com/raywall/procurement-mock/pkg/store"
)

// Injetável para testes
var newLoader = func(region string) engine.DocumentLoader {
	return store.NewSourceLoader(region)
}

var errInvalid = errors.New("validação falhou")

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	filePtr := validateCmd.String("file", config.DefaultConfigPath, "Caminho do arquivo YAML de configuração")
	sourcePtr := validateCmd.String("source", "", "Sobrescreve store.source (arquivo, S3, DynamoDB, Redis ou Postgres URI)")

	if len(os.Args) < 2 {
		fmt.Println("Comandos esperados: validate")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := runValidate(context.Background(), os.Stdout, *filePtr, *sourcePtr); err != nil {
			os.Exit(1) // Falha no CI
		}
	default:
		fmt.Println("Comando desconhecido")
		os.Exit(1)
	}
}

func runValidate(ctx context.Context, out io.Writer, path, source string) error {
	fmt.Fprintf(out, "🔍 Analisando configuração: %s ...\n", path)

	// 1. Load (Validação Estrutural da configuração)
	cfg, err := config.Load(ctx, path)
	if err != nil {
		fmt.Fprintf(out, "❌ Erro de Carregamento/Estrutura:\n%v\n", err)
		return err
	}
	if source != "" {
		cfg.Store.Source = source
	}

	// 2. Carrega o documento seed
	fmt.Fprintf(out, "🔍 Analisando documento: %s ...\n", cfg.Store.Source)
	doc, err := newLoader(cfg.Store.Region).Load(ctx, cfg.Store.Source)
	if err != nil {
		fmt.Fprintf(out, "❌ Erro ao carregar o documento:\n%v\n", err)
		return err
	}

	// 3. Analyze (Integridade referencial e ids)
	report := engine.Analyze(doc)
	for _, w := range report.Warnings {
		fmt.Fprintf(out, " ⚠️  %s\n", w)
	}

	if !report.Valid {
		fmt.Fprintln(out, "❌ O documento contém erros:")
		for _, e := range report.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
		return errInvalid
	}

	// Output JSON para integração com pipelines
	if os.Getenv("OUTPUT_FORMAT") == "json" {
		jsonOutput, _ := json.Marshal(report)
		fmt.Fprintln(out, string(jsonOutput))
	} else {
		fmt.Fprintln(out, "✅ Configuração e documento válidos!")
	}
	return nil
}
