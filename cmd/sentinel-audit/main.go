package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/Ratnesh09/sentinel-India/config"
	"github.com/Ratnesh09/sentinel-India/internal/observability"
	"github.com/Ratnesh09/sentinel-India/services/auditor"
	"github.com/Ratnesh09/sentinel-India/services/ingest"
	"github.com/Ratnesh09/sentinel-India/services/pipeline"
	"github.com/Ratnesh09/sentinel-India/services/providers"
	"github.com/Ratnesh09/sentinel-India/services/providers/openai"
	"github.com/Ratnesh09/sentinel-India/services/redactor"
)

func main() {
	pdfPath := flag.String("pdf", "", "path to the annual report PDF")
	outPath := flag.String("out", "", "optional path for the raw analysis JSON artifact")
	flag.Parse()

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sentinel-audit -pdf <report.pdf> [-out analysis.json]")
		os.Exit(2)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	provider := openai.NewOpenAIAdapter(providers.ProviderConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	})

	selectorCfg := ingest.DefaultConfig()
	selectorCfg.MaxSectionLen = cfg.Ingest.MaxSectionLen
	selectorCfg.FallbackPages = cfg.Ingest.FallbackPages

	auditorCfg := auditor.DefaultConfig()
	auditorCfg.Model = cfg.Audit.Model
	auditorCfg.Temperature = cfg.Audit.Temperature
	auditorCfg.MinSectionLen = cfg.Audit.MinSectionLen
	auditorCfg.MaxPromptLen = cfg.Audit.MaxPromptLen
	auditorCfg.RequestTimeout = cfg.OpenAI.Timeout

	pipe := pipeline.NewService(
		ingest.NewSelector(selectorCfg, logger),
		auditor.NewService(provider, auditorCfg, logger),
		redactor.NewService(logger),
		logger,
	)

	src, err := ingest.OpenPDF(*pdfPath)
	if err != nil {
		logger.Fatal("failed to open source document", zap.Error(err))
	}
	defer func() { _ = src.Close() }()

	rec, err := pipe.Run(context.Background(), *pdfPath, src)
	if err != nil {
		logger.Fatal("audit run failed", zap.Error(err))
	}

	if *outPath != "" {
		raw, err := json.MarshalIndent(rec.Analysis, "", "  ")
		if err == nil {
			err = os.WriteFile(*outPath, raw, 0o644)
		}
		if err != nil {
			logger.Error("failed to write analysis artifact",
				zap.String("path", *outPath),
				zap.Error(err))
		}
	}

	// The redacted report is the only artifact safe to display.
	fmt.Println(rec.RedactedReport)
}
