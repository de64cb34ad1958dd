package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"gratuity-engine/internal/config"
	"gratuity-engine/internal/engine"
	"gratuity-engine/internal/formula"
	"gratuity-engine/internal/handler"
	"gratuity-engine/internal/logging"
	"gratuity-engine/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	if _, ok := formula.Get(cfg.Engine.FormulaVariant); !ok {
		logger.Error("unknown formula variant", "variant", cfg.Engine.FormulaVariant, "known", formula.Names())
		os.Exit(1)
	}

	store, err := report.NewFileStore(cfg.Reports.Dir)
	if err != nil {
		logger.Error("failed to prepare report store", "error", err)
		os.Exit(1)
	}

	// Amounts are rendered as JSON numbers rather than strings.
	decimal.MarshalJSONWithoutQuotes = true

	eng := engine.New(engine.Options{
		Sheet:   cfg.Engine.SheetName,
		Variant: cfg.Engine.FormulaVariant,
		Reports: store,
		Logger:  logger,
	})
	h := handler.New(eng, store, logger)

	for _, rt := range h.Routes() {
		logger.Info("route registered", "path", rt.Path, "methods", rt.Methods)
	}

	srv := &fasthttp.Server{
		Handler:            h.Handle,
		Name:               "gratuity-engine",
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxUploadBytes,
		Logger:             logging.StdLogger(logger, slog.LevelError),
	}

	addr := ":" + strconv.Itoa(cfg.HTTP.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gratuity engine starting",
			"addr", addr,
			"formula", cfg.Engine.FormulaVariant,
			"sheet", cfg.Engine.SheetName,
			"reports_dir", store.Dir(),
		)
		errCh <- srv.ListenAndServe(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
