package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/TheAryan77/soyabean-api/internal/artifact"
	"github.com/TheAryan77/soyabean-api/internal/classifier"
	"github.com/TheAryan77/soyabean-api/internal/config"
	"github.com/TheAryan77/soyabean-api/internal/httpapi"
)

const shutdownGrace = 5 * time.Second

// serve fetches and loads the model, then serves HTTP until SIGINT/SIGTERM.
// A model that cannot be fetched or loaded stops startup before the port
// is bound.
func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	ctx = logger.WithContext(ctx)

	res, err := artifact.Ensure(ctx, cfg.ModelURL, cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("fetch model: %w", err)
	}
	model, err := classifier.LoadONNX(res.Path, classifier.ONNXOptions{LibraryPath: cfg.ONNXLibrary})
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	clf, err := classifier.New(model)
	if err != nil {
		_ = model.Close()
		return fmt.Errorf("load model: %w", err)
	}
	defer clf.Close()
	in, out := model.Names()
	logger.Info().Str("model_path", res.Path).Str("input", in).Str("output", out).Msg("model loaded")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configureHTTP(ctx, cfg, logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           httpapi.NewMux(httpapi.NewModelService(clf, res.Path)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("soyabean-api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// configureHTTP pushes cfg into the httpapi package settings.
func configureHTTP(ctx context.Context, cfg config.Config, logger zerolog.Logger) {
	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxUploadBytes(cfg.MaxUploadBytes())
	httpapi.SetInferTimeoutSeconds(int64(cfg.InferTimeoutSec))
	httpapi.SetRequestLogLevel(requestLogLevel(cfg.LogLevel))
	httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSAllowedOrigins, nil, nil)
}

// requestLogLevel maps the process log level onto access logging.
func requestLogLevel(level string) string {
	switch level {
	case "debug", "trace":
		return "debug"
	case "warn", "warning", "error", "fatal", "panic":
		return "error"
	case "disabled", "off":
		return "off"
	default:
		return "info"
	}
}
