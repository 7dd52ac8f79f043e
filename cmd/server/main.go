package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eisendo/internal/config"
	"eisendo/internal/logx"
	"eisendo/internal/serverapp"
)

func main() {
	configPath := flag.String("config", "eisendo.yaml", "path to config file")
	flag.Parse()

	boot := logx.NewConsole("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}

	log, closeLog := logx.New(cfg.Logging)
	defer func() { _ = closeLog() }()

	handler, closeApp, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Log:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}
	defer closeApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Watch(ctx, *configPath, log, nil); err != nil {
		log.Warn().Err(err).Msg("config watcher not started")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", cfg.Server.Port).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}
