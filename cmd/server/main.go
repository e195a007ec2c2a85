package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/lotexport/internal/config"
	"github.com/woozymasta/lotexport/internal/logger"
	"github.com/woozymasta/lotexport/internal/registry"
	"github.com/woozymasta/lotexport/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"       env:"CONFIG_FILE"     description:"Path to configuration file, built-in defaults if empty"`
	Addr        string `short:"a" long:"addr"         env:"LISTEN_ADDRESS"  description:"Address to listen on" default:"0.0.0.0"`
	Port        int    `short:"p" long:"port"         env:"LISTEN_PORT"     description:"Port to listen on" default:"8080"`
	Concurrency int    `short:"j" long:"concurrency"  env:"CONCURRENCY"     description:"Parallel registry lookups, overrides config"`
	CORSOrigin  string `long:"cors-origin"            env:"VISION_FRONTEND" description:"Allowed CORS origin, overrides config"`
	FrontendDir string `long:"frontend-dir"           env:"FRONTEND_DIR"    description:"Serve a built web frontend from this directory"`
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}
	if opts.CORSOrigin != "" {
		cfg.CORSOrigin = opts.CORSOrigin
	}
	if opts.FrontendDir != "" {
		cfg.FrontendDir = opts.FrontendDir
	}

	gin.SetMode(gin.ReleaseMode)
	srvCtx := server.NewServerContext(cfg, registry.NewClient(cfg.Sources))

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Str("cors_origin", cfg.CORSOrigin).
		Int("concurrency", cfg.Concurrency).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
