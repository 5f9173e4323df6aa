// Command server は POST /api/predict、POST /api/geocode と GET /health を提供する。
// 成果物は最初のリクエストで読み込む。
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YuminosukeSato/houseprice/config"
	"github.com/YuminosukeSato/houseprice/inference"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.GetLogger().Error("server stopped", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	artifactsDir := fs.String("artifacts", "", "artifacts directory (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.ListenAddr = *addr
		case "artifacts":
			cfg.ArtifactsDir = *artifactsDir
		}
	})
	log.SetupLogger(cfg.LogLevel)
	logger := log.GetLoggerWithName("server")

	lazy := inference.NewLazy(cfg.ArtifactsDir)
	if _, err := lazy.Get(); err != nil {
		logger.Warn("predictor not loaded yet, /api/predict will return 503 until training has run",
			log.ArtifactDirKey, cfg.ArtifactsDir, log.ErrAttr(err))
	}

	geocoder := server.NewGeocoder(cfg.HereAPIKey)
	if !geocoder.Configured() {
		logger.Warn("HERE API key not set, /api/geocode will return 500",
			log.ErrorCodeKey, log.ErrorGeocoderConfig,
			log.SuggestionKey, "set "+config.EnvHereAPIKey)
	}

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: server.New(server.FromLazy(lazy),
			server.WithGeocoder(geocoder),
			server.WithMapsJSKey(cfg.HereMapsJSKey),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("listening", "http.addr", cfg.ListenAddr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")
	case <-shutdown:
		logger.Info("received shutdown signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}
