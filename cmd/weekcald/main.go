package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"weekcal/api"
	"weekcal/config"
	"weekcal/gateway"
	"weekcal/merge"
	"weekcal/recur"
	"weekcal/storage"
	"weekcal/storage/memory"
	"weekcal/storage/postgres"
	"weekcal/syncer"
)

func main() {
	configPath := flag.String("config", "weekcal.yaml", "path to the settings file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading settings failed", "err", err)
		os.Exit(1)
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		logger.Error("opening storage failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	service, err := merge.NewService(store, logger)
	if err != nil {
		logger.Error("building reconciliation service failed", "err", err)
		os.Exit(1)
	}

	expander := recur.NewWithCache(logger, recur.DefaultCacheConfig)
	expander.HorizonMonths = cfg.HorizonMonths
	defer expander.Close()

	if cfg.AutoSync {
		source := batchSource(cfg, logger)
		s, err := syncer.New(source, service, time.Duration(cfg.SyncInterval)*time.Minute, logger)
		if err != nil {
			logger.Error("starting auto-sync failed", "err", err)
			os.Exit(1)
		}
		s.Start()
		defer s.Stop()
	}

	router := api.NewRouter(service, expander, logger)
	logger.Info("listening", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, router); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Settings) (storage.Store, func(), error) {
	if cfg.Storage.Driver == "postgres" {
		pg, err := postgres.Open(postgres.Config{
			Host:     cfg.Storage.Host,
			Port:     cfg.Storage.Port,
			User:     cfg.Storage.User,
			Password: cfg.Storage.Password,
			Name:     cfg.Storage.Name,
			SSLMode:  cfg.Storage.SSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}
	return memory.New(), func() {}, nil
}

func batchSource(cfg *config.Settings, logger *slog.Logger) gateway.BatchSource {
	if strings.ToLower(cfg.Protocol) == config.ProtocolEWS {
		return &gateway.EWSSource{
			ServerURL: cfg.EWS.ServerURL,
			Email:     cfg.EWS.Email,
			Password:  cfg.EWS.Password,
			Logger:    logger,
		}
	}
	return &gateway.CalDAVSource{
		URL:      cfg.CalDAV.URL,
		Username: cfg.CalDAV.Username,
		Password: cfg.CalDAV.Password,
		Logger:   logger,
	}
}
