package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopfloor-tracker/internal/config"
	router "shopfloor-tracker/internal/http"
	"shopfloor-tracker/internal/http/handlers"
	"shopfloor-tracker/internal/seed"
	"shopfloor-tracker/internal/service"
	"shopfloor-tracker/internal/store"
	"shopfloor-tracker/internal/store/gormstore"
	"shopfloor-tracker/internal/store/memory"
	"shopfloor-tracker/internal/workerpool"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		log.Fatalf("store initiation failed: %v", err)
	}
	defer closeStore()

	if cfg.SeedFile != "" {
		fixture, err := seed.Load(cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if _, err := seed.Apply(context.Background(), st, fixture, logger); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	followUps, err := service.NewFollowUps(st, logger)
	if err != nil {
		log.Fatalf("service initiation failed: %v", err)
	}
	pool := workerpool.New(cfg.PoolSize, followUps, logger)
	pool.Start(cfg.Workers)

	taskService, err := service.New(st, pool, followUps, logger)
	if err != nil {
		log.Fatalf("service initiation failed: %v", err)
	}
	floorService, err := service.NewFloor(st)
	if err != nil {
		log.Fatalf("service initiation failed: %v", err)
	}

	router := router.New(handlers.New(taskService, logger), handlers.NewFloor(floorService, logger))

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("listening on %s (store=%s)", cfg.HTTPAddr, cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %s\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	<-stop
	log.Printf("shut down signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	// drain follow-ups after the server stops producing them
	if err := pool.Shutdown(ctx); err != nil {
		log.Printf("pool shutdown failed: %v", err)
	}

	log.Printf("shut down gracefully")
}

func openStore(cfg config.Config, logger *log.Logger) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := gormstore.OpenSQLite(cfg.Store.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}, nil
	default:
		return memory.New(), func() {}, nil
	}
}
