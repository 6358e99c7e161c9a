package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/csg33k/paperdesk/internal/adapters/filestore"
	"github.com/csg33k/paperdesk/internal/adapters/gcs"
	"github.com/csg33k/paperdesk/internal/adapters/memregistry"
	sqliteadapter "github.com/csg33k/paperdesk/internal/adapters/sqlite"
	"github.com/csg33k/paperdesk/internal/blobref"
	"github.com/csg33k/paperdesk/internal/config"
	"github.com/csg33k/paperdesk/internal/handlers"
	"github.com/csg33k/paperdesk/internal/metrics"
	"github.com/csg33k/paperdesk/internal/ports"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqliteadapter.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()

	var files ports.FileStore
	switch cfg.StorageBackend {
	case config.BackendGCS:
		store, err := gcs.New(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("failed to open bucket: %v", err)
		}
		defer store.Close()
		files = store
	default:
		store, err := filestore.NewDisk(cfg.UploadDir)
		if err != nil {
			log.Fatalf("failed to open upload dir: %v", err)
		}
		files = store
	}

	m := metrics.New()
	refs := blobref.New(blobref.WithTTL(cfg.RefTTL), blobref.WithMetrics(m))
	go refs.Run(ctx, max(cfg.RefTTL/2, blobref.MinSweepInterval))

	h := handlers.New(repo, files, memregistry.New(), refs,
		handlers.WithLogger(logger),
		handlers.WithMetrics(m),
		handlers.WithMaxUpload(cfg.MaxUploadMB<<20),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("paper desk running", "addr", cfg.Addr, "db", cfg.DBPath, "storage", cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
