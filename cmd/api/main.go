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

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/cache"
	"github.com/Hafiizherdian/dashboard2y2/internal/config"
	"github.com/Hafiizherdian/dashboard2y2/internal/drive"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository/postgres"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
	"github.com/Hafiizherdian/dashboard2y2/internal/storage"
	"github.com/Hafiizherdian/dashboard2y2/pkg/logger"
)

// The drive API runs next to the main server and feeds spreadsheets from a
// shared Google Drive folder into the same ingestion pipeline.
func main() {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	salesCache, err := cache.NewSalesCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	objectStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	salesService := service.NewSalesService(
		postgres.NewSalesRepository(db),
		repository.NewFileAreaStore(cfg.App.AreasFile),
		salesCache,
		objectStore,
		cfg.App.UploadedBy,
	)
	ingestService := drive.NewIngestService(driveService, salesService, cfg.App.MaxUploadBytes)

	r := mux.NewRouter()
	drive.NewHandler(driveService, ingestService).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Drive API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Drive API stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Drive API forced to shutdown")
	}
}
