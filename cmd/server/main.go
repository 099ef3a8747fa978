package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/api"
	"github.com/Hafiizherdian/dashboard2y2/internal/cache"
	"github.com/Hafiizherdian/dashboard2y2/internal/config"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository/postgres"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
	"github.com/Hafiizherdian/dashboard2y2/internal/storage"
	"github.com/Hafiizherdian/dashboard2y2/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db.DB.DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	salesCache, err := cache.NewSalesCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	objectStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	areaStore := repository.NewFileAreaStore(cfg.App.AreasFile)
	salesService := service.NewSalesService(
		postgres.NewSalesRepository(db),
		areaStore,
		salesCache,
		objectStore,
		cfg.App.UploadedBy,
	)
	areaService := service.NewAreaService(areaStore, salesCache)

	router := api.NewRouter(&api.Services{
		SalesService: salesService,
		AreaService:  areaService,
	}, api.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		UploadsPerMinute: cfg.Server.UploadsPerMinute,
		MaxUploadBytes:   cfg.App.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	// In-flight uploads get a few seconds to finish their commit.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
