package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/config"
	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository/postgres"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
	"github.com/Hafiizherdian/dashboard2y2/pkg/logger"
)

// analytics prints the comparison dashboard for one filter as JSON, bypassing
// the cache.
func main() {
	cfg := config.Load()

	dbURL := flag.String("db-url", cfg.Database.URL(), "Database connection string")
	year1 := flag.Int("year1", 0, "Comparison year")
	year2 := flag.Int("year2", 0, "Current year")
	product := flag.String("product", "", "Product name filter")
	area := flag.String("area", "", "Area id filter")
	city := flag.String("city", "", "City filter")
	stats := flag.Bool("stats", false, "Print summary statistics instead of the dashboard")
	flag.Parse()

	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	db, err := sqlx.Open("pgx", *dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc := service.NewSalesService(
		postgres.NewSalesRepository(postgres.Wrap(db, cfg.Database.MaxConcurrent)),
		repository.NewFileAreaStore(cfg.App.AreasFile),
		nil,
		nil,
		cfg.App.UploadedBy,
	)

	start := time.Now()
	var report interface{}
	if *stats {
		report, err = svc.Stats(ctx)
	} else {
		report, err = svc.Dashboard(ctx, domain.SalesFilter{
			Year1:   *year1,
			Year2:   *year2,
			Product: *product,
			Area:    *area,
			City:    *city,
		})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build report")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Report built")
}
