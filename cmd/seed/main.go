package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Hafiizherdian/dashboard2y2/internal/cache"
	"github.com/Hafiizherdian/dashboard2y2/internal/config"
	"github.com/Hafiizherdian/dashboard2y2/internal/drive"
	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository/postgres"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
	"github.com/Hafiizherdian/dashboard2y2/internal/storage"
	"github.com/Hafiizherdian/dashboard2y2/pkg/logger"
)

type dbKey struct{}

func newDBURLFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		Value:   cfg.Database.URL(),
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newAreaFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "area",
		Usage: "Area id assigned to every imported record",
	}
}

func initDB(c *cli.Context) error {
	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*sqlx.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sqlx.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*sqlx.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not found in context")
	}
	return db, nil
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	app := &cli.App{
		Name:  "seed",
		Usage: "Maintain the sales database and bulk load sales spreadsheets",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Flags:  []cli.Flag{newDBURLFlag(cfg)},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "import",
				Usage: "Import every .csv, .xlsx and .xls file found under a directory",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
					newAreaFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory containing sales spreadsheets",
						Value:   "./data/sales",
						EnvVars: []string{"SALES_IMPORT_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of files imported concurrently",
						Value: cfg.App.ImportWorkers,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runImport(c, cfg)
				},
			},
			{
				Name:  "drive",
				Usage: "Import the spreadsheets of a Google Drive folder",
				Flags: []cli.Flag{
					newDBURLFlag(cfg),
					newAreaFlag(),
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Drive folder id",
						Value: cfg.Drive.FolderID,
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "Drive folder path, used when --folder is empty",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					return runDriveImport(c, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	return postgres.Migrate(c.Context, db.DB)
}

func runImport(c *cli.Context, cfg *config.Config) error {
	salesService, err := newSalesService(c, cfg)
	if err != nil {
		return err
	}

	importCfg := pipeline.DefaultImportConfig()
	if workers := c.Int("workers"); workers > 0 {
		importCfg.WorkerCount = workers
	}
	importCfg.Area = c.String("area")

	dir := c.String("dir")
	log.Info().Str("dir", dir).Int("workers", importCfg.WorkerCount).Msg("Starting sales import")

	summary, err := pipeline.NewOrchestrator(salesService, importCfg).Run(c.Context, dir)
	if err != nil {
		return fmt.Errorf("import %s: %w", dir, err)
	}

	for _, job := range summary.Jobs {
		event := log.Info()
		if job.Status == pipeline.FileStatusFailed {
			event = log.Warn()
		}
		event.Str("file", job.Path).
			Str("status", string(job.Status)).
			Int("records", job.Records).
			Int("rejected", job.Rejected).
			Str("error", job.ErrorMessage).
			Msg("File imported")
	}

	log.Info().
		Int("files", len(summary.Jobs)).
		Int("completed", summary.Count(pipeline.FileStatusCompleted)).
		Int("skipped", summary.Count(pipeline.FileStatusSkipped)).
		Int("failed", summary.Count(pipeline.FileStatusFailed)).
		Int("records", summary.TotalRecords()).
		Dur("duration", summary.Duration).
		Msg("Sales import finished")

	if failed := summary.Count(pipeline.FileStatusFailed); failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", failed)
	}
	return nil
}

func runDriveImport(c *cli.Context, cfg *config.Config) error {
	driveService, err := drive.NewService(c.Context, cfg.Drive.CredentialsJSON)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Drive service: %w", err)
	}

	folderID := c.String("folder")
	if folderID == "" {
		path := c.String("path")
		if path == "" {
			return fmt.Errorf("either --folder or --path is required")
		}
		if folderID, err = driveService.FindFolderByPath(c.Context, path); err != nil {
			return err
		}
	}

	salesService, err := newSalesService(c, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	ingest := drive.NewIngestService(driveService, salesService, cfg.App.MaxUploadBytes)
	results, err := ingest.IngestFolder(c.Context, folderID, c.String("area"))
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
			log.Warn().Str("file", res.Name).Str("error", res.Error).Msg("Drive file not imported")
			continue
		}
		log.Info().Str("file", res.Name).Int("records", res.Result.RecordCount).Msg("Drive file imported")
	}

	log.Info().
		Str("folder", folderID).
		Int("files", len(results)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Drive import finished")
	return nil
}

func newSalesService(c *cli.Context, cfg *config.Config) (*service.SalesService, error) {
	db, err := dbFrom(c)
	if err != nil {
		return nil, err
	}

	salesCache, err := cache.NewSalesCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	objectStore, err := storage.New(c.Context, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	uploadedBy := cfg.App.UploadedBy
	if uploadedBy == "" {
		uploadedBy = "seed"
	}

	return service.NewSalesService(
		postgres.NewSalesRepository(postgres.Wrap(db, cfg.Database.MaxConcurrent)),
		repository.NewFileAreaStore(cfg.App.AreasFile),
		salesCache,
		objectStore,
		uploadedBy,
	), nil
}
