// Command ingest initializes the schema and loads datasets into the store,
// either from a JSON dump or from the synthetic generator.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/config"
	"github.com/finwell-io/wellness-service/internal/ingest"
	"github.com/finwell-io/wellness-service/internal/repository"
)

func main() {
	var (
		initSchema = flag.Bool("init", false, "create the schema before loading")
		file       = flag.String("file", "", "JSON dataset file to load")
		generate   = flag.Bool("generate", false, "load a synthetic dataset")
		customers  = flag.Int("customers", 20, "synthetic customer count")
		windowDays = flag.Int("days", 180, "synthetic history window in days")
		seed       = flag.Int64("seed", 1, "synthetic generator seed")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)
	ctx := context.Background()

	if *initSchema {
		if err := repo.InitSchema(ctx); err != nil {
			logger.Fatalf("Failed to initialize schema: %v", err)
		}
		logger.Info("Schema initialized")
	}

	loader := ingest.NewLoader(repo, logger)

	switch {
	case *file != "":
		if err := loader.LoadFile(ctx, *file); err != nil {
			logger.Fatalf("Failed to load dataset: %v", err)
		}
	case *generate:
		ds := ingest.Generate(ingest.GenerateConfig{
			Customers:  *customers,
			WindowDays: *windowDays,
			Seed:       *seed,
		}, time.Now())
		if err := loader.Load(ctx, ds); err != nil {
			logger.Fatalf("Failed to load synthetic dataset: %v", err)
		}
	default:
		if !*initSchema {
			logger.Fatal("Nothing to do: pass -init, -file or -generate")
		}
	}
}
