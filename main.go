package main

import (
	"context"
	"embed"
	"log"

	"github.com/joho/godotenv"

	"hypolab/adapters/ingest/tabular"
	"hypolab/app"
	"hypolab/internal"
	"hypolab/internal/config"
	"hypolab/internal/session"
	"hypolab/ui"
)

//go:embed ui/templates/*
var embeddedFiles embed.FS

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logger := internal.NewDefaultLogger()
	store := session.NewStore()
	svc := app.NewAnalysisService(store, cfg.Analysis.Alpha, logger)

	server := ui.NewServer(svc, logger)
	if err := server.Initialize(embeddedFiles); err != nil {
		log.Fatal("failed to initialize ui: ", err)
	}

	// Optionally preload a dataset into a fresh session for local work
	if cfg.Data.File != "" {
		if err := preload(svc, cfg.Data.File); err != nil {
			log.Fatal("failed to preload dataset: ", err)
		}
	}

	log.Fatal(server.Run(cfg.Server.Port))
}

func preload(svc *app.AnalysisService, path string) error {
	table, err := tabular.NewReader(path).ReadTable()
	if err != nil {
		return err
	}
	ds, err := table.Dataset(nil)
	if err != nil {
		return err
	}
	sess := svc.CreateSession()
	return svc.LoadDataset(context.Background(), sess.ID(), ds)
}
