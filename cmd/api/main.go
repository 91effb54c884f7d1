package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"hypolab/adapters/api"
	"hypolab/app"
	"hypolab/internal"
	"hypolab/internal/config"
	"hypolab/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logger := internal.NewDefaultLogger()
	store := session.NewStore()
	svc := app.NewAnalysisService(store, cfg.Analysis.Alpha, logger)
	service := api.NewService(svc, logger)

	addr := ":" + cfg.Server.APIPort
	log.Printf("api listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, service.Router()))
}
