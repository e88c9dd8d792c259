package main

import (
	"log"
	"net/http"

	"adflow-server/src/api"
	"adflow-server/src/config"
	"adflow-server/src/db"
	"adflow-server/src/hubspot"
	"adflow-server/src/metaads"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	db.InitCache()

	metaClient := metaads.NewClient(cfg.MetaAPIURL)
	hubspotClient := hubspot.NewClient(cfg.HubSpotAPIURL)

	// Router
	router := api.NewRouter(pool, metaClient, hubspotClient)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
