package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/db"
)

func ClearCache(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheName := chi.URLParam(r, "cache_name")

		switch cacheName {
		case "campaigns":
			db.ClearAllCampaignCaches()
		case "deals":
			db.ClearAllDealCaches()
		case "rules":
			db.ClearAllRuleCaches()
		case "all":
			db.ClearAllCampaignCaches()
			db.ClearAllDealCaches()
			db.ClearAllRuleCaches()
		default:
			http.Error(w, "unknown cache name", http.StatusBadRequest)
			return
		}

		log.Printf("INFO: Cleared %s cache(s)", cacheName)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "cache cleared"})
	}
}
