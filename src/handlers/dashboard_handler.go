package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	db "adflow-server/src/db/sql"
)

func GetDashboardSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		summary, err := db.GetDashboardSummary(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to build dashboard summary for user %d: %v", userID, err)
			http.Error(w, "failed to build dashboard summary", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}
