package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "adflow-server/src/db/sql"
	"adflow-server/src/models"
	"adflow-server/src/util"
)

func CreateDeal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Name       string            `json:"name"`
			Stage      string            `json:"stage"`
			Amount     float64           `json:"amount"`
			Pipeline   string            `json:"pipeline"`
			Properties map[string]string `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create deal request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if !util.ValidateName(req.Name) {
			http.Error(w, "deal name is required", http.StatusBadRequest)
			return
		}

		deal := &models.Deal{
			UserID:     userID,
			Name:       req.Name,
			Stage:      req.Stage,
			Amount:     req.Amount,
			Pipeline:   req.Pipeline,
			Properties: req.Properties,
		}
		created, err := db.CreateDeal(r.Context(), pool, deal)
		if err != nil {
			log.Printf("ERROR: Failed to create deal for user %d: %v", userID, err)
			http.Error(w, "failed to create deal", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Created deal id %d for user %d, name %s", created.ID, userID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetDeals(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		deals, err := db.GetDealsSQL(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get deals for user %d: %v", userID, err)
			http.Error(w, "failed to get deals", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(deals)
	}
}

func GetDealByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		dealID, err := parseIDParam(r, "deal_id")
		if err != nil {
			log.Printf("ERROR: Invalid deal id param: %s", chi.URLParam(r, "deal_id"))
			http.Error(w, "invalid deal id", http.StatusBadRequest)
			return
		}

		deal, err := db.GetDealByID(r.Context(), pool, userID, dealID)
		if err != nil {
			log.Printf("ERROR: Deal id %d not found for user %d: %v", dealID, userID, err)
			http.Error(w, "deal not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(deal)
	}
}

func UpdateDeal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		dealID, err := parseIDParam(r, "deal_id")
		if err != nil {
			log.Printf("ERROR: Invalid deal id param: %s", chi.URLParam(r, "deal_id"))
			http.Error(w, "invalid deal id", http.StatusBadRequest)
			return
		}

		var props map[string]string
		if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
			log.Printf("ERROR: Failed to decode update deal request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := db.UpdateDealFromProps(r.Context(), pool, userID, dealID, props); err != nil {
			log.Printf("ERROR: Failed to update deal %d for user %d: %v", dealID, userID, err)
			http.Error(w, "failed to update deal", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Updated deal %d for user %d", dealID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "deal updated"})
	}
}

func DeleteDeal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		dealID, err := parseIDParam(r, "deal_id")
		if err != nil {
			log.Printf("ERROR: Invalid deal id param: %s", chi.URLParam(r, "deal_id"))
			http.Error(w, "invalid deal id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteDeal(r.Context(), pool, userID, dealID); err != nil {
			log.Printf("ERROR: Failed to delete deal %d for user %d: %v", dealID, userID, err)
			http.Error(w, "failed to delete deal", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Deleted deal %d for user %d", dealID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "deal deleted"})
	}
}
