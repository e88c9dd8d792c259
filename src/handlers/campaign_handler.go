package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "adflow-server/src/db/sql"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func GetCampaigns(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		campaigns, err := db.GetCampaignsSQL(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get campaigns for user %d: %v", userID, err)
			http.Error(w, "failed to get campaigns", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(campaigns)
	}
}

func GetCampaignByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		campaignID, err := parseIDParam(r, "campaign_id")
		if err != nil {
			log.Printf("ERROR: Invalid campaign id param: %s", chi.URLParam(r, "campaign_id"))
			http.Error(w, "invalid campaign id", http.StatusBadRequest)
			return
		}

		campaign, err := db.GetCampaignByID(r.Context(), pool, userID, campaignID)
		if err != nil {
			log.Printf("ERROR: Campaign id %d not found for user %d: %v", campaignID, userID, err)
			http.Error(w, "campaign not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(campaign)
	}
}

func UpdateCampaignStatus(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		campaignID, err := parseIDParam(r, "campaign_id")
		if err != nil {
			log.Printf("ERROR: Invalid campaign id param: %s", chi.URLParam(r, "campaign_id"))
			http.Error(w, "invalid campaign id", http.StatusBadRequest)
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			log.Printf("ERROR: Failed to decode campaign status request for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := db.UpdateCampaignFields(r.Context(), pool, userID, campaignID, req.Status, nil); err != nil {
			log.Printf("ERROR: Failed to update campaign %d status for user %d: %v", campaignID, userID, err)
			http.Error(w, "failed to update campaign", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Campaign %d status set to %s for user %d", campaignID, req.Status, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "campaign updated"})
	}
}

func DeleteCampaign(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		campaignID, err := parseIDParam(r, "campaign_id")
		if err != nil {
			log.Printf("ERROR: Invalid campaign id param: %s", chi.URLParam(r, "campaign_id"))
			http.Error(w, "invalid campaign id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteCampaign(r.Context(), pool, userID, campaignID); err != nil {
			log.Printf("ERROR: Failed to delete campaign %d for user %d: %v", campaignID, userID, err)
			http.Error(w, "failed to delete campaign", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Deleted campaign %d for user %d", campaignID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "campaign deleted"})
	}
}

func GetCampaignAnalytics(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		campaignID, err := parseIDParam(r, "campaign_id")
		if err != nil {
			log.Printf("ERROR: Invalid campaign id param: %s", chi.URLParam(r, "campaign_id"))
			http.Error(w, "invalid campaign id", http.StatusBadRequest)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		snapshots, err := db.GetCampaignAnalytics(r.Context(), pool, userID, campaignID, limit)
		if err != nil {
			log.Printf("ERROR: Failed to get analytics for campaign %d (user %d): %v", campaignID, userID, err)
			http.Error(w, "failed to get analytics", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshots)
	}
}
