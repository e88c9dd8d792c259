package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	db "adflow-server/src/db/sql"
	"adflow-server/src/hubspot"
	"adflow-server/src/models"
)

// ConnectHubSpot verifies the supplied private app token against the
// HubSpot API before persisting it.
func ConnectHubSpot(pool *pgxpool.Pool, client *hubspot.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
			log.Printf("ERROR: Failed to decode connect hubspot request body for user %d: %v", userID, err)
			http.Error(w, "access_token is required", http.StatusBadRequest)
			return
		}

		if err := client.Ping(r.Context(), req.AccessToken); err != nil {
			log.Printf("ERROR: HubSpot token check failed for user %d: %v", userID, err)
			http.Error(w, "hubspot token rejected", http.StatusBadGateway)
			return
		}

		if err := db.SaveHubSpotToken(r.Context(), pool, userID, req.AccessToken); err != nil {
			log.Printf("ERROR: Failed to save hubspot token for user %d: %v", userID, err)
			http.Error(w, "failed to save hubspot token", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: HubSpot account connected for user %d", userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "hubspot account connected"})
	}
}

// SyncHubSpotDeals pulls CRM deals into local storage, keyed by external id.
func SyncHubSpotDeals(pool *pgxpool.Pool, client *hubspot.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		user, err := db.GetUserByID(userID, pool)
		if err != nil {
			log.Printf("ERROR: Failed to get user %d for hubspot deal sync: %v", userID, err)
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if user.HubSpotToken == nil {
			http.Error(w, "no hubspot account connected", http.StatusBadRequest)
			return
		}

		deals, err := client.FetchDeals(r.Context(), *user.HubSpotToken)
		if err != nil {
			log.Printf("ERROR: Failed to fetch hubspot deals for user %d: %v", userID, err)
			http.Error(w, "deal sync failed", http.StatusBadGateway)
			return
		}

		for _, rd := range deals {
			externalID := rd.ID
			deal := &models.Deal{
				UserID:     userID,
				ExternalID: &externalID,
				Name:       rd.Name,
				Stage:      rd.Stage,
				Amount:     rd.Amount,
				Pipeline:   rd.Pipeline,
			}
			if err := db.UpsertDealByExternalID(r.Context(), pool, deal); err != nil {
				log.Printf("ERROR: Failed to upsert hubspot deal %s for user %d: %v", rd.ID, userID, err)
				http.Error(w, "deal sync failed", http.StatusInternalServerError)
				return
			}
		}

		log.Printf("INFO: Synced %d HubSpot deals for user %d", len(deals), userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "deals synced",
			"count":   len(deals),
		})
	}
}

// SyncHubSpotContacts pulls CRM contacts into local storage.
func SyncHubSpotContacts(pool *pgxpool.Pool, client *hubspot.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		user, err := db.GetUserByID(userID, pool)
		if err != nil {
			log.Printf("ERROR: Failed to get user %d for hubspot contact sync: %v", userID, err)
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if user.HubSpotToken == nil {
			http.Error(w, "no hubspot account connected", http.StatusBadRequest)
			return
		}

		contacts, err := client.FetchContacts(r.Context(), *user.HubSpotToken)
		if err != nil {
			log.Printf("ERROR: Failed to fetch hubspot contacts for user %d: %v", userID, err)
			http.Error(w, "contact sync failed", http.StatusBadGateway)
			return
		}

		for _, rc := range contacts {
			externalID := rc.ID
			contact := &models.Contact{
				UserID:     userID,
				ExternalID: &externalID,
				Email:      rc.Email,
				FirstName:  rc.FirstName,
				LastName:   rc.LastName,
				Company:    rc.Company,
			}
			if err := db.UpsertContactByExternalID(r.Context(), pool, contact); err != nil {
				log.Printf("ERROR: Failed to upsert hubspot contact %s for user %d: %v", rc.ID, userID, err)
				http.Error(w, "contact sync failed", http.StatusInternalServerError)
				return
			}
		}

		log.Printf("INFO: Synced %d HubSpot contacts for user %d", len(contacts), userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "contacts synced",
			"count":   len(contacts),
		})
	}
}
