package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	db "adflow-server/src/db/sql"
	"adflow-server/src/metaads"
	"adflow-server/src/util"
)

// ConnectMetaAccount stores the user's Meta access token and ad account id.
func ConnectMetaAccount(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			AccessToken string `json:"access_token"`
			AdAccountID string `json:"ad_account_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode connect meta request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.AccessToken == "" || req.AdAccountID == "" {
			http.Error(w, "access_token and ad_account_id are required", http.StatusBadRequest)
			return
		}

		if err := db.SaveMetaCredentials(r.Context(), pool, userID, req.AccessToken, req.AdAccountID); err != nil {
			log.Printf("ERROR: Failed to save meta credentials for user %d: %v", userID, err)
			http.Error(w, "failed to save meta credentials", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Meta account %s connected for user %d", req.AdAccountID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "meta account connected"})
	}
}

// SyncMetaCampaigns pulls campaigns and insight snapshots from the Meta API
// into local storage.
func SyncMetaCampaigns(pool *pgxpool.Pool, client *metaads.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		syncer := &metaads.Syncer{Client: client, Pool: pool}
		if err := syncer.SyncCampaigns(r.Context(), userID); err != nil {
			log.Printf("ERROR: Meta campaign sync failed for user %d: %v", userID, err)
			http.Error(w, "campaign sync failed", http.StatusBadGateway)
			return
		}

		log.Printf("INFO: Meta campaign sync completed for user %d", userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "campaigns synced"})
	}
}

// MetaWebhook handles Meta's webhook callbacks. GET answers the subscription
// verification challenge, POST accepts change notifications after checking
// the payload signature.
func MetaWebhook(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			mode := r.URL.Query().Get("hub.mode")
			token := r.URL.Query().Get("hub.verify_token")
			challenge := r.URL.Query().Get("hub.challenge")

			if mode == "subscribe" && token == os.Getenv("META_VERIFY_TOKEN") {
				w.Write([]byte(challenge))
				return
			}
			log.Printf("ERROR: Meta webhook verification failed, mode %s", mode)
			http.Error(w, "verification failed", http.StatusForbidden)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			log.Printf("ERROR: Failed to read meta webhook body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		ok, err := util.VerifyMetaWebhook(body, r.Header.Get("X-Hub-Signature-256"), os.Getenv("META_APP_SECRET"))
		if !ok {
			log.Printf("ERROR: Meta webhook signature check failed: %v", err)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}

		log.Printf("INFO: Meta webhook payload accepted, %d bytes", len(body))
		w.WriteHeader(http.StatusOK)
	}
}
