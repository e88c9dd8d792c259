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

func GetContacts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		contacts, err := db.GetContactsSQL(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get contacts for user %d: %v", userID, err)
			http.Error(w, "failed to get contacts", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(contacts)
	}
}

func CreateContact(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Company   string `json:"company"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create contact request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if !util.ValidateEmail(req.Email) {
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		contact := &models.Contact{
			UserID:    userID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Company:   req.Company,
		}
		created, err := db.CreateContact(r.Context(), pool, contact)
		if err != nil {
			log.Printf("ERROR: Failed to create contact for user %d: %v", userID, err)
			http.Error(w, "failed to create contact", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Created contact id %d for user %d", created.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func DeleteContact(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		contactID, err := parseIDParam(r, "contact_id")
		if err != nil {
			log.Printf("ERROR: Invalid contact id param: %s", chi.URLParam(r, "contact_id"))
			http.Error(w, "invalid contact id", http.StatusBadRequest)
			return
		}

		if err := db.DeleteContact(r.Context(), pool, userID, contactID); err != nil {
			log.Printf("ERROR: Failed to delete contact %d for user %d: %v", contactID, userID, err)
			http.Error(w, "failed to delete contact", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Deleted contact %d for user %d", contactID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "contact deleted"})
	}
}
