package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/automation"
	"adflow-server/src/db"
	sql "adflow-server/src/db/sql"
	"adflow-server/src/metaads"
	"adflow-server/src/models"
	"adflow-server/src/util"
)

type automationRuleRequest struct {
	Name       string             `json:"name"`
	Type       models.RuleType    `json:"type"`
	Status     models.RuleStatus  `json:"status"`
	Conditions []models.Condition `json:"conditions"`
	Actions    []models.Action    `json:"actions"`
}

func (req *automationRuleRequest) validate() string {
	if !util.ValidateName(req.Name) {
		return "rule name is required"
	}
	if !req.Type.IsValid() {
		return "rule type must be one of matching, trigger, workflow, sync"
	}
	if req.Status == "" {
		req.Status = models.RuleStatusActive
	}
	if req.Status != models.RuleStatusActive && req.Status != models.RuleStatusInactive {
		return "rule status must be active or inactive"
	}
	if len(req.Actions) == 0 {
		return "at least one action is required"
	}
	return ""
}

func CreateAutomationRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req automationRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create automation rule request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		rule := &models.AutomationRule{
			UserID:     userID,
			Name:       req.Name,
			Type:       req.Type,
			Status:     req.Status,
			Conditions: req.Conditions,
			Actions:    req.Actions,
		}
		created, err := sql.CreateAutomationRule(r.Context(), pool, rule)
		if err != nil {
			log.Printf("ERROR: Failed to create automation rule for user %d: %v", userID, err)
			http.Error(w, "failed to create automation rule", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Created automation rule %s for user %d, name %s", created.ID, userID, created.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetAllAutomationRules(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		rules, err := sql.GetAllAutomationRules(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get automation rules for user %d: %v", userID, err)
			http.Error(w, "failed to get automation rules", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rules)
	}
}

func GetAutomationRuleByID(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		ruleID := chi.URLParam(r, "rule_id")

		rule, err := sql.GetAutomationRuleByID(r.Context(), pool, userID, ruleID)
		if err != nil {
			log.Printf("ERROR: Automation rule %s not found for user %d: %v", ruleID, userID, err)
			http.Error(w, "automation rule not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rule)
	}
}

func UpdateAutomationRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		ruleID := chi.URLParam(r, "rule_id")

		var req automationRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update automation rule request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if msg := req.validate(); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		rule := &models.AutomationRule{
			ID:         ruleID,
			UserID:     userID,
			Name:       req.Name,
			Type:       req.Type,
			Status:     req.Status,
			Conditions: req.Conditions,
			Actions:    req.Actions,
		}
		updated, err := sql.UpdateAutomationRule(r.Context(), pool, rule)
		if err != nil {
			log.Printf("ERROR: Failed to update automation rule %s for user %d: %v", ruleID, userID, err)
			http.Error(w, "failed to update automation rule", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Updated automation rule %s for user %d", updated.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

func DeleteAutomationRule(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		ruleID := chi.URLParam(r, "rule_id")

		if err := sql.DeleteAutomationRule(r.Context(), pool, userID, ruleID); err != nil {
			log.Printf("ERROR: Failed to delete automation rule %s for user %d: %v", ruleID, userID, err)
			http.Error(w, "failed to delete automation rule", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Deleted automation rule %s for user %d", ruleID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "automation rule deleted"})
	}
}

// ExecuteAutomations runs one orchestrator pass for the authenticated user
// and the requested rule type.
func ExecuteAutomations(pool *pgxpool.Pool, metaClient *metaads.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Type models.RuleType `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode execute automations request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if !req.Type.IsValid() {
			http.Error(w, "rule type must be one of matching, trigger, workflow, sync", http.StatusBadRequest)
			return
		}

		store := &sql.AutomationStore{Pool: pool}
		orchestrator := &automation.Orchestrator{
			Rules:   store,
			Records: store,
			Executor: &automation.Executor{
				Store:    store,
				Logs:     store,
				Notifier: store,
				Syncer:   &metaads.Syncer{Client: metaClient, Pool: pool},
			},
			Locks: &db.RunLock{Pool: pool},
		}

		summary, err := orchestrator.Run(r.Context(), userID, req.Type)
		if err != nil {
			if errors.Is(err, automation.ErrRunInProgress) {
				log.Printf("INFO: Rejected concurrent automation run for user %d type %s", userID, req.Type)
				http.Error(w, "an automation run is already in progress", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Automation run failed for user %d type %s: %v", userID, req.Type, err)
			http.Error(w, "automation run failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}

func GetAutomationLogs(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		ruleID := r.URL.Query().Get("rule_id")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		logs, err := sql.GetAutomationLogs(r.Context(), pool, userID, ruleID, limit)
		if err != nil {
			log.Printf("ERROR: Failed to get automation logs for user %d: %v", userID, err)
			http.Error(w, "failed to get automation logs", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logs)
	}
}
