package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/db"
	"adflow-server/src/models"
)

func scanRuleJSON(r *models.AutomationRule, conditions, actions []byte) error {
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &r.Conditions); err != nil {
			return fmt.Errorf("failed to decode rule conditions: %w", err)
		}
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &r.Actions); err != nil {
			return fmt.Errorf("failed to decode rule actions: %w", err)
		}
	}
	return nil
}

func CreateAutomationRule(ctx context.Context, pool *pgxpool.Pool, rule *models.AutomationRule) (*models.AutomationRule, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule actions: %w", err)
	}

	rule.ID = uuid.NewString()
	query := `
		INSERT INTO automation_rules (id, user_id, name, type, status, conditions, actions, next_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err = pool.QueryRow(ctx, query, rule.ID, rule.UserID, rule.Name, rule.Type, rule.Status, conditions, actions, rule.NextRun).
		Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	db.ClearAllRuleCaches()
	return rule, nil
}

func GetAutomationRuleByID(ctx context.Context, pool *pgxpool.Pool, userID int64, ruleID string) (*models.AutomationRule, error) {
	query := `
		SELECT id, user_id, name, type, status, conditions, actions, last_run, next_run, created_at, updated_at
		FROM automation_rules
		WHERE id = $1 AND user_id = $2
	`
	var r models.AutomationRule
	var conditions, actions []byte
	err := pool.QueryRow(ctx, query, ruleID, userID).
		Scan(&r.ID, &r.UserID, &r.Name, &r.Type, &r.Status, &conditions, &actions, &r.LastRun, &r.NextRun, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := scanRuleJSON(&r, conditions, actions); err != nil {
		return nil, err
	}
	return &r, nil
}

func GetAllAutomationRules(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.AutomationRule, error) {
	cacheKey := fmt.Sprintf("rules:%d", userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		if rules, ok := cached.([]models.AutomationRule); ok {
			return rules, nil
		}
	}

	query := `
		SELECT id, user_id, name, type, status, conditions, actions, last_run, next_run, created_at, updated_at
		FROM automation_rules
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.AutomationRule
	for rows.Next() {
		var r models.AutomationRule
		var conditions, actions []byte
		err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Type, &r.Status, &conditions, &actions, &r.LastRun, &r.NextRun, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := scanRuleJSON(&r, conditions, actions); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetRuleCache(cacheKey, rules)
	return rules, nil
}

// GetActiveAutomationRules loads the rules one orchestrator pass evaluates,
// in creation order so matching stays reproducible across runs.
func GetActiveAutomationRules(ctx context.Context, pool *pgxpool.Pool, userID int64, ruleType models.RuleType) ([]models.AutomationRule, error) {
	query := `
		SELECT id, user_id, name, type, status, conditions, actions, last_run, next_run, created_at, updated_at
		FROM automation_rules
		WHERE user_id = $1 AND type = $2 AND status = 'active'
		ORDER BY created_at, id
	`
	rows, err := pool.Query(ctx, query, userID, ruleType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.AutomationRule
	for rows.Next() {
		var r models.AutomationRule
		var conditions, actions []byte
		err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Type, &r.Status, &conditions, &actions, &r.LastRun, &r.NextRun, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := scanRuleJSON(&r, conditions, actions); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func UpdateAutomationRule(ctx context.Context, pool *pgxpool.Pool, rule *models.AutomationRule) (*models.AutomationRule, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule actions: %w", err)
	}

	query := `
		UPDATE automation_rules
		SET name = $1, type = $2, status = $3, conditions = $4, actions = $5, next_run = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING last_run, created_at, updated_at
	`
	err = pool.QueryRow(ctx, query, rule.Name, rule.Type, rule.Status, conditions, actions, rule.NextRun, rule.ID, rule.UserID).
		Scan(&rule.LastRun, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	db.ClearAllRuleCaches()
	return rule, nil
}

func DeleteAutomationRule(ctx context.Context, pool *pgxpool.Pool, userID int64, ruleID string) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM automation_rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("automation rule not found")
	}
	db.ClearAllRuleCaches()
	return nil
}

// TouchLastRun stamps last_run once per run for every rule that executed.
func TouchLastRun(ctx context.Context, pool *pgxpool.Pool, userID int64, ruleIDs []string, ranAt time.Time) error {
	if len(ruleIDs) == 0 {
		return nil
	}
	query := `UPDATE automation_rules SET last_run = $1 WHERE user_id = $2 AND id = ANY($3)`
	_, err := pool.Exec(ctx, query, ranAt, userID, ruleIDs)
	if err != nil {
		return err
	}
	db.ClearAllRuleCaches()
	return nil
}
