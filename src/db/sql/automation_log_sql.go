package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/models"
)

// InsertAutomationLog appends one execution-attempt record. Logs are never
// updated or deleted through the application.
func InsertAutomationLog(ctx context.Context, pool *pgxpool.Pool, entry *models.AutomationLog) error {
	var details []byte
	if entry.Details != nil {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode log details: %w", err)
		}
		details = encoded
	}
	query := `
		INSERT INTO automation_logs (id, user_id, rule_id, status, message, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := pool.Exec(ctx, query, entry.ID, entry.UserID, entry.RuleID, entry.Status, entry.Message, details, entry.CreatedAt)
	return err
}

func GetAutomationLogs(ctx context.Context, pool *pgxpool.Pool, userID int64, ruleID string, limit int) ([]models.AutomationLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, user_id, rule_id, status, message, details, created_at
		FROM automation_logs
		WHERE user_id = $1 AND ($2 = '' OR rule_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := pool.Query(ctx, query, userID, ruleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AutomationLog
	for rows.Next() {
		var entry models.AutomationLog
		var details []byte
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.RuleID, &entry.Status, &entry.Message, &details, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to decode log details: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
