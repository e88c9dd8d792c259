package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/db"
	"adflow-server/src/models"
)

func GetCampaignsSQL(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Campaign, error) {
	cacheKey := fmt.Sprintf("campaigns:%d", userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		if campaigns, ok := cached.([]models.Campaign); ok {
			return campaigns, nil
		}
	}

	query := `
		SELECT id, user_id, external_id, name, status, objective, daily_budget, last_synced_at, created_at, updated_at
		FROM campaigns
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(&c.ID, &c.UserID, &c.ExternalID, &c.Name, &c.Status, &c.Objective, &c.DailyBudget, &c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetCampaignCache(cacheKey, campaigns)
	return campaigns, nil
}

func GetCampaignByID(ctx context.Context, pool *pgxpool.Pool, userID, campaignID int64) (*models.Campaign, error) {
	query := `
		SELECT id, user_id, external_id, name, status, objective, daily_budget, last_synced_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1 AND user_id = $2
	`
	var c models.Campaign
	err := pool.QueryRow(ctx, query, campaignID, userID).
		Scan(&c.ID, &c.UserID, &c.ExternalID, &c.Name, &c.Status, &c.Objective, &c.DailyBudget, &c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCampaign inserts or refreshes a campaign by its Meta campaign id.
// Returns the local campaign id.
func UpsertCampaign(ctx context.Context, pool *pgxpool.Pool, c *models.Campaign) (int64, error) {
	query := `
		INSERT INTO campaigns (user_id, external_id, name, status, objective, daily_budget, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, external_id) DO UPDATE
		SET name = EXCLUDED.name, status = EXCLUDED.status, objective = EXCLUDED.objective,
		    daily_budget = EXCLUDED.daily_budget, last_synced_at = NOW(), updated_at = NOW()
		RETURNING id
	`
	var id int64
	err := pool.QueryRow(ctx, query, c.UserID, c.ExternalID, c.Name, c.Status, c.Objective, c.DailyBudget).Scan(&id)
	if err != nil {
		return 0, err
	}
	db.ClearAllCampaignCaches()
	return id, nil
}

// UpdateCampaignFields mutates status and/or named campaign columns. Only
// name, objective and daily_budget are writable through props; anything
// else is rejected so rules cannot reach arbitrary columns.
func UpdateCampaignFields(ctx context.Context, pool *pgxpool.Pool, userID, campaignID int64, status string, props map[string]string) error {
	if status != "" {
		cmd, err := pool.Exec(ctx,
			`UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
			status, campaignID, userID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return fmt.Errorf("campaign not found")
		}
	}

	for field, value := range props {
		var query string
		switch field {
		case "name":
			query = `UPDATE campaigns SET name = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
		case "objective":
			query = `UPDATE campaigns SET objective = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
		case "daily_budget":
			query = `UPDATE campaigns SET daily_budget = $1::numeric, updated_at = NOW() WHERE id = $2 AND user_id = $3`
		default:
			return fmt.Errorf("campaign field %q is not updatable", field)
		}
		if _, err := pool.Exec(ctx, query, value, campaignID, userID); err != nil {
			return err
		}
	}

	db.ClearAllCampaignCaches()
	return nil
}

func DeleteCampaign(ctx context.Context, pool *pgxpool.Pool, userID, campaignID int64) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND user_id = $2`, campaignID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("campaign not found")
	}
	db.ClearAllCampaignCaches()
	return nil
}

func InsertCampaignAnalytics(ctx context.Context, pool *pgxpool.Pool, a *models.CampaignAnalytics) error {
	query := `
		INSERT INTO campaign_analytics (campaign_id, spend, impressions, clicks, conversions, revenue, roi, ctr, cpc, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := pool.Exec(ctx, query, a.CampaignID, a.Spend, a.Impressions, a.Clicks, a.Conversions, a.Revenue, a.ROI, a.CTR, a.CPC)
	return err
}

func GetCampaignAnalytics(ctx context.Context, pool *pgxpool.Pool, userID, campaignID int64, limit int) ([]models.CampaignAnalytics, error) {
	if limit <= 0 {
		limit = 30
	}
	query := `
		SELECT a.id, a.campaign_id, a.spend, a.impressions, a.clicks, a.conversions, a.revenue, a.roi, a.ctr, a.cpc, a.captured_at
		FROM campaign_analytics a
		JOIN campaigns c ON a.campaign_id = c.id
		WHERE c.id = $1 AND c.user_id = $2
		ORDER BY a.captured_at DESC
		LIMIT $3
	`
	rows, err := pool.Query(ctx, query, campaignID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.CampaignAnalytics
	for rows.Next() {
		var a models.CampaignAnalytics
		err := rows.Scan(&a.ID, &a.CampaignID, &a.Spend, &a.Impressions, &a.Clicks, &a.Conversions, &a.Revenue, &a.ROI, &a.CTR, &a.CPC, &a.CapturedAt)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, a)
	}
	return snapshots, rows.Err()
}
