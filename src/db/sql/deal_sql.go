package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/db"
	"adflow-server/src/models"
)

func GetDealsSQL(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Deal, error) {
	cacheKey := fmt.Sprintf("deals:%d", userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		if deals, ok := cached.([]models.Deal); ok {
			return deals, nil
		}
	}

	query := `
		SELECT id, user_id, external_id, name, stage, amount, pipeline, properties, created_at, updated_at
		FROM deals
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		var props []byte
		err := rows.Scan(&d.ID, &d.UserID, &d.ExternalID, &d.Name, &d.Stage, &d.Amount, &d.Pipeline, &props, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if len(props) > 0 {
			if err := json.Unmarshal(props, &d.Properties); err != nil {
				return nil, fmt.Errorf("failed to decode deal properties: %w", err)
			}
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetDealCache(cacheKey, deals)
	return deals, nil
}

func GetDealByID(ctx context.Context, pool *pgxpool.Pool, userID, dealID int64) (*models.Deal, error) {
	query := `
		SELECT id, user_id, external_id, name, stage, amount, pipeline, properties, created_at, updated_at
		FROM deals
		WHERE id = $1 AND user_id = $2
	`
	var d models.Deal
	var props []byte
	err := pool.QueryRow(ctx, query, dealID, userID).
		Scan(&d.ID, &d.UserID, &d.ExternalID, &d.Name, &d.Stage, &d.Amount, &d.Pipeline, &props, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(props) > 0 {
		if err := json.Unmarshal(props, &d.Properties); err != nil {
			return nil, fmt.Errorf("failed to decode deal properties: %w", err)
		}
	}
	return &d, nil
}

func CreateDeal(ctx context.Context, pool *pgxpool.Pool, deal *models.Deal) (*models.Deal, error) {
	props, err := json.Marshal(deal.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deal properties: %w", err)
	}
	query := `
		INSERT INTO deals (user_id, external_id, name, stage, amount, pipeline, properties)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = pool.QueryRow(ctx, query, deal.UserID, deal.ExternalID, deal.Name, deal.Stage, deal.Amount, deal.Pipeline, props).
		Scan(&deal.ID, &deal.CreatedAt, &deal.UpdatedAt)
	if err != nil {
		return nil, err
	}
	db.ClearAllDealCaches()
	return deal, nil
}

// CreateDealFromProps builds a deal from an automation action's flat
// property map. Recognized keys move into columns, the rest stay in the
// jsonb properties blob.
func CreateDealFromProps(ctx context.Context, pool *pgxpool.Pool, userID int64, props map[string]string) (*models.Deal, error) {
	deal := &models.Deal{
		UserID:     userID,
		Name:       props["name"],
		Stage:      props["stage"],
		Pipeline:   props["pipeline"],
		Properties: map[string]string{},
	}
	if deal.Name == "" {
		deal.Name = "Untitled deal"
	}
	if deal.Stage == "" {
		deal.Stage = "appointmentscheduled"
	}
	if raw, ok := props["amount"]; ok {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid deal amount %q: %w", raw, err)
		}
		deal.Amount = amount
	}
	for k, v := range props {
		switch k {
		case "name", "stage", "amount", "pipeline":
		default:
			deal.Properties[k] = v
		}
	}
	return CreateDeal(ctx, pool, deal)
}

// UpdateDealFromProps merges an automation action's property map into an
// existing deal owned by userID.
func UpdateDealFromProps(ctx context.Context, pool *pgxpool.Pool, userID, dealID int64, props map[string]string) error {
	deal, err := GetDealByID(ctx, pool, userID, dealID)
	if err != nil {
		return fmt.Errorf("deal not found: %w", err)
	}

	if deal.Properties == nil {
		deal.Properties = map[string]string{}
	}
	for k, v := range props {
		switch k {
		case "name":
			deal.Name = v
		case "stage":
			deal.Stage = v
		case "pipeline":
			deal.Pipeline = v
		case "amount":
			amount, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid deal amount %q: %w", v, err)
			}
			deal.Amount = amount
		default:
			deal.Properties[k] = v
		}
	}

	encoded, err := json.Marshal(deal.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode deal properties: %w", err)
	}
	query := `
		UPDATE deals
		SET name = $1, stage = $2, amount = $3, pipeline = $4, properties = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
	`
	cmd, err := pool.Exec(ctx, query, deal.Name, deal.Stage, deal.Amount, deal.Pipeline, encoded, dealID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("deal not found")
	}
	db.ClearAllDealCaches()
	return nil
}

// UpsertDealByExternalID refreshes a synced HubSpot deal.
func UpsertDealByExternalID(ctx context.Context, pool *pgxpool.Pool, deal *models.Deal) error {
	props, err := json.Marshal(deal.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode deal properties: %w", err)
	}
	query := `
		INSERT INTO deals (user_id, external_id, name, stage, amount, pipeline, properties)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, external_id) DO UPDATE
		SET name = EXCLUDED.name, stage = EXCLUDED.stage, amount = EXCLUDED.amount,
		    pipeline = EXCLUDED.pipeline, properties = EXCLUDED.properties, updated_at = NOW()
	`
	_, err = pool.Exec(ctx, query, deal.UserID, deal.ExternalID, deal.Name, deal.Stage, deal.Amount, deal.Pipeline, props)
	if err != nil {
		return err
	}
	db.ClearAllDealCaches()
	return nil
}

func DeleteDeal(ctx context.Context, pool *pgxpool.Pool, userID, dealID int64) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM deals WHERE id = $1 AND user_id = $2`, dealID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("deal not found")
	}
	db.ClearAllDealCaches()
	return nil
}
