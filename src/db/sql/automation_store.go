package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/automation"
	"adflow-server/src/models"
)

// AutomationStore adapts the sql layer to the automation engine's
// collaborator interfaces (RuleSource, RecordSource, RecordStore, LogStore
// and Notifier). The engine never sees the pool directly.
type AutomationStore struct {
	Pool *pgxpool.Pool
}

func (s *AutomationStore) GetActiveRules(ctx context.Context, userID int64, ruleType models.RuleType) ([]models.AutomationRule, error) {
	return GetActiveAutomationRules(ctx, s.Pool, userID, ruleType)
}

func (s *AutomationStore) TouchLastRun(ctx context.Context, userID int64, ruleIDs []string, ranAt time.Time) error {
	return TouchLastRun(ctx, s.Pool, userID, ruleIDs, ranAt)
}

func (s *AutomationStore) CreateDeal(ctx context.Context, userID int64, props map[string]string) error {
	_, err := CreateDealFromProps(ctx, s.Pool, userID, props)
	return err
}

func (s *AutomationStore) UpdateDeal(ctx context.Context, userID, dealID int64, props map[string]string) error {
	return UpdateDealFromProps(ctx, s.Pool, userID, dealID, props)
}

func (s *AutomationStore) UpdateCampaign(ctx context.Context, userID, campaignID int64, status string, props map[string]string) error {
	return UpdateCampaignFields(ctx, s.Pool, userID, campaignID, status, props)
}

func (s *AutomationStore) AppendLog(ctx context.Context, entry *models.AutomationLog) error {
	return InsertAutomationLog(ctx, s.Pool, entry)
}

func (s *AutomationStore) Notify(ctx context.Context, userID int64, title, message string) error {
	_, err := CreateNotification(ctx, s.Pool, userID, title, message)
	return err
}

// FetchRecords builds the flat candidate records a rule population is
// evaluated against. Records are assembled fresh on every call so rules
// always see the latest synced snapshots.
func (s *AutomationStore) FetchRecords(ctx context.Context, userID int64, population automation.RecordPopulation) ([]automation.Record, error) {
	switch population {
	case automation.PopulationCampaignsAndDeals:
		records, err := s.campaignRecords(ctx, userID)
		if err != nil {
			return nil, err
		}
		deals, err := s.dealRecords(ctx, userID)
		if err != nil {
			return nil, err
		}
		return append(records, deals...), nil
	case automation.PopulationDeals:
		return s.dealRecords(ctx, userID)
	case automation.PopulationSyncState:
		return s.syncRecords(ctx, userID)
	default:
		return nil, fmt.Errorf("unknown record population %q", population)
	}
}

// campaignRecords flattens each campaign with its latest analytics
// snapshot (zeros when no snapshot exists yet).
func (s *AutomationStore) campaignRecords(ctx context.Context, userID int64) ([]automation.Record, error) {
	query := `
		SELECT c.id, c.external_id, c.name, c.status, c.objective, c.daily_budget,
		       COALESCE(a.spend, 0), COALESCE(a.impressions, 0), COALESCE(a.clicks, 0),
		       COALESCE(a.conversions, 0), COALESCE(a.revenue, 0), COALESCE(a.roi, 0),
		       COALESCE(a.ctr, 0), COALESCE(a.cpc, 0)
		FROM campaigns c
		LEFT JOIN LATERAL (
			SELECT spend, impressions, clicks, conversions, revenue, roi, ctr, cpc
			FROM campaign_analytics
			WHERE campaign_id = c.id
			ORDER BY captured_at DESC
			LIMIT 1
		) a ON true
		WHERE c.user_id = $1
		ORDER BY c.id
	`
	rows, err := s.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []automation.Record
	for rows.Next() {
		var (
			id                                         int64
			externalID, name, status, objective        string
			dailyBudget, spend, revenue, roi, ctr, cpc float64
			impressions, clicks, conversions           int64
		)
		err := rows.Scan(&id, &externalID, &name, &status, &objective, &dailyBudget,
			&spend, &impressions, &clicks, &conversions, &revenue, &roi, &ctr, &cpc)
		if err != nil {
			return nil, err
		}
		records = append(records, automation.Record{
			"record_type":   "campaign",
			"campaign_id":   id,
			"external_id":   externalID,
			"campaign_name": name,
			"status":        status,
			"objective":     objective,
			"daily_budget":  dailyBudget,
			"spend":         spend,
			"impressions":   impressions,
			"clicks":        clicks,
			"conversions":   conversions,
			"revenue":       revenue,
			"roi":           roi,
			"ctr":           ctr,
			"cpc":           cpc,
		})
	}
	return records, rows.Err()
}

func (s *AutomationStore) dealRecords(ctx context.Context, userID int64) ([]automation.Record, error) {
	deals, err := GetDealsSQL(ctx, s.Pool, userID)
	if err != nil {
		return nil, err
	}
	records := make([]automation.Record, 0, len(deals))
	for _, d := range deals {
		record := automation.Record{
			"record_type": "deal",
			"deal_id":     d.ID,
			"deal_name":   d.Name,
			"stage":       d.Stage,
			"amount":      d.Amount,
			"pipeline":    d.Pipeline,
		}
		if d.ExternalID != nil {
			record["external_id"] = *d.ExternalID
		}
		for k, v := range d.Properties {
			if _, taken := record[k]; !taken {
				record[k] = v
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// syncRecords exposes per-campaign sync metadata so sync rules can react
// to staleness, e.g. {field: "sync_age_hours", operator: ">", value: 24}.
func (s *AutomationStore) syncRecords(ctx context.Context, userID int64) ([]automation.Record, error) {
	query := `
		SELECT id, external_id, name, status, last_synced_at
		FROM campaigns
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := s.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var records []automation.Record
	for rows.Next() {
		var (
			id                       int64
			externalID, name, status string
			lastSyncedAt             *time.Time
		)
		if err := rows.Scan(&id, &externalID, &name, &status, &lastSyncedAt); err != nil {
			return nil, err
		}
		record := automation.Record{
			"record_type":   "sync",
			"campaign_id":   id,
			"external_id":   externalID,
			"campaign_name": name,
			"status":        status,
			"never_synced":  lastSyncedAt == nil,
		}
		if lastSyncedAt != nil {
			record["last_synced_at"] = lastSyncedAt.UTC().Format(time.RFC3339)
			record["sync_age_hours"] = now.Sub(*lastSyncedAt).Hours()
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
