package models

import "time"

type Campaign struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	ExternalID   string     `json:"external_id"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	Objective    string     `json:"objective"`
	DailyBudget  float64    `json:"daily_budget"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CampaignAnalytics is one point-in-time snapshot of a campaign's
// performance, written on every Meta sync.
type CampaignAnalytics struct {
	ID          int64     `json:"id"`
	CampaignID  int64     `json:"campaign_id"`
	Spend       float64   `json:"spend"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Revenue     float64   `json:"revenue"`
	ROI         float64   `json:"roi"`
	CTR         float64   `json:"ctr"`
	CPC         float64   `json:"cpc"`
	CapturedAt  time.Time `json:"captured_at"`
}
