package models

type DashboardSummary struct {
	TotalCampaigns      int64   `json:"total_campaigns"`
	ActiveCampaigns     int64   `json:"active_campaigns"`
	TotalSpend          float64 `json:"total_spend"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalConversions    int64   `json:"total_conversions"`
	OverallROI          float64 `json:"overall_roi"`
	TotalDeals          int64   `json:"total_deals"`
	TotalDealValue      float64 `json:"total_deal_value"`
	UnreadNotifications int64   `json:"unread_notifications"`
}
