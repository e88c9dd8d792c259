package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"adflow-server/src/models"
)

// GetDashboardSummary aggregates the headline numbers shown on the
// dashboard landing page in one round trip per table.
func GetDashboardSummary(ctx context.Context, pool *pgxpool.Pool, userID int64) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}

	err := pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'ACTIVE')
		FROM campaigns
		WHERE user_id = $1`, userID).
		Scan(&summary.TotalCampaigns, &summary.ActiveCampaigns)
	if err != nil {
		return nil, err
	}

	err = pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(a.spend), 0),
			COALESCE(SUM(a.revenue), 0),
			COALESCE(SUM(a.conversions), 0)
		FROM campaigns c
		JOIN LATERAL (
			SELECT spend, revenue, conversions
			FROM campaign_analytics
			WHERE campaign_id = c.id
			ORDER BY captured_at DESC
			LIMIT 1
		) a ON true
		WHERE c.user_id = $1`, userID).
		Scan(&summary.TotalSpend, &summary.TotalRevenue, &summary.TotalConversions)
	if err != nil {
		return nil, err
	}
	if summary.TotalSpend > 0 {
		summary.OverallROI = summary.TotalRevenue / summary.TotalSpend
	}

	err = pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM deals
		WHERE user_id = $1`, userID).
		Scan(&summary.TotalDeals, &summary.TotalDealValue)
	if err != nil {
		return nil, err
	}

	err = pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read = false`, userID).
		Scan(&summary.UnreadNotifications)
	if err != nil {
		return nil, err
	}

	return summary, nil
}
