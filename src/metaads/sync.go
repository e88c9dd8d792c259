package metaads

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	sql "adflow-server/src/db/sql"
	"adflow-server/src/models"
)

// Syncer pulls a user's campaigns and insights from the Marketing API and
// refreshes the local store. It also backs the automation engine's
// sync_campaigns action.
type Syncer struct {
	Client *Client
	Pool   *pgxpool.Pool
}

// SyncCampaigns upserts every remote campaign and writes one analytics
// snapshot per campaign. A user with no connected Meta account is an
// error: the caller (or rule author) asked for a sync that cannot happen.
func (s *Syncer) SyncCampaigns(ctx context.Context, userID int64) error {
	user, err := sql.GetUserByID(userID, s.Pool)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user.MetaAccessToken == nil || user.MetaAdAccountID == nil {
		return fmt.Errorf("user %d has no connected Meta account", userID)
	}

	campaigns, err := s.Client.FetchCampaigns(ctx, *user.MetaAccessToken, *user.MetaAdAccountID)
	if err != nil {
		return fmt.Errorf("failed to fetch campaigns: %w", err)
	}

	synced := 0
	for _, rc := range campaigns {
		campaignID, err := sql.UpsertCampaign(ctx, s.Pool, &models.Campaign{
			UserID:      userID,
			ExternalID:  rc.ID,
			Name:        rc.Name,
			Status:      rc.Status,
			Objective:   rc.Objective,
			DailyBudget: rc.DailyBudget,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert campaign %s: %w", rc.ID, err)
		}

		insights, err := s.Client.FetchInsights(ctx, *user.MetaAccessToken, rc.ID)
		if err != nil {
			// A campaign with unreadable insights still syncs; the snapshot
			// just stays at its previous value.
			log.Printf("ERROR: Failed to fetch insights for campaign %s (user %d): %v", rc.ID, userID, err)
			continue
		}

		snapshot := &models.CampaignAnalytics{
			CampaignID:  campaignID,
			Spend:       insights.Spend,
			Impressions: insights.Impressions,
			Clicks:      insights.Clicks,
			Conversions: insights.Conversions,
			Revenue:     insights.Revenue,
		}
		if insights.Spend > 0 {
			snapshot.ROI = insights.Revenue / insights.Spend
			snapshot.CPC = insights.Spend / float64(max64(insights.Clicks, 1))
		}
		if insights.Impressions > 0 {
			snapshot.CTR = float64(insights.Clicks) / float64(insights.Impressions) * 100
		}
		if err := sql.InsertCampaignAnalytics(ctx, s.Pool, snapshot); err != nil {
			return fmt.Errorf("failed to store analytics for campaign %s: %w", rc.ID, err)
		}
		synced++
	}

	log.Printf("INFO: Synced %d of %d Meta campaigns for user %d", synced, len(campaigns), userID)
	return nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
