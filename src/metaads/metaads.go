package metaads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// Client is a thin Marketing API client. It only covers the reads the
// dashboard needs: campaigns and their insights, normalized into local
// shapes.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// RemoteCampaign is a campaign as returned by the Marketing API, already
// normalized (budget in account currency units, not cents).
type RemoteCampaign struct {
	ID          string
	Name        string
	Status      string
	Objective   string
	DailyBudget float64
}

// RemoteInsights is one campaign's aggregated performance window.
type RemoteInsights struct {
	Spend       float64
	Impressions int64
	Clicks      int64
	Conversions int64
	Revenue     float64
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := fmt.Sprintf("%s/%s?%s", c.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "meta api request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Wrap(err, "failed to read meta api response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return errors.Errorf("meta api error (code %d): %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return errors.Errorf("meta api returned status %d", resp.StatusCode)
	}

	return errors.Wrap(json.Unmarshal(body, out), "failed to decode meta api response")
}

// FetchCampaigns lists campaigns under the ad account.
func (c *Client) FetchCampaigns(ctx context.Context, accessToken, adAccountID string) ([]RemoteCampaign, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,status,objective,daily_budget")
	params.Set("limit", "100")

	var payload struct {
		Data []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Status      string `json:"status"`
			Objective   string `json:"objective"`
			DailyBudget string `json:"daily_budget"`
		} `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("act_%s/campaigns", adAccountID), params, &payload); err != nil {
		return nil, err
	}

	campaigns := make([]RemoteCampaign, 0, len(payload.Data))
	for _, raw := range payload.Data {
		rc := RemoteCampaign{
			ID:        raw.ID,
			Name:      raw.Name,
			Status:    raw.Status,
			Objective: raw.Objective,
		}
		// Budgets come back as minor currency units in a string.
		if cents, err := strconv.ParseFloat(raw.DailyBudget, 64); err == nil {
			rc.DailyBudget = cents / 100
		}
		campaigns = append(campaigns, rc)
	}
	return campaigns, nil
}

// FetchInsights pulls the lifetime insights for one campaign.
func (c *Client) FetchInsights(ctx context.Context, accessToken, campaignID string) (*RemoteInsights, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "spend,impressions,clicks,actions,action_values")
	params.Set("date_preset", "maximum")

	var payload struct {
		Data []struct {
			Spend       string `json:"spend"`
			Impressions string `json:"impressions"`
			Clicks      string `json:"clicks"`
			Actions     []struct {
				ActionType string `json:"action_type"`
				Value      string `json:"value"`
			} `json:"actions"`
			ActionValues []struct {
				ActionType string `json:"action_type"`
				Value      string `json:"value"`
			} `json:"action_values"`
		} `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/insights", campaignID), params, &payload); err != nil {
		return nil, err
	}

	insights := &RemoteInsights{}
	if len(payload.Data) == 0 {
		return insights, nil
	}

	row := payload.Data[0]
	insights.Spend, _ = strconv.ParseFloat(row.Spend, 64)
	insights.Impressions, _ = strconv.ParseInt(row.Impressions, 10, 64)
	insights.Clicks, _ = strconv.ParseInt(row.Clicks, 10, 64)
	for _, action := range row.Actions {
		if action.ActionType == "purchase" || action.ActionType == "lead" {
			n, _ := strconv.ParseInt(action.Value, 10, 64)
			insights.Conversions += n
		}
	}
	for _, av := range row.ActionValues {
		if av.ActionType == "purchase" {
			v, _ := strconv.ParseFloat(av.Value, 64)
			insights.Revenue += v
		}
	}
	return insights, nil
}
