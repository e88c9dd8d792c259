package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://api.hubapi.com"

// Client covers the CRM reads the dashboard syncs from: deals and
// contacts, normalized into local shapes.
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

type RemoteDeal struct {
	ID       string
	Name     string
	Stage    string
	Amount   float64
	Pipeline string
}

type RemoteContact struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Company   string
}

func (c *Client) get(ctx context.Context, accessToken, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "hubspot api request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Wrap(err, "failed to read hubspot response")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("hubspot api returned status %d: %s", resp.StatusCode, string(body))
	}
	return errors.Wrap(json.Unmarshal(body, out), "failed to decode hubspot response")
}

func (c *Client) FetchDeals(ctx context.Context, accessToken string) ([]RemoteDeal, error) {
	var payload struct {
		Results []struct {
			ID         string `json:"id"`
			Properties struct {
				DealName  string `json:"dealname"`
				DealStage string `json:"dealstage"`
				Amount    string `json:"amount"`
				Pipeline  string `json:"pipeline"`
			} `json:"properties"`
		} `json:"results"`
	}
	path := "/crm/v3/objects/deals?limit=100&properties=dealname,dealstage,amount,pipeline"
	if err := c.get(ctx, accessToken, path, &payload); err != nil {
		return nil, err
	}

	deals := make([]RemoteDeal, 0, len(payload.Results))
	for _, raw := range payload.Results {
		deal := RemoteDeal{
			ID:       raw.ID,
			Name:     raw.Properties.DealName,
			Stage:    raw.Properties.DealStage,
			Pipeline: raw.Properties.Pipeline,
		}
		deal.Amount, _ = strconv.ParseFloat(raw.Properties.Amount, 64)
		deals = append(deals, deal)
	}
	return deals, nil
}

func (c *Client) FetchContacts(ctx context.Context, accessToken string) ([]RemoteContact, error) {
	var payload struct {
		Results []struct {
			ID         string `json:"id"`
			Properties struct {
				Email     string `json:"email"`
				FirstName string `json:"firstname"`
				LastName  string `json:"lastname"`
				Company   string `json:"company"`
			} `json:"properties"`
		} `json:"results"`
	}
	path := "/crm/v3/objects/contacts?limit=100&properties=email,firstname,lastname,company"
	if err := c.get(ctx, accessToken, path, &payload); err != nil {
		return nil, err
	}

	contacts := make([]RemoteContact, 0, len(payload.Results))
	for _, raw := range payload.Results {
		contacts = append(contacts, RemoteContact{
			ID:        raw.ID,
			Email:     raw.Properties.Email,
			FirstName: raw.Properties.FirstName,
			LastName:  raw.Properties.LastName,
			Company:   raw.Properties.Company,
		})
	}
	return contacts, nil
}

// Ping verifies a token by hitting the account-info endpoint.
func (c *Client) Ping(ctx context.Context, accessToken string) error {
	var out json.RawMessage
	if err := c.get(ctx, accessToken, "/account-info/v3/details", &out); err != nil {
		return fmt.Errorf("hubspot token check failed: %w", err)
	}
	return nil
}
