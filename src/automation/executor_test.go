package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"adflow-server/src/models"
)

type mockStore struct {
	createdDeals     []map[string]string
	updatedDeals     map[int64]map[string]string
	updatedCampaigns map[int64]string
	failOn           models.ActionType
}

func (m *mockStore) CreateDeal(ctx context.Context, userID int64, props map[string]string) error {
	if m.failOn == models.ActionCreateDeal {
		return errors.New("store unavailable")
	}
	m.createdDeals = append(m.createdDeals, props)
	return nil
}

func (m *mockStore) UpdateDeal(ctx context.Context, userID, dealID int64, props map[string]string) error {
	if m.failOn == models.ActionUpdateDeal {
		return errors.New("store unavailable")
	}
	if m.updatedDeals == nil {
		m.updatedDeals = map[int64]map[string]string{}
	}
	m.updatedDeals[dealID] = props
	return nil
}

func (m *mockStore) UpdateCampaign(ctx context.Context, userID, campaignID int64, status string, props map[string]string) error {
	if m.failOn == models.ActionUpdateCampaign {
		return errors.New("store unavailable")
	}
	if m.updatedCampaigns == nil {
		m.updatedCampaigns = map[int64]string{}
	}
	m.updatedCampaigns[campaignID] = status
	return nil
}

type mockLogs struct {
	entries []models.AutomationLog
	fail    bool
}

func (m *mockLogs) AppendLog(ctx context.Context, entry *models.AutomationLog) error {
	if m.fail {
		return errors.New("log store down")
	}
	m.entries = append(m.entries, *entry)
	return nil
}

type mockNotifier struct {
	titles   []string
	messages []string
	fail     bool
}

func (m *mockNotifier) Notify(ctx context.Context, userID int64, title, message string) error {
	if m.fail {
		return errors.New("notifier down")
	}
	m.titles = append(m.titles, title)
	m.messages = append(m.messages, message)
	return nil
}

type mockSyncer struct {
	calls int
	fail  bool
}

func (m *mockSyncer) SyncCampaigns(ctx context.Context, userID int64) error {
	if m.fail {
		return errors.New("meta api down")
	}
	m.calls++
	return nil
}

func newTestExecutor() (*Executor, *mockStore, *mockLogs, *mockNotifier, *mockSyncer) {
	store := &mockStore{}
	logs := &mockLogs{}
	notifier := &mockNotifier{}
	syncer := &mockSyncer{}
	return &Executor{Store: store, Logs: logs, Notifier: notifier, Syncer: syncer}, store, logs, notifier, syncer
}

func TestExecuteNotificationWithPlaceholders(t *testing.T) {
	exec, _, logs, notifier, _ := newTestExecutor()

	rule := models.AutomationRule{
		ID:     "r1",
		Name:   "low roi alert",
		Status: models.RuleStatusActive,
		Type:   models.RuleTypeMatching,
		Actions: []models.Action{
			{Type: models.ActionCreateNotification, CreateNotification: &models.CreateNotificationParams{
				Title:   "Low ROI",
				Message: "Campaign {campaign_name} has ROI {roi}",
			}},
		},
	}
	record := Record{"campaign_name": "Summer", "roi": 1.4}

	entry := exec.Execute(context.Background(), rule, record, 7)

	assert.Equal(t, models.LogStatusSuccess, entry.Status)
	assert.Equal(t, []string{"Campaign Summer has ROI 1.4"}, notifier.messages)
	assert.Len(t, logs.entries, 1)
	assert.Equal(t, "r1", logs.entries[0].RuleID)
	assert.Equal(t, int64(7), logs.entries[0].UserID)
}

func TestExecuteCreateDealSubstitutesProps(t *testing.T) {
	exec, store, _, _, _ := newTestExecutor()

	rule := models.AutomationRule{
		ID: "r2",
		Actions: []models.Action{
			{Type: models.ActionCreateDeal, CreateDeal: &models.CreateDealParams{
				Name:   "Deal for {campaign_name}",
				Stage:  "qualifiedtobuy",
				Amount: 500,
				Properties: map[string]string{
					"source_campaign": "{external_id}",
				},
			}},
		},
	}
	record := Record{"campaign_name": "Spring Push", "external_id": "238745"}

	entry := exec.Execute(context.Background(), rule, record, 1)

	assert.Equal(t, models.LogStatusSuccess, entry.Status)
	assert.Len(t, store.createdDeals, 1)
	props := store.createdDeals[0]
	assert.Equal(t, "Deal for Spring Push", props["name"])
	assert.Equal(t, "qualifiedtobuy", props["stage"])
	assert.Equal(t, "500", props["amount"])
	assert.Equal(t, "238745", props["source_campaign"])
}

func TestExecuteUpdateDealNeedsRecordID(t *testing.T) {
	exec, store, _, _, _ := newTestExecutor()

	rule := models.AutomationRule{
		ID: "r3",
		Actions: []models.Action{
			{Type: models.ActionUpdateDeal, UpdateDeal: &models.UpdateDealParams{Stage: "closedwon"}},
		},
	}

	// Record without deal_id fails the action.
	entry := exec.Execute(context.Background(), rule, Record{"deal_name": "x"}, 1)
	assert.Equal(t, models.LogStatusError, entry.Status)
	assert.Empty(t, store.updatedDeals)

	// Record with deal_id applies it.
	entry = exec.Execute(context.Background(), rule, Record{"deal_id": int64(99)}, 1)
	assert.Equal(t, models.LogStatusSuccess, entry.Status)
	assert.Equal(t, "closedwon", store.updatedDeals[99]["stage"])
}

func TestExecuteUpdateCampaign(t *testing.T) {
	exec, store, _, _, _ := newTestExecutor()

	rule := models.AutomationRule{
		ID: "r4",
		Actions: []models.Action{
			{Type: models.ActionUpdateCampaign, UpdateCampaign: &models.UpdateCampaignParams{Status: "PAUSED"}},
		},
	}
	entry := exec.Execute(context.Background(), rule, Record{"campaign_id": int64(12)}, 1)

	assert.Equal(t, models.LogStatusSuccess, entry.Status)
	assert.Equal(t, "PAUSED", store.updatedCampaigns[12])
}

func TestExecuteSyncCampaigns(t *testing.T) {
	exec, _, _, _, syncer := newTestExecutor()

	rule := models.AutomationRule{
		ID:      "r5",
		Actions: []models.Action{{Type: models.ActionSyncCampaigns}},
	}
	entry := exec.Execute(context.Background(), rule, Record{}, 1)

	assert.Equal(t, models.LogStatusSuccess, entry.Status)
	assert.Equal(t, 1, syncer.calls)
}

func TestExecuteUnknownActionAbortsRemaining(t *testing.T) {
	exec, store, logs, notifier, _ := newTestExecutor()

	rule := models.AutomationRule{
		ID: "r6",
		Actions: []models.Action{
			{Type: models.ActionCreateDeal, CreateDeal: &models.CreateDealParams{Name: "first"}},
			{Type: models.ActionType("explode")},
			{Type: models.ActionCreateNotification, CreateNotification: &models.CreateNotificationParams{Message: "never sent"}},
		},
	}
	entry := exec.Execute(context.Background(), rule, Record{}, 1)

	assert.Equal(t, models.LogStatusError, entry.Status)
	assert.Contains(t, entry.Message, "explode")
	// First action completed and stays applied, third never ran.
	assert.Len(t, store.createdDeals, 1)
	assert.Empty(t, notifier.messages)
	assert.Len(t, logs.entries, 1)
	assert.Equal(t, "explode", entry.Details["failed_action"])
	assert.Equal(t, []string{"create_deal"}, entry.Details["actions_completed"])
}

func TestExecuteCollaboratorFailureProducesErrorLog(t *testing.T) {
	exec, store, logs, _, _ := newTestExecutor()
	store.failOn = models.ActionCreateDeal

	rule := models.AutomationRule{
		ID: "r7",
		Actions: []models.Action{
			{Type: models.ActionCreateDeal, CreateDeal: &models.CreateDealParams{Name: "doomed"}},
		},
	}
	entry := exec.Execute(context.Background(), rule, Record{}, 1)

	assert.Equal(t, models.LogStatusError, entry.Status)
	assert.Contains(t, entry.Message, "create_deal")
	assert.Len(t, logs.entries, 1)
}

func TestExecuteLogAppendFailureStillReturnsEntry(t *testing.T) {
	exec, _, logs, _, _ := newTestExecutor()
	logs.fail = true

	rule := models.AutomationRule{
		ID:      "r8",
		Actions: []models.Action{{Type: models.ActionSyncCampaigns}},
	}
	entry := exec.Execute(context.Background(), rule, Record{}, 1)

	assert.Equal(t, models.LogStatusSuccess, entry.Status)
	assert.NotEmpty(t, entry.ID)
}

func TestSubstitute(t *testing.T) {
	record := Record{
		"campaign_name": "Summer",
		"roi":           1.5,
		"clicks":        int64(300),
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Campaign {campaign_name} low ROI", "Campaign Summer low ROI"},
		{"roi={roi} clicks={clicks}", "roi=1.5 clicks=300"},
		{"{missing} stays", "{missing} stays"},
		{"no tokens", "no tokens"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Substitute(tt.in, record))
	}
}
