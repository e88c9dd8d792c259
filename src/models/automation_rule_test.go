package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionDecodeKnownTypes(t *testing.T) {
	raw := `[
		{"type": "create_deal", "params": {"name": "Deal for {campaign_name}", "stage": "qualifiedtobuy", "amount": 250}},
		{"type": "update_deal", "params": {"stage": "closedwon", "properties": {"closed_by": "automation"}}},
		{"type": "create_notification", "params": {"title": "Low ROI", "message": "Campaign {campaign_name} low ROI"}},
		{"type": "update_campaign", "params": {"status": "PAUSED"}},
		{"type": "sync_campaigns"}
	]`

	var actions []Action
	require.NoError(t, json.Unmarshal([]byte(raw), &actions))
	require.Len(t, actions, 5)

	require.NotNil(t, actions[0].CreateDeal)
	assert.Equal(t, "Deal for {campaign_name}", actions[0].CreateDeal.Name)
	assert.Equal(t, 250.0, actions[0].CreateDeal.Amount)

	require.NotNil(t, actions[1].UpdateDeal)
	assert.Equal(t, "closedwon", actions[1].UpdateDeal.Stage)
	assert.Equal(t, "automation", actions[1].UpdateDeal.Properties["closed_by"])

	require.NotNil(t, actions[2].CreateNotification)
	assert.Equal(t, "Low ROI", actions[2].CreateNotification.Title)

	require.NotNil(t, actions[3].UpdateCampaign)
	assert.Equal(t, "PAUSED", actions[3].UpdateCampaign.Status)

	assert.Equal(t, ActionSyncCampaigns, actions[4].Type)
	assert.Nil(t, actions[4].CreateDeal)
}

func TestActionDecodeUnknownTypeSurvives(t *testing.T) {
	var action Action
	require.NoError(t, json.Unmarshal([]byte(`{"type": "launch_rocket", "params": {"target": "moon"}}`), &action))

	assert.Equal(t, ActionType("launch_rocket"), action.Type)
	assert.Nil(t, action.CreateDeal)
	assert.Nil(t, action.UpdateDeal)
	assert.Nil(t, action.CreateNotification)
	assert.Nil(t, action.UpdateCampaign)
}

func TestActionEncodeRoundTrip(t *testing.T) {
	original := Action{
		Type: ActionCreateNotification,
		CreateNotification: &CreateNotificationParams{
			Title:   "Budget alert",
			Message: "Spend passed {spend}",
		},
	}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Action
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original.Type, decoded.Type)
	require.NotNil(t, decoded.CreateNotification)
	assert.Equal(t, original.CreateNotification.Message, decoded.CreateNotification.Message)
}

func TestActionEncodeSyncHasNoParams(t *testing.T) {
	encoded, err := json.Marshal(Action{Type: ActionSyncCampaigns})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "sync_campaigns"}`, string(encoded))
}

func TestRuleTypeIsValid(t *testing.T) {
	assert.True(t, RuleTypeMatching.IsValid())
	assert.True(t, RuleTypeTrigger.IsValid())
	assert.True(t, RuleTypeWorkflow.IsValid())
	assert.True(t, RuleTypeSync.IsValid())
	assert.False(t, RuleType("").IsValid())
	assert.False(t, RuleType("scheduled").IsValid())
}
