package models

import (
	"encoding/json"
	"time"
)

type RuleType string

const (
	RuleTypeMatching RuleType = "matching"
	RuleTypeTrigger  RuleType = "trigger"
	RuleTypeWorkflow RuleType = "workflow"
	RuleTypeSync     RuleType = "sync"
)

func (t RuleType) IsValid() bool {
	switch t {
	case RuleTypeMatching, RuleTypeTrigger, RuleTypeWorkflow, RuleTypeSync:
		return true
	default:
		return false
	}
}

type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

// Condition is a single comparison test on a candidate record field.
type Condition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

type ActionType string

const (
	ActionCreateDeal         ActionType = "create_deal"
	ActionUpdateDeal         ActionType = "update_deal"
	ActionCreateNotification ActionType = "create_notification"
	ActionUpdateCampaign     ActionType = "update_campaign"
	ActionSyncCampaigns      ActionType = "sync_campaigns"
)

// String params may contain {token} placeholders substituted from the
// matched record at execution time.
type CreateDealParams struct {
	Name       string            `json:"name"`
	Stage      string            `json:"stage,omitempty"`
	Amount     float64           `json:"amount,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type UpdateDealParams struct {
	Stage      string            `json:"stage,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type CreateNotificationParams struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

type UpdateCampaignParams struct {
	Status     string            `json:"status,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Action is a tagged variant: exactly one params struct is set, matching
// Type. Unknown types survive decoding with all params nil so the executor
// can report them instead of the API rejecting the whole rule.
type Action struct {
	Type               ActionType                `json:"type"`
	CreateDeal         *CreateDealParams         `json:"-"`
	UpdateDeal         *UpdateDealParams         `json:"-"`
	CreateNotification *CreateNotificationParams `json:"-"`
	UpdateCampaign     *UpdateCampaignParams     `json:"-"`
}

type actionEnvelope struct {
	Type   ActionType      `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	a.Type = env.Type
	params := env.Params
	if len(params) == 0 {
		params = []byte("{}")
	}
	switch env.Type {
	case ActionCreateDeal:
		a.CreateDeal = &CreateDealParams{}
		return json.Unmarshal(params, a.CreateDeal)
	case ActionUpdateDeal:
		a.UpdateDeal = &UpdateDealParams{}
		return json.Unmarshal(params, a.UpdateDeal)
	case ActionCreateNotification:
		a.CreateNotification = &CreateNotificationParams{}
		return json.Unmarshal(params, a.CreateNotification)
	case ActionUpdateCampaign:
		a.UpdateCampaign = &UpdateCampaignParams{}
		return json.Unmarshal(params, a.UpdateCampaign)
	}
	// sync_campaigns has no params; unknown types are kept as-is
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	env := actionEnvelope{Type: a.Type}
	var params interface{}
	switch {
	case a.CreateDeal != nil:
		params = a.CreateDeal
	case a.UpdateDeal != nil:
		params = a.UpdateDeal
	case a.CreateNotification != nil:
		params = a.CreateNotification
	case a.UpdateCampaign != nil:
		params = a.UpdateCampaign
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		env.Params = raw
	}
	return json.Marshal(env)
}

type AutomationRule struct {
	ID         string      `json:"id"`
	UserID     int64       `json:"user_id"`
	Name       string      `json:"name"`
	Type       RuleType    `json:"type"`
	Status     RuleStatus  `json:"status"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
	LastRun    *time.Time  `json:"last_run,omitempty"`
	NextRun    *time.Time  `json:"next_run,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
