package automation

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"adflow-server/src/models"
)

// RecordStore is the slice of the persistence layer the executor writes to.
// All writes are scoped to the invoking user; the store enforces ownership
// in its queries.
type RecordStore interface {
	CreateDeal(ctx context.Context, userID int64, props map[string]string) error
	UpdateDeal(ctx context.Context, userID, dealID int64, props map[string]string) error
	UpdateCampaign(ctx context.Context, userID, campaignID int64, status string, props map[string]string) error
}

type LogStore interface {
	AppendLog(ctx context.Context, entry *models.AutomationLog) error
}

type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string) error
}

type CampaignSyncer interface {
	SyncCampaigns(ctx context.Context, userID int64) error
}

const defaultCallTimeout = 10 * time.Second

// Executor runs a matched rule's actions against the collaborators and
// appends one log entry per (rule, record) attempt. There is no transaction
// boundary: actions applied before a failure are not rolled back.
type Executor struct {
	Store    RecordStore
	Logs     LogStore
	Notifier Notifier
	Syncer   CampaignSyncer

	// CallTimeout bounds each individual collaborator call. Zero means
	// defaultCallTimeout.
	CallTimeout time.Duration
}

// Execute runs rule.Actions in order for one matched record. It always
// returns a log entry: success when every action completed, error on the
// first action failure (remaining actions are skipped). Collaborator
// failures are captured in the entry, never returned, so one bad pair
// cannot abort the surrounding run.
func (e *Executor) Execute(ctx context.Context, rule models.AutomationRule, record Record, userID int64) models.AutomationLog {
	var completed []string
	for _, action := range rule.Actions {
		if err := e.runAction(ctx, action, record, userID); err != nil {
			log.Printf("ERROR: Automation rule %s action %s failed for user %d: %v", rule.ID, action.Type, userID, err)
			entry := e.newLog(rule, userID, models.LogStatusError,
				fmt.Sprintf("action %s failed: %v", action.Type, err),
				map[string]interface{}{
					"failed_action":     string(action.Type),
					"actions_completed": completed,
					"error":             err.Error(),
				})
			e.appendLog(ctx, &entry)
			return entry
		}
		completed = append(completed, string(action.Type))
	}

	entry := e.newLog(rule, userID, models.LogStatusSuccess,
		fmt.Sprintf("executed %d action(s): %s", len(completed), strings.Join(completed, ", ")),
		map[string]interface{}{"actions_completed": completed})
	e.appendLog(ctx, &entry)
	return entry
}

func (e *Executor) runAction(ctx context.Context, action models.Action, record Record, userID int64) error {
	timeout := e.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch action.Type {
	case models.ActionCreateDeal:
		if action.CreateDeal == nil {
			return fmt.Errorf("create_deal action has no params")
		}
		p := action.CreateDeal
		props := map[string]string{
			"name": Substitute(p.Name, record),
		}
		if p.Stage != "" {
			props["stage"] = Substitute(p.Stage, record)
		}
		if p.Amount != 0 {
			props["amount"] = strconv.FormatFloat(p.Amount, 'f', -1, 64)
		}
		for k, v := range p.Properties {
			props[k] = Substitute(v, record)
		}
		return e.Store.CreateDeal(cctx, userID, props)

	case models.ActionUpdateDeal:
		if action.UpdateDeal == nil {
			return fmt.Errorf("update_deal action has no params")
		}
		dealID, ok := recordID(record, "deal_id")
		if !ok {
			return fmt.Errorf("record has no deal_id to update")
		}
		p := action.UpdateDeal
		props := make(map[string]string, len(p.Properties)+1)
		if p.Stage != "" {
			props["stage"] = Substitute(p.Stage, record)
		}
		for k, v := range p.Properties {
			props[k] = Substitute(v, record)
		}
		return e.Store.UpdateDeal(cctx, userID, dealID, props)

	case models.ActionCreateNotification:
		if action.CreateNotification == nil {
			return fmt.Errorf("create_notification action has no params")
		}
		p := action.CreateNotification
		title := Substitute(p.Title, record)
		if title == "" {
			title = "Automation"
		}
		return e.Notifier.Notify(cctx, userID, title, Substitute(p.Message, record))

	case models.ActionUpdateCampaign:
		if action.UpdateCampaign == nil {
			return fmt.Errorf("update_campaign action has no params")
		}
		campaignID, ok := recordID(record, "campaign_id")
		if !ok {
			return fmt.Errorf("record has no campaign_id to update")
		}
		p := action.UpdateCampaign
		props := make(map[string]string, len(p.Properties))
		for k, v := range p.Properties {
			props[k] = Substitute(v, record)
		}
		return e.Store.UpdateCampaign(cctx, userID, campaignID, p.Status, props)

	case models.ActionSyncCampaigns:
		return e.Syncer.SyncCampaigns(cctx, userID)

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

func (e *Executor) newLog(rule models.AutomationRule, userID int64, status models.LogStatus, message string, details map[string]interface{}) models.AutomationLog {
	return models.AutomationLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		RuleID:    rule.ID,
		Status:    status,
		Message:   message,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

func (e *Executor) appendLog(ctx context.Context, entry *models.AutomationLog) {
	timeout := e.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := e.Logs.AppendLog(cctx, entry); err != nil {
		log.Printf("ERROR: Failed to append automation log for rule %s: %v", entry.RuleID, err)
	}
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

// Substitute replaces every {token} in s with the record's value for that
// field. Tokens with no matching field are left verbatim.
func Substitute(s string, record Record) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		token := m[1 : len(m)-1]
		if v, ok := record[token]; ok {
			return toString(v)
		}
		return m
	})
}

func recordID(record Record, field string) (int64, bool) {
	v, ok := record[field]
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		return int64(id), true
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
