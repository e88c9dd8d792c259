package automation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"adflow-server/src/models"
)

// ErrRunInProgress is returned when another run for the same (user, type)
// holds the advisory lock. Callers should reject rather than queue.
var ErrRunInProgress = errors.New("automation run already in progress")

// RecordPopulation names the fixed set of records a rule type is evaluated
// against.
type RecordPopulation string

const (
	PopulationCampaignsAndDeals RecordPopulation = "campaigns_and_deals"
	PopulationDeals             RecordPopulation = "deals"
	PopulationSyncState         RecordPopulation = "sync_state"
)

// populationByType is the rule-type to record-population table. It is a
// fixed mapping, not configuration.
var populationByType = map[models.RuleType]RecordPopulation{
	models.RuleTypeMatching: PopulationCampaignsAndDeals,
	models.RuleTypeTrigger:  PopulationCampaignsAndDeals,
	models.RuleTypeWorkflow: PopulationDeals,
	models.RuleTypeSync:     PopulationSyncState,
}

type RuleSource interface {
	GetActiveRules(ctx context.Context, userID int64, ruleType models.RuleType) ([]models.AutomationRule, error)
	TouchLastRun(ctx context.Context, userID int64, ruleIDs []string, ranAt time.Time) error
}

type RecordSource interface {
	FetchRecords(ctx context.Context, userID int64, population RecordPopulation) ([]Record, error)
}

// RunLocker serializes runs per (user, rule type). ok is false when the
// lock is already held elsewhere.
type RunLocker interface {
	TryAcquire(ctx context.Context, userID int64, ruleType models.RuleType) (release func(), ok bool, err error)
}

type RunSummary struct {
	Executed int `json:"executed"`
	Errors   int `json:"errors"`
}

// Orchestrator drives one automation pass: load active rules of a type,
// load that type's record population, match, execute, aggregate. Each run
// is a fresh level-triggered pass over current snapshots; nothing persists
// between runs except the logs and last_run stamps.
type Orchestrator struct {
	Rules    RuleSource
	Records  RecordSource
	Executor *Executor
	Locks    RunLocker
}

// Run executes all active rules of ruleType for userID. Only rule/record
// loading (or locking) failures are returned as errors; per-match failures
// are reflected in the summary's error count and in the log store.
func (o *Orchestrator) Run(ctx context.Context, userID int64, ruleType models.RuleType) (RunSummary, error) {
	var summary RunSummary

	if !ruleType.IsValid() {
		return summary, fmt.Errorf("invalid rule type %q", ruleType)
	}

	if o.Locks != nil {
		release, ok, err := o.Locks.TryAcquire(ctx, userID, ruleType)
		if err != nil {
			return summary, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !ok {
			return summary, ErrRunInProgress
		}
		defer release()
	}

	rules, err := o.Rules.GetActiveRules(ctx, userID, ruleType)
	if err != nil {
		return summary, fmt.Errorf("failed to load automation rules: %w", err)
	}
	if len(rules) == 0 {
		return summary, nil
	}

	records, err := o.Records.FetchRecords(ctx, userID, populationByType[ruleType])
	if err != nil {
		return summary, fmt.Errorf("failed to load candidate records: %w", err)
	}
	if len(records) == 0 {
		return summary, nil
	}

	matches := FindMatches(rules, ruleType, records)

	ran := make(map[string]struct{})
	for _, m := range matches {
		// Partial completion on cancellation is acceptable; logs already
		// written stand.
		if ctx.Err() != nil {
			log.Printf("INFO: Automation run cancelled for user %d after %d match(es)", userID, summary.Executed+summary.Errors)
			break
		}
		entry := o.Executor.Execute(ctx, m.Rule, m.Record, userID)
		if entry.Status == models.LogStatusError {
			summary.Errors++
		} else {
			summary.Executed++
		}
		ran[m.Rule.ID] = struct{}{}
	}

	if len(ran) > 0 {
		ids := make([]string, 0, len(ran))
		for id := range ran {
			ids = append(ids, id)
		}
		if err := o.Rules.TouchLastRun(ctx, userID, ids, time.Now().UTC()); err != nil {
			log.Printf("ERROR: Failed to update last_run for user %d rules: %v", userID, err)
		}
	}

	log.Printf("INFO: Automation run finished for user %d type %s: executed=%d errors=%d", userID, ruleType, summary.Executed, summary.Errors)
	return summary, nil
}
