package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adflow-server/src/models"
)

type mockRuleSource struct {
	rules        []models.AutomationRule
	loadErr      error
	touchedIDs   []string
	touchCalls   int
	touchFailure error
}

func (m *mockRuleSource) GetActiveRules(ctx context.Context, userID int64, ruleType models.RuleType) ([]models.AutomationRule, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.rules, nil
}

func (m *mockRuleSource) TouchLastRun(ctx context.Context, userID int64, ruleIDs []string, ranAt time.Time) error {
	m.touchCalls++
	m.touchedIDs = ruleIDs
	return m.touchFailure
}

type mockRecordSource struct {
	records    []Record
	loadErr    error
	population RecordPopulation
}

func (m *mockRecordSource) FetchRecords(ctx context.Context, userID int64, population RecordPopulation) ([]Record, error) {
	m.population = population
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.records, nil
}

type mockLocker struct {
	held     bool
	err      error
	released bool
	acquired int
}

func (m *mockLocker) TryAcquire(ctx context.Context, userID int64, ruleType models.RuleType) (func(), bool, error) {
	m.acquired++
	if m.err != nil {
		return nil, false, m.err
	}
	if m.held {
		return nil, false, nil
	}
	return func() { m.released = true }, true, nil
}

func activeRule(id string, ruleType models.RuleType) models.AutomationRule {
	return models.AutomationRule{
		ID:      id,
		Type:    ruleType,
		Status:  models.RuleStatusActive,
		Actions: []models.Action{{Type: models.ActionSyncCampaigns}},
	}
}

func newTestOrchestrator(rules *mockRuleSource, records *mockRecordSource, locks RunLocker) (*Orchestrator, *mockLogs, *mockSyncer) {
	logs := &mockLogs{}
	syncer := &mockSyncer{}
	return &Orchestrator{
		Rules:   rules,
		Records: records,
		Executor: &Executor{
			Store:    &mockStore{},
			Logs:     logs,
			Notifier: &mockNotifier{},
			Syncer:   syncer,
		},
		Locks: locks,
	}, logs, syncer
}

func TestRunInvalidType(t *testing.T) {
	orch, _, _ := newTestOrchestrator(&mockRuleSource{}, &mockRecordSource{}, nil)

	_, err := orch.Run(context.Background(), 1, models.RuleType("bogus"))
	assert.Error(t, err)
}

func TestRunNoRulesIsValidNoop(t *testing.T) {
	rules := &mockRuleSource{}
	records := &mockRecordSource{records: []Record{{"a": 1}}}
	orch, logs, _ := newTestOrchestrator(rules, records, nil)

	summary, err := orch.Run(context.Background(), 1, models.RuleTypeMatching)

	assert.NoError(t, err)
	assert.Equal(t, RunSummary{}, summary)
	assert.Empty(t, logs.entries)
	assert.Zero(t, rules.touchCalls)
}

func TestRunRuleLoadErrorPropagates(t *testing.T) {
	rules := &mockRuleSource{loadErr: errors.New("db down")}
	orch, _, _ := newTestOrchestrator(rules, &mockRecordSource{}, nil)

	_, err := orch.Run(context.Background(), 1, models.RuleTypeMatching)
	assert.ErrorContains(t, err, "failed to load automation rules")
}

func TestRunRecordLoadErrorPropagates(t *testing.T) {
	rules := &mockRuleSource{rules: []models.AutomationRule{activeRule("r", models.RuleTypeMatching)}}
	records := &mockRecordSource{loadErr: errors.New("db down")}
	orch, _, _ := newTestOrchestrator(rules, records, nil)

	_, err := orch.Run(context.Background(), 1, models.RuleTypeMatching)
	assert.ErrorContains(t, err, "failed to load candidate records")
}

func TestRunExecutesEachMatchAndStampsLastRunOnce(t *testing.T) {
	rules := &mockRuleSource{rules: []models.AutomationRule{activeRule("r1", models.RuleTypeMatching)}}
	records := &mockRecordSource{records: []Record{{"n": 1}, {"n": 2}, {"n": 3}}}
	orch, logs, syncer := newTestOrchestrator(rules, records, nil)

	summary, err := orch.Run(context.Background(), 5, models.RuleTypeMatching)

	assert.NoError(t, err)
	assert.Equal(t, RunSummary{Executed: 3}, summary)
	assert.Len(t, logs.entries, 3)
	assert.Equal(t, 3, syncer.calls)
	// One rule matched three records but gets stamped once.
	assert.Equal(t, 1, rules.touchCalls)
	assert.Equal(t, []string{"r1"}, rules.touchedIDs)
}

func TestRunCountsErrorsSeparately(t *testing.T) {
	rules := &mockRuleSource{rules: []models.AutomationRule{activeRule("r1", models.RuleTypeMatching)}}
	records := &mockRecordSource{records: []Record{{"n": 1}, {"n": 2}}}
	orch, _, syncer := newTestOrchestrator(rules, records, nil)
	syncer.fail = true

	summary, err := orch.Run(context.Background(), 5, models.RuleTypeMatching)

	assert.NoError(t, err)
	assert.Equal(t, RunSummary{Errors: 2}, summary)
}

func TestRunTouchFailureDoesNotFailRun(t *testing.T) {
	rules := &mockRuleSource{
		rules:        []models.AutomationRule{activeRule("r1", models.RuleTypeMatching)},
		touchFailure: errors.New("db down"),
	}
	records := &mockRecordSource{records: []Record{{"n": 1}}}
	orch, _, _ := newTestOrchestrator(rules, records, nil)

	summary, err := orch.Run(context.Background(), 5, models.RuleTypeMatching)
	assert.NoError(t, err)
	assert.Equal(t, RunSummary{Executed: 1}, summary)
}

func TestRunPopulationByType(t *testing.T) {
	tests := []struct {
		ruleType models.RuleType
		want     RecordPopulation
	}{
		{models.RuleTypeMatching, PopulationCampaignsAndDeals},
		{models.RuleTypeTrigger, PopulationCampaignsAndDeals},
		{models.RuleTypeWorkflow, PopulationDeals},
		{models.RuleTypeSync, PopulationSyncState},
	}
	for _, tt := range tests {
		t.Run(string(tt.ruleType), func(t *testing.T) {
			rules := &mockRuleSource{rules: []models.AutomationRule{activeRule("r", tt.ruleType)}}
			records := &mockRecordSource{}
			orch, _, _ := newTestOrchestrator(rules, records, nil)

			_, err := orch.Run(context.Background(), 1, tt.ruleType)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, records.population)
		})
	}
}

func TestRunLockHeldRejects(t *testing.T) {
	locks := &mockLocker{held: true}
	orch, _, _ := newTestOrchestrator(&mockRuleSource{}, &mockRecordSource{}, locks)

	_, err := orch.Run(context.Background(), 1, models.RuleTypeMatching)
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunLockAcquiredAndReleased(t *testing.T) {
	locks := &mockLocker{}
	rules := &mockRuleSource{rules: []models.AutomationRule{activeRule("r", models.RuleTypeMatching)}}
	records := &mockRecordSource{records: []Record{{"n": 1}}}
	orch, _, _ := newTestOrchestrator(rules, records, locks)

	_, err := orch.Run(context.Background(), 1, models.RuleTypeMatching)

	assert.NoError(t, err)
	assert.Equal(t, 1, locks.acquired)
	assert.True(t, locks.released)
}

func TestRunCancellationStopsBetweenMatches(t *testing.T) {
	rules := &mockRuleSource{rules: []models.AutomationRule{activeRule("r", models.RuleTypeMatching)}}
	records := &mockRecordSource{records: []Record{{"n": 1}, {"n": 2}}}
	orch, logs, _ := newTestOrchestrator(rules, records, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := orch.Run(ctx, 1, models.RuleTypeMatching)

	assert.NoError(t, err)
	assert.Equal(t, RunSummary{}, summary)
	assert.Empty(t, logs.entries)
}
