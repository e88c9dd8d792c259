package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"adflow-server/src/models"
)

func rule(id string, ruleType models.RuleType, status models.RuleStatus, conditions ...models.Condition) models.AutomationRule {
	return models.AutomationRule{
		ID:         id,
		Type:       ruleType,
		Status:     status,
		Conditions: conditions,
	}
}

func TestFindMatchesFiltersStatusAndType(t *testing.T) {
	rules := []models.AutomationRule{
		rule("active-matching", models.RuleTypeMatching, models.RuleStatusActive),
		rule("inactive-matching", models.RuleTypeMatching, models.RuleStatusInactive),
		rule("active-trigger", models.RuleTypeTrigger, models.RuleStatusActive),
	}
	records := []Record{{"spend": 1.0}}

	matches := FindMatches(rules, models.RuleTypeMatching, records)

	assert.Len(t, matches, 1)
	assert.Equal(t, "active-matching", matches[0].Rule.ID)
}

func TestFindMatchesEmptyConditionsMatchAll(t *testing.T) {
	rules := []models.AutomationRule{
		rule("catch-all", models.RuleTypeWorkflow, models.RuleStatusActive),
	}
	records := []Record{{"a": 1}, {"b": 2}, {"c": 3}}

	matches := FindMatches(rules, models.RuleTypeWorkflow, records)
	assert.Len(t, matches, 3)
}

func TestFindMatchesAllConditionsMustHold(t *testing.T) {
	rules := []models.AutomationRule{
		rule("both", models.RuleTypeMatching, models.RuleStatusActive,
			models.Condition{Field: "roi", Operator: "<", Value: 2},
			models.Condition{Field: "spend", Operator: ">", Value: 100},
		),
	}
	records := []Record{
		{"roi": 1.5, "spend": 150.0}, // both hold
		{"roi": 1.5, "spend": 50.0},  // second fails
		{"roi": 3.0, "spend": 150.0}, // first fails
	}

	matches := FindMatches(rules, models.RuleTypeMatching, records)
	assert.Len(t, matches, 1)
	assert.Equal(t, 150.0, matches[0].Record["spend"])
}

func TestFindMatchesOrderIsRuleOuterRecordInner(t *testing.T) {
	rules := []models.AutomationRule{
		rule("first", models.RuleTypeMatching, models.RuleStatusActive),
		rule("second", models.RuleTypeMatching, models.RuleStatusActive),
	}
	records := []Record{{"n": "a"}, {"n": "b"}}

	matches := FindMatches(rules, models.RuleTypeMatching, records)

	assert.Len(t, matches, 4)
	assert.Equal(t, "first", matches[0].Rule.ID)
	assert.Equal(t, "a", matches[0].Record["n"])
	assert.Equal(t, "first", matches[1].Rule.ID)
	assert.Equal(t, "b", matches[1].Record["n"])
	assert.Equal(t, "second", matches[2].Rule.ID)
	assert.Equal(t, "second", matches[3].Rule.ID)
}

func TestFindMatchesNoRulesOrRecords(t *testing.T) {
	assert.Empty(t, FindMatches(nil, models.RuleTypeMatching, []Record{{"a": 1}}))
	assert.Empty(t, FindMatches([]models.AutomationRule{
		rule("r", models.RuleTypeMatching, models.RuleStatusActive),
	}, models.RuleTypeMatching, nil))
}
