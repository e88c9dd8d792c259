package automation

import "adflow-server/src/models"

// Match pairs a rule with a record that satisfied all of its conditions.
type Match struct {
	Rule   models.AutomationRule
	Record Record
}

// FindMatches returns every (rule, record) pair where the rule is active,
// of the requested type, and all of its conditions hold for the record.
// A rule with no conditions matches every record.
//
// Output order is rule-order outer, record-order inner, so repeated runs
// over unchanged inputs execute and log in the same order.
func FindMatches(rules []models.AutomationRule, ruleType models.RuleType, records []Record) []Match {
	var matches []Match
	for _, rule := range rules {
		if rule.Status != models.RuleStatusActive || rule.Type != ruleType {
			continue
		}
		for _, record := range records {
			if matchesAll(rule.Conditions, record) {
				matches = append(matches, Match{Rule: rule, Record: record})
			}
		}
	}
	return matches
}

func matchesAll(conditions []models.Condition, record Record) bool {
	for _, cond := range conditions {
		if !Evaluate(record, cond) {
			return false
		}
	}
	return true
}
