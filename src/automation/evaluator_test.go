package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"adflow-server/src/models"
)

func TestEvaluateNumericOperators(t *testing.T) {
	record := Record{
		"spend": 120.5,
		"roi":   1.8,
		"count": int64(42),
	}

	tests := []struct {
		name string
		cond models.Condition
		want bool
	}{
		{"less than true", models.Condition{Field: "roi", Operator: "<", Value: 2.0}, true},
		{"less than false", models.Condition{Field: "roi", Operator: "<", Value: 1.5}, false},
		{"less or equal boundary", models.Condition{Field: "roi", Operator: "<=", Value: 1.8}, true},
		{"greater than", models.Condition{Field: "spend", Operator: ">", Value: 100}, true},
		{"greater or equal boundary", models.Condition{Field: "spend", Operator: ">=", Value: 120.5}, true},
		{"int64 field compared", models.Condition{Field: "count", Operator: ">", Value: 40}, true},
		{"numeric string value coerced", models.Condition{Field: "spend", Operator: ">", Value: "100"}, true},
		{"non-numeric value is false", models.Condition{Field: "spend", Operator: ">", Value: "lots"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(record, tt.cond))
		})
	}
}

func TestEvaluateEquality(t *testing.T) {
	record := Record{
		"status": "ACTIVE",
		"stage":  "2",
		"paused": false,
		"budget": 50.0,
	}

	tests := []struct {
		name string
		cond models.Condition
		want bool
	}{
		{"string equal", models.Condition{Field: "status", Operator: "==", Value: "ACTIVE"}, true},
		{"string case sensitive", models.Condition{Field: "status", Operator: "==", Value: "active"}, false},
		{"bool equal", models.Condition{Field: "paused", Operator: "==", Value: false}, true},
		{"number equal", models.Condition{Field: "budget", Operator: "==", Value: 50}, true},
		{"stored string matches numeric value", models.Condition{Field: "stage", Operator: "==", Value: 2}, true},
		{"stored number matches string value", models.Condition{Field: "budget", Operator: "==", Value: "50"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(record, tt.cond))
		})
	}
}

func TestEvaluateStringOperators(t *testing.T) {
	record := Record{
		"campaign_name": "Summer Sale 2026",
		"impressions":   1500.0,
	}

	tests := []struct {
		name string
		cond models.Condition
		want bool
	}{
		{"contains", models.Condition{Field: "campaign_name", Operator: "contains", Value: "Sale"}, true},
		{"contains miss", models.Condition{Field: "campaign_name", Operator: "contains", Value: "Winter"}, false},
		{"startsWith", models.Condition{Field: "campaign_name", Operator: "startsWith", Value: "Summer"}, true},
		{"endsWith", models.Condition{Field: "campaign_name", Operator: "endsWith", Value: "2026"}, true},
		{"number stringified for contains", models.Condition{Field: "impressions", Operator: "contains", Value: "500"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(record, tt.cond))
		})
	}
}

func TestEvaluateMissingFieldAndUnknownOperator(t *testing.T) {
	record := Record{"spend": 10.0}

	assert.False(t, Evaluate(record, models.Condition{Field: "revenue", Operator: ">", Value: 0}))
	assert.False(t, Evaluate(record, models.Condition{Field: "revenue", Operator: "==", Value: nil}))
	assert.False(t, Evaluate(record, models.Condition{Field: "spend", Operator: "matches", Value: 10}))
	assert.False(t, Evaluate(record, models.Condition{Field: "spend", Operator: "", Value: 10}))
}
