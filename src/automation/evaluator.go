package automation

import (
	"strconv"
	"strings"

	"adflow-server/src/models"
)

// Record is the flattened, normalized view of a campaign or deal (plus its
// latest analytics snapshot) that rules are evaluated against. Built fresh
// per run, never persisted.
type Record map[string]interface{}

// Evaluate decides whether a single condition holds for a record. It is
// pure and total: every input maps to true or false, never an error.
// A missing field evaluates to false under every operator.
func Evaluate(record Record, cond models.Condition) bool {
	raw, ok := record[cond.Field]
	if !ok {
		return false
	}

	switch cond.Operator {
	case "==":
		return looseEqual(raw, cond.Value)
	case "<", "<=", ">", ">=":
		a, aok := toNumber(raw)
		b, bok := toNumber(cond.Value)
		if !aok || !bok {
			return false
		}
		switch cond.Operator {
		case "<":
			return a < b
		case "<=":
			return a <= b
		case ">":
			return a > b
		default:
			return a >= b
		}
	case "contains":
		return strings.Contains(toString(raw), toString(cond.Value))
	case "startsWith":
		return strings.HasPrefix(toString(raw), toString(cond.Value))
	case "endsWith":
		return strings.HasSuffix(toString(raw), toString(cond.Value))
	default:
		return false
	}
}

// looseEqual compares strictly when both sides have the same dynamic type
// and falls back to string comparison when they differ, so a stored "2"
// still matches a numeric 2 from a rule definition.
func looseEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
	case float64:
		if bv, ok := toNumber(b); ok {
			if _, isStr := b.(string); !isStr {
				return av == bv
			}
		}
	case int64:
		if bv, ok := toNumber(b); ok {
			if _, isStr := b.(string); !isStr {
				return float64(av) == bv
			}
		}
	case int:
		if bv, ok := toNumber(b); ok {
			if _, isStr := b.(string); !isStr {
				return float64(av) == bv
			}
		}
	}
	return toString(a) == toString(b)
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case nil:
		return ""
	default:
		return ""
	}
}
