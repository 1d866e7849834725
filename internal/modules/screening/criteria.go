package screening

import "fmt"

// A criterion compiles one whitelisted screening key into a parameterized
// predicate. Unknown keys in a criteria set are silently ignored by design:
// the filter is additive and forward-compatible, so a caller sending a key
// this version doesn't know simply gets a broader screen, not an error.
type criterion struct {
	key    string
	column string
	op     string // ">=", "<=", or "in" for set membership
}

// Whitelisted criteria. Threshold keys carry a number; "in" keys carry a list
// of accepted labels.
var criteria = []criterion{
	{key: "min_roe", column: "roe", op: ">="},
	{key: "max_pe", column: "pe_ratio", op: "<="},
	{key: "min_rsi", column: "rsi_14", op: ">="},
	{key: "min_sentiment", column: "sentiment_score", op: ">="},
	{key: "min_market_cap", column: "market_cap", op: ">="},
	{key: "technical_signals", column: "technical_signal", op: "in"},
	{key: "sectors", column: "sector", op: "in"},
}

// buildPredicates converts a raw criteria map into SQL conditions and args.
// Values that can't be interpreted for their key are skipped like unknown keys.
func buildPredicates(raw map[string]any) ([]string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}

	for _, c := range criteria {
		v, ok := raw[c.key]
		if !ok {
			continue
		}

		switch c.op {
		case ">=", "<=":
			n, ok := toNumber(v)
			if !ok {
				continue
			}
			conditions = append(conditions, fmt.Sprintf("%s %s ?", c.column, c.op))
			args = append(args, n)

		case "in":
			labels := toStrings(v)
			if len(labels) == 0 {
				continue
			}
			ph := ""
			for i, label := range labels {
				if i > 0 {
					ph += ", "
				}
				ph += "?"
				args = append(args, label)
			}
			conditions = append(conditions, fmt.Sprintf("%s IN (%s)", c.column, ph))
		}
	}

	return conditions, args
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		var out []string
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{s}
	}
	return nil
}
