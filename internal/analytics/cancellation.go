package analytics

// CancelCondition is one way a vendor record can say it was cancelled or refunded.
type CancelCondition struct {
	Name  string
	Field string
	match func(v any) bool
}

// Matches reports whether the record satisfies the condition. A record without the
// field never matches.
func (c CancelCondition) Matches(rec RawRecord) bool {
	v, ok := rec[c.Field]
	if !ok || v == nil {
		return false
	}
	return c.match(v)
}

// CancelConditions is the complete vocabulary of cancellation markers. Values are
// compared exactly and case-sensitively.
var CancelConditions = []CancelCondition{
	{Name: "status_code", Field: "s_status", match: stringIn("C", "CANCEL")},
	{Name: "cancel_flag", Field: "cancel_yn", match: stringIn("Y", "YES")},
	{Name: "generic_status", Field: "status", match: stringIn("cancelled")},
	{Name: "cancelled_bool", Field: "cancelled", match: isTrue},
	{Name: "is_cancelled", Field: "is_cancelled", match: anyOf(isTrue, stringIn("Y"))},
	{Name: "refund_state", Field: "s_state", match: stringIn("REFUND")},
	{Name: "refund_step", Field: "ord_refund_step", match: stringIn("SUCCESS")},
}

// IsCancelled is true when any condition matches.
func IsCancelled(rec RawRecord) bool {
	for _, c := range CancelConditions {
		if c.Matches(rec) {
			return true
		}
	}
	return false
}

// CancelReasons lists the names of every matching condition.
func CancelReasons(rec RawRecord) []string {
	var reasons []string
	for _, c := range CancelConditions {
		if c.Matches(rec) {
			reasons = append(reasons, c.Name)
		}
	}
	return reasons
}

func stringIn(values ...string) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, want := range values {
			if s == want {
				return true
			}
		}
		return false
	}
}

func isTrue(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func anyOf(preds ...func(any) bool) func(any) bool {
	return func(v any) bool {
		for _, p := range preds {
			if p(v) {
				return true
			}
		}
		return false
	}
}
