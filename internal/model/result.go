package model

// Result is the outcome of one provider analysis operation. It carries
// either a structured payload or a failure cause, never both.
//
// Design decision: The payload is a generic mapping rather than a
// per-operation struct because the composer's translation tables are
// defined over sub-field presence: a missing sub-field must yield an
// omitted block, not a decoding error. A mapping expresses optional,
// partially-populated results directly.
type Result struct {
	// Operation is the analysis operation that produced this result,
	// e.g. "seasonal_congestion".
	Operation string `json:"operation"`

	// Data is the provider-specific success payload. Nil when the
	// operation failed.
	Data map[string]any `json:"data,omitempty"`

	// Cause is the human-readable failure cause. Empty on success.
	// The orchestrator inspects only Failed(), never the cause's
	// structure; all upstream failure modes normalize here.
	Cause string `json:"cause,omitempty"`
}

// NewResult creates a successful Result. A nil data map is normalized to an
// empty map so field accessors never dereference nil.
func NewResult(operation string, data map[string]any) Result {
	if data == nil {
		data = make(map[string]any)
	}
	return Result{Operation: operation, Data: data}
}

// FailResult creates a failed Result with a human-readable cause.
func FailResult(operation, cause string) Result {
	if cause == "" {
		cause = "unknown failure"
	}
	return Result{Operation: operation, Cause: cause}
}

// Failed reports whether the operation failed.
func (r Result) Failed() bool {
	return r.Cause != ""
}

// StringField returns the named string sub-field, or "" when absent or of
// another type. Absence is not an error: the composer omits the block.
func (r Result) StringField(key string) string {
	s, _ := r.Data[key].(string)
	return s
}

// FloatField returns the named numeric sub-field as a float64. Integer
// values are widened; absence or another type yields 0.
func (r Result) FloatField(key string) float64 {
	switch v := r.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// ListField returns the named sub-field as a slice of mappings, the common
// shape for tabular payloads. Absent or mistyped fields yield nil.
func (r Result) ListField(key string) []map[string]any {
	switch v := r.Data[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// StringsField returns the named sub-field as a string slice, the common
// shape for recommendation lists. Absent or mistyped fields yield nil.
func (r Result) StringsField(key string) []string {
	switch v := r.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// MapField returns the named sub-field as a nested mapping. Absent or
// mistyped fields yield nil, which all accessors tolerate.
func (r Result) MapField(key string) map[string]any {
	m, _ := r.Data[key].(map[string]any)
	return m
}
