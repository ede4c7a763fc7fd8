// Package capture models the entity records produced by the capture tool and
// reads them back from the on-disk JSON bundles.
package capture

// Kind identifies an entity kind within a capture bundle.
type Kind string

const (
	KindSite      Kind = "Site"
	KindUser      Kind = "User"
	KindDevice    Kind = "Device"
	KindTimeframe Kind = "Timeframe"
	KindGroup     Kind = "Group"
	KindShift     Kind = "Shift"
)

// Record is one captured entity: its own fields plus any embedded child
// records (devices under users, timeframes under devices, shifts under
// groups), in capture order. Shift order is rotation order and must be kept.
type Record struct {
	Kind     Kind
	Fields   map[string]any
	Children []Record
}

// Str returns the named field as a string, or "" when absent or not a string.
func (r Record) Str(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Has reports whether the named field is present.
func (r Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// CloneFields returns a shallow copy of the record's fields, safe to mutate
// while building a request body.
func (r Record) CloneFields() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out[k] = v
	}
	return out
}

// EnvelopeData unwraps the remote's {count, total, data: [...]} list envelope.
// Returns nil when the envelope is absent, empty, or malformed.
func EnvelopeData(v any) []any {
	env, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	total, _ := env["total"].(float64)
	if total <= 0 {
		return nil
	}
	data, _ := env["data"].([]any)
	return data
}
