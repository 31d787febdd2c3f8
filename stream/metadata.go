package stream

// Metadata is the side channel accompanying a sample: an ordered collection
// of named, dynamically-typed values. A producer or filter builds a fresh
// Metadata for every sample it emits; after that the value is never mutated.
// With returns an extended copy, so sharing one Metadata across subscribers
// is safe.
//
// Readers must be defensive: a key may be absent, and a present value may
// have an unexpected dynamic type. Both cases read as "no data available".
type Metadata struct {
	keys []string
	vals map[string]any
}

// NewMetadata returns an empty Metadata.
func NewMetadata() Metadata {
	return Metadata{}
}

// With returns a copy of m with key set to value. Setting an existing key
// replaces its value but keeps its original position.
func (m Metadata) With(key string, value any) Metadata {
	out := Metadata{
		keys: make([]string, len(m.keys), len(m.keys)+1),
		vals: make(map[string]any, len(m.vals)+1),
	}
	copy(out.keys, m.keys)
	for k, v := range m.vals {
		out.vals[k] = v
	}
	if _, exists := out.vals[key]; !exists {
		out.keys = append(out.keys, key)
	}
	out.vals[key] = value
	return out
}

// Lookup returns the raw value stored under key.
func (m Metadata) Lookup(key string) (any, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the metadata keys in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.keys)
}

// Value returns the value stored under key if it exists and has dynamic
// type V. An absent key and a value of the wrong type both return
// (zero, false); neither is a fault.
func Value[V any](m Metadata, key string) (V, bool) {
	raw, ok := m.vals[key]
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := raw.(V)
	return v, ok
}
