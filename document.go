package confclass

import (
	"fmt"
	"sort"
)

// Document is a string-keyed mapping that preserves key insertion order.
// It is the raw, format-agnostic representation of a configuration file:
// values are *Document for nested mappings, []any for sequences, and
// string/int64/float64/bool/nil for scalars.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: map[string]any{}}
}

// Len reports the number of keys.
func (d *Document) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Set stores v under key. A new key is appended; overwriting an existing
// key keeps its original position.
func (d *Document) Set(key string, v any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Delete removes key and its value.
func (d *Document) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Merge copies every key of src into d, in src's order.
func (d *Document) Merge(src *Document) {
	if src == nil {
		return
	}
	for _, k := range src.keys {
		d.Set(k, src.values[k])
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := NewDocument()
	for _, k := range d.keys {
		out.Set(k, cloneValue(d.values[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two documents hold the same keys in the same
// order with deeply equal values.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.keys) != len(other.keys) {
		return false
	}
	for i, k := range d.keys {
		if other.keys[i] != k {
			return false
		}
		if !valueEqual(d.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Document:
		bv, ok := b.(*Document)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// FromMap converts a nested map into a Document. Map iteration order is
// not stable, so keys are sorted to keep the result deterministic;
// format adapters that read into plain maps rely on this.
func FromMap(m map[string]any) *Document {
	doc := NewDocument()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.Set(k, fromMapValue(m[k]))
	}
	return doc
}

func fromMapValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromMapValue(e)
		}
		return out
	default:
		return normalizeScalar(t)
	}
}

// ToMap converts the document into a nested map for format adapters that
// write through map-based encoders. Key order is lost.
func (d *Document) ToMap() map[string]any {
	if d == nil {
		return nil
	}
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = toMapValue(d.values[k])
	}
	return out
}

func toMapValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toMapValue(e)
		}
		return out
	default:
		return v
	}
}

// normalizeScalar widens numeric scalars so the in-memory representation
// does not depend on which format adapter produced it: signed and
// unsigned integers become int64, float32 becomes float64.
func normalizeScalar(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t > 1<<63-1 {
			return float64(t)
		}
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

// String renders a compact single-line form, mainly for error messages
// and debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil>"
	}
	s := "{"
	for i, k := range d.keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%q: %v", k, d.values[k])
	}
	return s + "}"
}
