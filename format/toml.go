package format

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/confclass/confclass"
)

// DefaultTOMLNull is the sentinel written for null values; TOML itself
// has no null literal.
const DefaultTOMLNull = "null"

// TOMLFormat reads and writes TOML configuration files. Null values are
// represented by a configurable sentinel string in both directions: the
// sentinel is written for nil and read back as nil.
type TOMLFormat struct {
	null string
}

// TOMLOption configures the TOML adapter.
type TOMLOption func(*TOMLFormat)

// TOMLNull overrides the null sentinel. An empty sentinel disables null
// substitution entirely.
func TOMLNull(s string) TOMLOption {
	return func(f *TOMLFormat) { f.null = s }
}

// TOML returns the TOML format adapter.
func TOML(opts ...TOMLOption) *TOMLFormat {
	f := &TOMLFormat{null: DefaultTOMLNull}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Read loads the document at path. A missing file is reported as
// (nil, nil); an empty file reads as an empty document. TOML decoding
// goes through a plain map, so key order on read is sorted rather than
// positional.
func (f *TOMLFormat) Read(path string) (*confclass.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return confclass.NewDocument(), nil
	}

	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc := confclass.FromMap(m)
	if f.null != "" {
		restoreNulls(doc, f.null)
	}
	return doc, nil
}

// Write overwrites path with the document.
func (f *TOMLFormat) Write(path string, doc *confclass.Document) error {
	m := doc.ToMap()
	if f.null != "" {
		m = substituteNulls(m, f.null).(map[string]any)
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// restoreNulls replaces sentinel strings with nil in place.
func restoreNulls(doc *confclass.Document, sentinel string) {
	for _, k := range doc.Keys() {
		v, _ := doc.Get(k)
		switch t := v.(type) {
		case *confclass.Document:
			restoreNulls(t, sentinel)
		case []any:
			doc.Set(k, restoreNullsSlice(t, sentinel))
		case string:
			if t == sentinel {
				doc.Set(k, nil)
			}
		}
	}
}

func restoreNullsSlice(items []any, sentinel string) []any {
	for i, v := range items {
		switch t := v.(type) {
		case *confclass.Document:
			restoreNulls(t, sentinel)
		case []any:
			items[i] = restoreNullsSlice(t, sentinel)
		case string:
			if t == sentinel {
				items[i] = nil
			}
		}
	}
	return items
}

// substituteNulls replaces nil values with the sentinel string so the
// TOML encoder can represent them.
func substituteNulls(v any, sentinel string) any {
	switch t := v.(type) {
	case nil:
		return sentinel
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = substituteNulls(e, sentinel)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = substituteNulls(e, sentinel)
		}
		return out
	default:
		return v
	}
}
