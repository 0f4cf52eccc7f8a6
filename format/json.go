// Package format provides the concrete file-format adapters consumed by
// confclass parsers: JSON, TOML and YAML. Each adapter reads a file into
// a raw ordered document and writes one back with a full overwrite.
package format

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/confclass/confclass"
)

// JSONFormat reads and writes JSON configuration files with explicit
// nulls and two-space indentation. Key order is preserved in both
// directions via token-stream decoding.
type JSONFormat struct{}

// JSON returns the JSON format adapter.
func JSON() *JSONFormat { return &JSONFormat{} }

// Read loads the document at path. A missing file is reported as
// (nil, nil); an empty file reads as an empty document.
func (f *JSONFormat) Read(path string) (*confclass.Document, error) {
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

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("parsing %s: top-level value must be an object", path)
	}
	doc, err := readObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Write overwrites path with the pretty-printed document.
func (f *JSONFormat) Write(path string, doc *confclass.Document) error {
	var buf bytes.Buffer
	if err := writeDocument(&buf, doc, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// readObject consumes tokens after an opening brace up to and including
// the matching closing brace.
func readObject(dec *json.Decoder) (*confclass.Document, error) {
	doc := confclass.NewDocument()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return doc, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, v)
	}
}

func readArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for {
		if !dec.More() {
			// consume the closing bracket
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if n, err := t.Int64(); err == nil {
				return n, nil
			}
		}
		return t.Float64()
	default:
		// string, bool or nil
		return tok, nil
	}
}

func writeDocument(w io.Writer, doc *confclass.Document, depth int) error {
	if doc.Len() == 0 {
		_, err := io.WriteString(w, "{}")
		return err
	}
	if _, err := io.WriteString(w, "{\n"); err != nil {
		return err
	}
	keys := doc.Keys()
	for i, k := range keys {
		if err := writeIndent(w, depth+1); err != nil {
			return err
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		if _, err := w.Write(kb); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ": "); err != nil {
			return err
		}
		v, _ := doc.Get(k)
		if err := writeValue(w, v, depth+1); err != nil {
			return err
		}
		if i < len(keys)-1 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	if err := writeIndent(w, depth); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}")
	return err
}

func writeValue(w io.Writer, v any, depth int) error {
	switch t := v.(type) {
	case *confclass.Document:
		return writeDocument(w, t, depth)
	case []any:
		if len(t) == 0 {
			_, err := io.WriteString(w, "[]")
			return err
		}
		if _, err := io.WriteString(w, "[\n"); err != nil {
			return err
		}
		for i, e := range t {
			if err := writeIndent(w, depth+1); err != nil {
				return err
			}
			if err := writeValue(w, e, depth+1); err != nil {
				return err
			}
			if i < len(t)-1 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeIndent(w, depth); err != nil {
			return err
		}
		_, err := io.WriteString(w, "]")
		return err
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
}

func writeIndent(w io.Writer, depth int) error {
	_, err := io.WriteString(w, strings.Repeat("  ", depth))
	return err
}
