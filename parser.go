package confclass

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Format reads and writes raw configuration documents. Read reports a
// missing file as (nil, nil); a file that exists but is empty reads back
// as an empty document. Write fully overwrites the target.
type Format interface {
	Read(path string) (*Document, error)
	Write(path string, doc *Document) error
}

// Type is an opaque handle for a registered config type, used to supply
// the schema set to a parser.
type Type struct {
	rt reflect.Type
}

// Of returns the handle for T.
func Of[T any]() Type {
	return Type{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

func (t Type) String() string { return t.rt.String() }

// ParserOption configures parser construction.
type ParserOption func(*parserOptions)

type parserOptions struct {
	types         []Type
	createMissing bool
}

// Schemas supplies the config types handled by the parser.
func Schemas(types ...Type) ParserOption {
	return func(o *parserOptions) {
		o.types = append(o.types, types...)
	}
}

// CreateMissing permits the parser to synthesize and persist a default
// document when the config file does not exist.
func CreateMissing() ParserOption {
	return func(o *parserOptions) {
		o.createMissing = true
	}
}

// Parser binds one config file path and one format adapter to a set of
// registered config types. The document is read once at construction and
// held in memory; Get calls are pure reads over it.
type Parser struct {
	path    string
	format  Format
	schemas []*Schema
	byType  map[reflect.Type]*Schema
	doc     *Document
}

// New constructs a parser over path using the given format adapter.
// Registration is validated before anything touches the file: every
// supplied type must be declared via Define, and at most one may be
// flagged root.
func New(path string, f Format, opts ...ParserOption) (*Parser, error) {
	var o parserOptions
	for _, opt := range opts {
		opt(&o)
	}

	p := &Parser{path: path, format: f}
	if err := p.setConfigs(o.types); err != nil {
		return nil, err
	}

	doc, err := f.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if doc == nil {
		if !o.createMissing {
			return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		doc, err = p.synthesizeDefaults()
		if err != nil {
			return nil, err
		}
		if err := f.Write(path, doc); err != nil {
			return nil, fmt.Errorf("writing defaults to %s: %w", path, err)
		}
	}
	p.doc = doc
	return p, nil
}

// Add extends the parser's schema set. Root and registration validation
// reruns over the union. The document is not re-read and defaults are
// not re-synthesized; newly added sections must already exist on disk
// for Get to succeed.
func (p *Parser) Add(types ...Type) error {
	union := make([]Type, 0, len(p.schemas)+len(types))
	for _, s := range p.schemas {
		union = append(union, Type{rt: s.typ})
	}
	union = append(union, types...)
	return p.setConfigs(union)
}

// setConfigs validates and installs the schema set, sorted root-first
// then by case-insensitive section name so synthesized documents come
// out in a stable order.
func (p *Parser) setConfigs(types []Type) error {
	var invalid []reflect.Type
	var roots []string
	schemas := make([]*Schema, 0, len(types))
	byType := make(map[reflect.Type]*Schema, len(types))

	for _, t := range types {
		s, ok := lookupSchema(t.rt)
		if !ok {
			invalid = append(invalid, t.rt)
			continue
		}
		if _, dup := byType[t.rt]; dup {
			continue
		}
		if s.root {
			roots = append(roots, t.rt.Name())
		}
		schemas = append(schemas, s)
		byType[t.rt] = s
	}

	if len(invalid) > 0 {
		return &InvalidConfigClassError{Types: invalid}
	}
	if len(roots) > 1 {
		return &MultipleTopLevelConfigError{Names: roots}
	}

	sort.SliceStable(schemas, func(i, j int) bool {
		a, b := schemas[i], schemas[j]
		if a.root != b.root {
			return a.root
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})

	p.schemas = schemas
	p.byType = byType
	return nil
}

// Get parses the section belonging to T into a typed instance. T must
// have been supplied to this parser; nested schema fields resolve
// through the global registry regardless.
func Get[T any](p *Parser) (T, error) {
	var zero T
	v, err := p.get(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (p *Parser) get(rt reflect.Type) (any, error) {
	s, ok := p.byType[rt]
	if !ok {
		return nil, &UnregisteredSchemaError{Type: rt}
	}
	sec, err := p.section(s)
	if err != nil {
		return nil, err
	}
	return p.parseSection(s, sec)
}

// section locates the sub-document belonging to a schema: the whole
// document for a root schema, the named sub-mapping otherwise. Root
// status decides this, not the root/nested classifier, so an explicitly
// registered schema stays queryable even when synthesis nested it
// inside a parent.
func (p *Parser) section(s *Schema) (*Document, error) {
	if s.root {
		return p.doc, nil
	}
	raw, ok := p.doc.Get(s.name)
	if !ok {
		return nil, &MissingSectionError{Section: s.name}
	}
	sec, ok := raw.(*Document)
	if !ok {
		return nil, &MissingSectionError{Section: s.name}
	}
	return sec, nil
}

// parseSection decodes every declared field of s from sec into a new
// instance. Absent keys are hard failures; defaults are a synthesis-time
// concept only.
func (p *Parser) parseSection(s *Schema, sec *Document) (any, error) {
	rv := reflect.New(s.typ).Elem()
	for _, f := range s.fields {
		raw, ok := sec.Get(f.key)
		if !ok {
			return nil, &MissingKeyError{Schema: s.typ.Name(), Key: f.key}
		}
		v, err := p.decodeField(s, f, raw)
		if err != nil {
			return nil, err
		}
		if err := assignValue(rv.Field(f.index), v, f.name); err != nil {
			return nil, err
		}
	}
	return rv.Interface(), nil
}
