package confclass

import (
	"fmt"
	"reflect"
)

// FieldDecoder transforms a raw document value into the field's typed
// value.
type FieldDecoder func(raw any) (any, error)

// ParserFieldDecoder is the parser-aware decoder variant. The parser
// handle lets a decoder resolve cross-references, for example treating
// the raw value as a pointer to another registered section and fetching
// that section instead of using the literal value. Which variant a
// decoder uses is fixed at registration; signatures are never inspected
// at runtime.
type ParserFieldDecoder func(raw any, p *Parser) (any, error)

// FieldEncoder transforms a field's typed value into its raw document
// representation.
type FieldEncoder func(v any) (any, error)

type fieldCodec struct {
	decode       FieldDecoder
	decodeParser ParserFieldDecoder
	encode       FieldEncoder
}

type field struct {
	name   string       // Go field name
	index  int          // struct field index
	typ    reflect.Type // declared type, possibly optional-wrapped
	key    string       // resolved document key
	def    any          // explicit default value
	hasDef bool
	defFn  func() any // default factory
}

// Schema is the immutable configuration metadata registered for a struct
// type: its section name, root flag, field descriptors, key remaps and
// per-field codecs.
type Schema struct {
	typ    reflect.Type
	name   string
	root   bool
	fields []field
	codecs map[string]fieldCodec
}

// Name returns the schema's section name.
func (s *Schema) Name() string { return s.name }

// Root reports whether the schema's fields occupy the top level of the
// document rather than a named section.
func (s *Schema) Root() bool { return s.root }

// Type returns the struct type the schema describes.
func (s *Schema) Type() reflect.Type { return s.typ }

// FieldNames returns the Go field names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

// FieldKey returns the document key a field is stored under.
func (s *Schema) FieldKey(name string) (string, bool) {
	for _, f := range s.fields {
		if f.name == name {
			return f.key, true
		}
	}
	return "", false
}

func (s *Schema) fieldByName(name string) (field, bool) {
	for _, f := range s.fields {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

// Builder declares configuration metadata for the struct type T.
// Registration is definitional and happens once, typically from a
// package-level var:
//
//	var _ = confclass.Define[ServerConfig]().
//		Section("server").
//		Key("Port", "port_number").
//		Default("Port", 8080).
//		MustRegister()
type Builder[T any] struct {
	name   string
	root   bool
	keys   map[string]string
	defs   map[string]any
	defFns map[string]func() any
	codecs map[string]fieldCodec
}

// Define starts schema declaration for T. The section name defaults to
// T's type name.
func Define[T any]() *Builder[T] {
	return &Builder[T]{
		keys:   map[string]string{},
		defs:   map[string]any{},
		defFns: map[string]func() any{},
		codecs: map[string]fieldCodec{},
	}
}

// Section overrides the document section name.
func (b *Builder[T]) Section(name string) *Builder[T] {
	b.name = name
	return b
}

// Root marks the schema as top-level: its fields are merged directly at
// the document root instead of living under a named section.
func (b *Builder[T]) Root() *Builder[T] {
	b.root = true
	return b
}

// Key overrides the document key used for a field. Unmapped fields use
// the key resolved from their declaration (conf tag, json tag, or the
// field name itself).
func (b *Builder[T]) Key(fieldName, key string) *Builder[T] {
	b.keys[fieldName] = key
	return b
}

// Default sets the explicit default value used when synthesizing a
// document for a missing config file. The value must be assignable or
// coercible to the field's type.
func (b *Builder[T]) Default(fieldName string, v any) *Builder[T] {
	b.defs[fieldName] = v
	return b
}

// DefaultFunc sets a default factory, invoked once per synthesis.
func (b *Builder[T]) DefaultFunc(fieldName string, fn func() any) *Builder[T] {
	b.defFns[fieldName] = fn
	return b
}

// Decode registers a custom raw-to-typed transform for a field.
func (b *Builder[T]) Decode(fieldName string, fn FieldDecoder) *Builder[T] {
	c := b.codecs[fieldName]
	c.decode = fn
	c.decodeParser = nil
	b.codecs[fieldName] = c
	return b
}

// DecodeWithParser registers a custom decoder that also receives the
// active parser, for resolving cross-section references.
func (b *Builder[T]) DecodeWithParser(fieldName string, fn ParserFieldDecoder) *Builder[T] {
	c := b.codecs[fieldName]
	c.decodeParser = fn
	c.decode = nil
	b.codecs[fieldName] = c
	return b
}

// Encode registers a custom typed-to-raw transform for a field, applied
// when the field is serialized into a document.
func (b *Builder[T]) Encode(fieldName string, fn FieldEncoder) *Builder[T] {
	c := b.codecs[fieldName]
	c.encode = fn
	b.codecs[fieldName] = c
	return b
}

// Register builds the schema, validates it against T's declaration, and
// stores it in the process-global registry.
func (b *Builder[T]) Register() (*Schema, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("config type must be a struct, got %s", rt)
	}

	name := b.name
	if name == "" {
		name = rt.Name()
	}
	s := &Schema{
		typ:    rt,
		name:   name,
		root:   b.root,
		codecs: b.codecs,
	}

	known := map[string]bool{}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := resolveFieldKey(sf)
		if key == "-" || key == "" {
			continue
		}
		if mapped, ok := b.keys[sf.Name]; ok {
			key = mapped
		}
		f := field{
			name:  sf.Name,
			index: i,
			typ:   sf.Type,
			key:   key,
			defFn: b.defFns[sf.Name],
		}
		if v, ok := b.defs[sf.Name]; ok {
			f.def = v
			f.hasDef = true
		}
		s.fields = append(s.fields, f)
		known[sf.Name] = true
	}

	for _, m := range []map[string]bool{refNames(b.keys), refNames(b.defs), refNames(b.defFns), refNames(b.codecs)} {
		for n := range m {
			if !known[n] {
				return nil, fmt.Errorf("config type %s has no field %q", rt, n)
			}
		}
	}

	if err := registerSchema(rt, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustRegister is like Register but panics on error. Registration errors
// are declaration bugs, so panicking at package init is the intended
// failure mode.
func (b *Builder[T]) MustRegister() *Schema {
	s, err := b.Register()
	if err != nil {
		panic(err)
	}
	return s
}

func refNames[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for n := range m {
		out[n] = true
	}
	return out
}
