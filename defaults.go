package confclass

// rootConfigs computes which of the parser's schemas stand alone as
// top-level sections when synthesizing defaults. A schema referenced as
// the (optional-unwrapped) field type of any other schema in the set is
// nested: it is written inside its parent's section instead of getting
// its own. Order is preserved from the parser's own ordering.
func (p *Parser) rootConfigs() []*Schema {
	nested := map[*Schema]struct{}{}
	for _, s := range p.schemas {
		for _, f := range s.fields {
			if ns, ok := lookupSchema(unwrapOptional(f.typ)); ok {
				nested[ns] = struct{}{}
			}
		}
	}

	out := make([]*Schema, 0, len(p.schemas))
	for _, s := range p.schemas {
		if _, ok := nested[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// synthesizeDefaults assembles a complete default document for the
// parser's schema set: the root schema's fields merge directly at the
// top level, every other classifier root gets its own named section.
func (p *Parser) synthesizeDefaults() (*Document, error) {
	doc := NewDocument()
	for _, s := range p.rootConfigs() {
		sec, err := synthesizeSchema(s)
		if err != nil {
			return nil, err
		}
		if s.root {
			doc.Merge(sec)
		} else {
			doc.Set(s.name, sec)
		}
	}
	return doc, nil
}

// synthesizeSchema produces the default section for one schema, field by
// field in declaration order. Every value passes through the field
// codec's encode path before landing under the field's mapped key.
func synthesizeSchema(s *Schema) (*Document, error) {
	sec := NewDocument()
	for _, f := range s.fields {
		v, err := defaultFieldValue(f)
		if err != nil {
			return nil, err
		}
		raw, err := encodeField(s, f, v)
		if err != nil {
			return nil, err
		}
		sec.Set(f.key, raw)
	}
	return sec, nil
}

// defaultFieldValue resolves a field's default: explicit value, then
// recursively synthesized nested defaults, then the default factory.
// A field with none of these synthesizes an explicit null; downstream
// code is expected to tolerate absent values (permissive policy).
func defaultFieldValue(f field) (any, error) {
	if f.hasDef {
		return f.def, nil
	}
	if ns, ok := lookupSchema(unwrapOptional(f.typ)); ok {
		return synthesizeSchema(ns)
	}
	if f.defFn != nil {
		return f.defFn(), nil
	}
	return nil, nil
}
