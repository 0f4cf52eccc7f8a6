package confclass

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	durationType        = reflect.TypeOf((*time.Duration)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// decodeField resolves one field's typed value from its raw document
// value. A custom decoder takes precedence; otherwise the structural
// fallback recurses on the declared type.
func (p *Parser) decodeField(s *Schema, f field, raw any) (any, error) {
	if c, ok := s.codecs[f.name]; ok {
		if c.decodeParser != nil {
			return c.decodeParser(raw, p)
		}
		if c.decode != nil {
			return c.decode(raw)
		}
	}
	return p.decodeValue(f.name, raw, f.typ)
}

// decodeValue is the structural decode fallback: optional unwrapping,
// nested-schema recursion, then primitive coercion.
func (p *Parser) decodeValue(fieldName string, raw any, declared reflect.Type) (any, error) {
	ct := unwrapOptional(declared)
	if raw == nil {
		return nil, nil
	}

	// A field typed as a registered schema always parses its raw value
	// as a nested section; scalars are rejected rather than fed to a
	// constructor.
	if nested, ok := lookupSchema(ct); ok {
		sec, ok := raw.(*Document)
		if !ok {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
		}
		return p.parseSection(nested, sec)
	}

	if ct == durationType {
		switch v := raw.(type) {
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw, Err: err}
			}
			return d, nil
		case int64:
			return time.Duration(v), nil
		}
	}

	if s, ok := raw.(string); ok && ct.Kind() != reflect.String && reflect.PointerTo(ct).Implements(textUnmarshalerType) {
		pv := reflect.New(ct)
		if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw, Err: err}
		}
		return pv.Elem().Interface(), nil
	}

	switch ct.Kind() {
	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			return coerced(ct, raw), nil
		case string:
			return coercedBool(ct, isTruthy(v)), nil
		case int64:
			return coercedBool(ct, v != 0), nil
		case float64:
			return coercedBool(ct, v != 0), nil
		}

	case reflect.String:
		switch v := raw.(type) {
		case string:
			return coerced(ct, raw), nil
		case bool:
			return coercedString(ct, strconv.FormatBool(v)), nil
		case int64:
			return coercedString(ct, strconv.FormatInt(v, 10)), nil
		case float64:
			return coercedString(ct, strconv.FormatFloat(v, 'g', -1, 64)), nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := rawInt(raw)
		if err != nil {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw, Err: err}
		}
		out := reflect.New(ct).Elem()
		if out.OverflowInt(n) {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
		}
		out.SetInt(n)
		return out.Interface(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := rawInt(raw)
		if err != nil || n < 0 {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw, Err: err}
		}
		out := reflect.New(ct).Elem()
		if out.OverflowUint(uint64(n)) {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
		}
		out.SetUint(uint64(n))
		return out.Interface(), nil

	case reflect.Float32, reflect.Float64:
		f, err := rawFloat(raw)
		if err != nil {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw, Err: err}
		}
		out := reflect.New(ct).Elem()
		out.SetFloat(f)
		return out.Interface(), nil

	case reflect.Slice:
		items, ok := raw.([]any)
		if !ok {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
		}
		out := reflect.MakeSlice(ct, len(items), len(items))
		for i, item := range items {
			ev, err := p.decodeValue(fieldName, item, ct.Elem())
			if err != nil {
				return nil, err
			}
			if err := assignValue(out.Index(i), ev, fieldName); err != nil {
				return nil, err
			}
		}
		return out.Interface(), nil

	case reflect.Map:
		if ct.Key().Kind() != reflect.String {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
		}
		sec, ok := raw.(*Document)
		if !ok {
			return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
		}
		out := reflect.MakeMapWithSize(ct, sec.Len())
		for _, k := range sec.Keys() {
			item, _ := sec.Get(k)
			ev, err := p.decodeValue(fieldName, item, ct.Elem())
			if err != nil {
				return nil, err
			}
			mv := reflect.New(ct.Elem()).Elem()
			if err := assignValue(mv, ev, fieldName); err != nil {
				return nil, err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(ct.Key()), mv)
		}
		return out.Interface(), nil

	case reflect.Interface:
		if reflect.TypeOf(raw).Implements(ct) {
			return raw, nil
		}
	}

	if reflect.TypeOf(raw).AssignableTo(ct) {
		return raw, nil
	}
	return nil, &TypeCoercionError{Field: fieldName, Want: ct, Value: raw}
}

// isTruthy implements the fixed truthy-string set used for boolean
// coercion. Anything outside the set is false.
func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func rawInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		if v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("value %v out of integer range", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("not a number: %T", raw)
}

func rawFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("not a number: %T", raw)
}

// coerced and friends instantiate the concrete (possibly named) type so
// that `type Level int`-style declarations round-trip.
func coerced(ct reflect.Type, raw any) any {
	rv := reflect.ValueOf(raw)
	if rv.Type() == ct {
		return raw
	}
	return rv.Convert(ct).Interface()
}

func coercedBool(ct reflect.Type, v bool) any {
	out := reflect.New(ct).Elem()
	out.SetBool(v)
	return out.Interface()
}

func coercedString(ct reflect.Type, v string) any {
	out := reflect.New(ct).Elem()
	out.SetString(v)
	return out.Interface()
}

// assignValue stores a decoded value into a settable destination,
// wrapping into or unwrapping from a single pointer level as needed.
func assignValue(dst reflect.Value, v any, fieldName string) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
	case dst.Kind() == reflect.Pointer && rv.Type().AssignableTo(dst.Type().Elem()):
		pv := reflect.New(dst.Type().Elem())
		pv.Elem().Set(rv)
		dst.Set(pv)
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(dst.Type()):
		dst.Set(rv.Elem())
	case numericKind(rv.Kind()) && numericKind(dst.Kind()) && rv.Type().ConvertibleTo(dst.Type()):
		dst.Set(rv.Convert(dst.Type()))
	default:
		return &TypeCoercionError{Field: fieldName, Want: dst.Type(), Value: v}
	}
	return nil
}

func numericKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64 && k != reflect.Uintptr
}

// encodeField serializes one field value into its raw document form. A
// custom encoder takes precedence over the structural fallback.
func encodeField(s *Schema, f field, v any) (any, error) {
	if c, ok := s.codecs[f.name]; ok && c.encode != nil {
		return c.encode(v)
	}
	return encodeValue(v)
}

// encodeValue is the structural encode fallback, symmetric with
// decodeValue: registered schema instances become nested mappings,
// durations and text marshalers become strings, scalars pass through
// normalized.
func encodeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case *Document:
		return t, nil
	case []any:
		return t, nil
	case time.Duration:
		return t.String(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
		v = rv.Interface()
	}

	if s, ok := lookupSchema(rv.Type()); ok {
		return encodeFields(s, rv)
	}
	if rv.Type() == durationType {
		return v.(time.Duration).String(), nil
	}
	if tm, ok := v.(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := encodeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("cannot encode map with %s keys", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		sec := NewDocument()
		for _, k := range keys {
			ev, err := encodeValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			sec.Set(k, ev)
		}
		return sec, nil
	}
	return nil, fmt.Errorf("cannot encode value of type %T", v)
}

// encodeFields serializes a schema instance into a section document,
// field by field in declaration order.
func encodeFields(s *Schema, rv reflect.Value) (*Document, error) {
	sec := NewDocument()
	for _, f := range s.fields {
		raw, err := encodeField(s, f, rv.Field(f.index).Interface())
		if err != nil {
			return nil, err
		}
		sec.Set(f.key, raw)
	}
	return sec, nil
}
