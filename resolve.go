package confclass

import (
	"reflect"
	"strings"
)

// unwrapOptional strips a single optional wrapper from a declared field
// type: *T resolves to T, everything else is returned unchanged. A nil
// pointer value is the representation of an absent optional.
func unwrapOptional(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// resolveFieldKey applies the repository-wide rule for a struct field's
// document key.
// Priority: conf:"name=..." > json tag name > field name; "-" disables
// the field. A schema-level Key remap overrides all of these.
func resolveFieldKey(sf reflect.StructField) string {
	if ct := sf.Tag.Get("conf"); ct != "" {
		if ct == "-" {
			return "-"
		}
		for _, p := range strings.Split(ct, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}
