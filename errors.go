package confclass

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrFileNotFound indicates the configuration file does not exist and the
// parser was not allowed to create it.
var ErrFileNotFound = errors.New("config file does not exist")

// InvalidConfigClassError reports types supplied to a parser that were
// never registered through Define.
type InvalidConfigClassError struct {
	Types []reflect.Type
}

func (e *InvalidConfigClassError) Error() string {
	names := make([]string, len(e.Types))
	for i, t := range e.Types {
		names[i] = t.String()
	}
	return "config types must be registered with Define: " + strings.Join(names, ", ")
}

// MultipleTopLevelConfigError reports that more than one schema supplied
// to a parser is flagged root.
type MultipleTopLevelConfigError struct {
	Names []string
}

func (e *MultipleTopLevelConfigError) Error() string {
	return "only one root config is allowed; found: " + strings.Join(e.Names, ", ")
}

// MissingSectionError reports that a non-root schema's named section is
// absent from the loaded document.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("missing %q section in config file", e.Section)
}

// MissingKeyError reports a field whose mapped document key is absent
// from its section.
type MissingKeyError struct {
	Schema string
	Key    string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing config key %q for %s", e.Key, e.Schema)
}

// TypeCoercionError reports that a raw value could not be coerced into a
// field's declared type.
type TypeCoercionError struct {
	Field string
	Want  reflect.Type
	Value any
	Err   error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("field %s: cannot coerce %T (%v) to %s", e.Field, e.Value, e.Value, e.Want)
}

func (e *TypeCoercionError) Unwrap() error { return e.Err }

// UnregisteredSchemaError reports a Get call for a type that was never
// supplied to the parser.
type UnregisteredSchemaError struct {
	Type reflect.Type
}

func (e *UnregisteredSchemaError) Error() string {
	return fmt.Sprintf("config type %s was not provided to this parser", e.Type)
}
