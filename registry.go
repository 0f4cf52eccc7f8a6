package confclass

import (
	"fmt"
	"reflect"
	"sync"
)

// The registry associates schema metadata with struct types for the
// lifetime of the process. Schemas are definitional: they are created
// once at registration and never mutated or removed.
var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]*Schema{}
)

func registerSchema(t reflect.Type, s *Schema) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[t]; ok {
		return fmt.Errorf("config type %s is already registered", t)
	}
	registry[t] = s
	return nil
}

// lookupSchema returns the schema registered for t, if any.
func lookupSchema(t reflect.Type) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[t]
	return s, ok
}
