// SPDX-License-Identifier: MIT

package jsonx

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// UnknownTypeError reports an envelope whose type tag has no registration.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no type registered under %q", e.Name)
}

type envelope struct {
	Type  string          `json:"$type"`
	Value json.RawMessage `json:"value"`
}

var registry = struct {
	sync.RWMutex
	byName map[string]func(json.RawMessage) (any, error)
	byType map[reflect.Type]string
}{
	byName: make(map[string]func(json.RawMessage) (any, error)),
	byType: make(map[reflect.Type]string),
}

// Register makes T encodable with Marshal and decodable with Unmarshal under
// the given name. Registering the same name twice panics; do it from package
// init code.
func Register[T any](name string) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.byName[name]; dup {
		panic(fmt.Sprintf("jsonx: type name %q already registered", name))
	}
	registry.byName[name] = func(raw json.RawMessage) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	registry.byType[t] = name
}

// Marshal encodes v in an envelope carrying its registered type tag, so
// Unmarshal can restore the concrete Go type.
func Marshal(v any) ([]byte, error) {
	registry.RLock()
	name, ok := registry.byType[reflect.TypeOf(v)]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("type %T is not registered", v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: name, Value: raw})
}

// Unmarshal decodes an envelope produced by Marshal and returns the value
// with its original concrete type.
func Unmarshal(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	registry.RLock()
	decode, ok := registry.byName[env.Type]
	registry.RUnlock()
	if !ok {
		return nil, &UnknownTypeError{Name: env.Type}
	}
	return decode(env.Value)
}
