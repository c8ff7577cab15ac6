// SPDX-License-Identifier: MIT

package conf

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Map is a Provider backed by an in-memory map. Nested maps are flattened
// into dotted keys at construction time.
type Map struct {
	name string

	mu     sync.RWMutex
	values map[string]any
}

// NewMap creates a Map provider from values, which may contain nested maps.
func NewMap(name string, values map[string]any) *Map {
	m := &Map{
		name:   name,
		values: make(map[string]any),
	}
	flatten("", values, m.values)
	return m
}

func (m *Map) Name() string { return m.name }

// Lookup returns the value stored under the dotted key.
func (m *Map) Lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Put stores value under the dotted key.
func (m *Map) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// All returns a copy of the flattened key space.
func (m *Map) All() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Tree rebuilds the nested structure from the dotted key space, for struct
// decoding.
func (m *Map) Tree() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any)
	for key, v := range m.values {
		node := out
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return out
}

// flatten writes nested maps into out with dotted keys.
func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch nested := v.(type) {
		case map[string]any:
			flatten(key, nested, out)
		case map[any]any:
			converted := make(map[string]any, len(nested))
			for nk, nv := range nested {
				converted[fmt.Sprint(nk)] = nv
			}
			flatten(key, converted, out)
		default:
			out[key] = v
		}
	}
}

// Env is a Provider backed by environment variables. The dotted key "a.b-c"
// is looked up as "<PREFIX>A_B_C".
type Env struct {
	prefix string
}

// NewEnv creates an Env provider. A non-empty prefix is prepended verbatim,
// so callers normally pass something like "MYAPP_".
func NewEnv(prefix string) *Env {
	return &Env{prefix: prefix}
}

func (e *Env) Name() string { return "env" }

// Lookup translates the dotted key to an environment variable name and reads it.
func (e *Env) Lookup(key string) (any, bool) {
	name := e.prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil, false
	}
	return v, true
}

// File is a Provider backed by a YAML file. Reload parses into a scratch map
// and swaps atomically, so a broken file never clobbers the last good state.
type File struct {
	path string

	mu   sync.RWMutex
	flat map[string]any
	tree map[string]any
}

// NewFile creates a File provider and performs the initial load.
func NewFile(path string) (*File, error) {
	f := &File{path: path}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Name() string { return "file:" + f.path }

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Reload re-reads the backing file. On any error the previous state is kept.
func (f *File) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	tree := make(map[string]any)
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse config file %s: %w", f.path, err)
	}
	flat := make(map[string]any)
	flatten("", tree, flat)

	f.mu.Lock()
	f.flat = flat
	f.tree = tree
	f.mu.Unlock()
	return nil
}

// Lookup returns the value stored under the dotted key.
func (f *File) Lookup(key string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.flat[key]
	return v, ok
}

// All returns a copy of the flattened key space.
func (f *File) All() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]any, len(f.flat))
	for k, v := range f.flat {
		out[k] = v
	}
	return out
}

// Tree returns the parsed YAML document, for struct decoding.
func (f *File) Tree() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tree
}
