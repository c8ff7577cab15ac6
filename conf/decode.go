// SPDX-License-Identifier: MIT

package conf

import (
	"fmt"

	"github.com/caarlos0/env/v7"
	"github.com/mitchellh/mapstructure"
)

// treer is implemented by providers that can expose their nested structure.
type treer interface {
	Tree() map[string]any
}

// Unmarshal decodes the subtree at the dotted path into target, which must
// be a pointer to a struct. Providers are merged lowest priority first, so a
// key set in an earlier provider wins. Field names are matched via the
// "conf" struct tag, falling back to case-insensitive name matching.
func (c *Config) Unmarshal(path string, target any) error {
	merged := make(map[string]any)
	providers := append([]Provider{}, c.providers...)
	for i := len(providers) - 1; i >= 0; i-- {
		t, ok := providers[i].(treer)
		if !ok {
			continue
		}
		mergeTree(merged, t.Tree())
	}
	mergeTree(merged, c.overrides.Tree())

	node := any(merged)
	if path != "" {
		for _, elt := range splitPath(path) {
			m, ok := node.(map[string]any)
			if !ok {
				return &KeyError{Key: path, Config: c.name}
			}
			node, ok = m[elt]
			if !ok {
				return &KeyError{Key: path, Config: c.name}
			}
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "conf",
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(node); err != nil {
		return fmt.Errorf("decode config path %q: %w", path, err)
	}
	return nil
}

// mergeTree deep-merges src into dst; scalar values in src overwrite dst.
func mergeTree(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeTree(dm, sm)
				continue
			}
			copied := make(map[string]any, len(sm))
			mergeTree(copied, sm)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}

func splitPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				out = append(out, path[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// FromEnv populates target (a pointer to a struct with `env` tags) directly
// from the process environment.
func FromEnv(target any, prefix string) error {
	return env.Parse(target, env.Options{Prefix: prefix})
}
