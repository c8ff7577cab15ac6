// SPDX-License-Identifier: MIT

// Package conf exposes application configuration through an ordered chain of
// providers (explicit overrides, environment, YAML files). Lookups walk the
// chain front to back; the first provider that knows a key wins. Typed
// getters coerce string-shaped values and fall back to the supplied default
// when coercion fails.
package conf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/genutil/log"
)

// ErrReadOnly is returned by mutating calls on a read-only config.
var ErrReadOnly = errors.New("config is read-only")

// KeyError reports a missing configuration key.
type KeyError struct {
	Key    string
	Config string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q does not exist in config %q", e.Key, e.Config)
}

// Provider supplies raw configuration values for dotted keys.
type Provider interface {
	// Name identifies the provider for logging.
	Name() string
	// Lookup returns the raw value for key and whether it exists.
	Lookup(key string) (any, bool)
}

// Enumerable is implemented by providers that can list every key they hold.
// Snapshot and Unmarshal only see enumerable providers.
type Enumerable interface {
	All() map[string]any
}

// Config is an ordered chain of providers with typed accessors.
type Config struct {
	name      string
	overrides *Map
	providers []Provider
	readonly  bool
}

// New creates a Config with the given display name and provider chain.
// Providers are consulted in the order given.
func New(name string, providers ...Provider) *Config {
	return &Config{
		name:      name,
		overrides: NewMap("overrides", nil),
		providers: providers,
	}
}

// Name returns the display name for this config.
func (c *Config) Name() string { return c.name }

// AddProvider appends a provider to the chain.
func (c *Config) AddProvider(p Provider) error {
	if c.readonly {
		return ErrReadOnly
	}
	logger := log.WithComponent("conf")
	logger.Info().
		Str("provider", p.Name()).
		Str("config", c.name).
		Msg("config provider added")
	c.providers = append(c.providers, p)
	return nil
}

// Set installs an explicit override for key, taking precedence over every
// provider.
func (c *Config) Set(key string, value any) error {
	if c.readonly {
		return ErrReadOnly
	}
	c.overrides.Put(key, value)
	return nil
}

// ReadOnly returns a view of this config that rejects mutation.
func (c *Config) ReadOnly() *Config {
	clone := *c
	clone.readonly = true
	return &clone
}

// Get returns the raw value for key, or a KeyError if no provider knows it.
func (c *Config) Get(key string) (any, error) {
	if v, ok := c.overrides.Lookup(key); ok {
		return v, nil
	}
	for _, p := range c.providers {
		if v, ok := p.Lookup(key); ok {
			return v, nil
		}
	}
	return nil, &KeyError{Key: key, Config: c.name}
}

// Has reports whether any provider knows key.
func (c *Config) Has(key string) bool {
	_, err := c.Get(key)
	return err == nil
}

// Sub returns a view of this config rooted at prefix: Sub("redis").Get("host")
// resolves "redis.host".
func (c *Config) Sub(prefix string) *Config {
	sub := &Config{
		name:      c.name + "." + prefix,
		overrides: NewMap("overrides", nil),
		readonly:  c.readonly,
	}
	for _, p := range append([]Provider{c.overrides}, c.providers...) {
		sub.providers = append(sub.providers, &prefixed{prefix: prefix + ".", inner: p})
	}
	return sub
}

type prefixed struct {
	prefix string
	inner  Provider
}

func (p *prefixed) Name() string { return p.inner.Name() }

func (p *prefixed) Lookup(key string) (any, bool) {
	return p.inner.Lookup(p.prefix + key)
}

// String returns the value for key coerced to string, or def.
func (c *Config) String(key, def string) string {
	raw, err := c.Get(key)
	if err != nil {
		return def
	}
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value for key coerced to int, or def when missing or not
// coercible.
func (c *Config) Int(key string, def int) int {
	raw, err := c.Get(key)
	if err != nil {
		return def
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	c.coerceFailed(key, "int")
	return def
}

// Float returns the value for key coerced to float64, or def.
func (c *Config) Float(key string, def float64) float64 {
	raw, err := c.Get(key)
	if err != nil {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	c.coerceFailed(key, "float")
	return def
}

// Bool returns the value for key coerced to bool, or def. String forms accept
// true/false, yes/no, on/off and 1/0 in any case.
func (c *Config) Bool(key string, def bool) bool {
	raw, err := c.Get(key)
	if err != nil {
		return def
	}
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		if b, err := parseBool(v); err == nil {
			return b
		}
	case int:
		return v != 0
	}
	c.coerceFailed(key, "bool")
	return def
}

// Duration returns the value for key coerced to a duration, or def. Strings
// use time.ParseDuration syntax; bare integers are treated as seconds.
func (c *Config) Duration(key string, def time.Duration) time.Duration {
	raw, err := c.Get(key)
	if err != nil {
		return def
	}
	switch v := raw.(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		s := strings.TrimSpace(v)
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		if i, err := strconv.Atoi(s); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	c.coerceFailed(key, "duration")
	return def
}

// StringSlice returns the value for key coerced to a string slice, or def.
// String values are split on commas with surrounding whitespace trimmed.
func (c *Config) StringSlice(key string, def []string) []string {
	raw, err := c.Get(key)
	if err != nil {
		return def
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []string{}
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	c.coerceFailed(key, "string slice")
	return def
}

func (c *Config) coerceFailed(key, target string) {
	logger := log.WithComponent("conf")
	logger.Debug().
		Str("config", c.name).
		Str(log.FieldKey, key).
		Str("target_type", target).
		Msg("could not coerce config value, using default")
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// Snapshot merges all enumerable providers (lowest priority first, overrides
// last) into a flat dotted-key map. Values whose keys look sensitive are
// masked.
func (c *Config) Snapshot() map[string]any {
	out := make(map[string]any)
	for i := len(c.providers) - 1; i >= 0; i-- {
		if e, ok := c.providers[i].(Enumerable); ok {
			for k, v := range e.All() {
				out[k] = v
			}
		}
	}
	for k, v := range c.overrides.All() {
		out[k] = v
	}
	for k := range out {
		if sensitiveKey(k) {
			out[k] = "*********"
		}
	}
	return out
}

func sensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range []string{"password", "secret", "token", "credential"} {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}
