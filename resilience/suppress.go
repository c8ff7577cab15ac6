// SPDX-License-Identifier: MIT

package resilience

import (
	"errors"

	"github.com/ManuGH/genutil/log"
)

// Suppressor swallows errors matching a configured whitelist, for call sites
// where certain failures are expected and must not propagate.
type Suppressor struct {
	safe         []error
	onSuppressed func(error)
}

// SuppressorOption configures a Suppressor.
type SuppressorOption func(*Suppressor)

// WithSafeErrors adds sentinel errors (matched with errors.Is) to the whitelist.
func WithSafeErrors(errs ...error) SuppressorOption {
	return func(s *Suppressor) { s.safe = append(s.safe, errs...) }
}

// WithSuppressionHandler registers a hook invoked with every suppressed error.
func WithSuppressionHandler(fn func(error)) SuppressorOption {
	return func(s *Suppressor) { s.onSuppressed = fn }
}

// NewSuppressor creates a Suppressor. The whitelist starts empty; callers
// opt in to every error class they consider safe.
func NewSuppressor(opts ...SuppressorOption) *Suppressor {
	s := &Suppressor{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSafe reports whether err matches the whitelist.
func (s *Suppressor) IsSafe(err error) bool {
	for _, safe := range s.safe {
		if errors.Is(err, safe) {
			return true
		}
	}
	return false
}

// Suppress returns nil if err is nil or whitelisted, otherwise err. Suppressed
// errors are logged at debug level and passed to the suppression handler.
func (s *Suppressor) Suppress(err error) error {
	if err == nil {
		return nil
	}
	if !s.IsSafe(err) {
		return err
	}
	logger := log.WithComponent("resilience")
	logger.Debug().Err(err).Msg("suppressing safe error")
	if s.onSuppressed != nil {
		s.onSuppressed(err)
	}
	return nil
}

// Do runs fn and suppresses a whitelisted error result.
func (s *Suppressor) Do(fn func() error) error {
	return s.Suppress(fn())
}
