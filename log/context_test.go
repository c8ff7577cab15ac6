// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "corr-1", CorrelationIDFromContext(ctx))
}

func TestContextAccessors_NilAndEmpty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(nil)) //nolint:staticcheck // nil guard is the contract under test
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestWithContext_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	logger := WithContext(ctx, base)
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry[FieldRequestID])
	assert.NotContains(t, entry, FieldCorrelationID)
}

func TestWithContext_NoFieldsReturnsLoggerUnchanged(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logger := WithContext(context.Background(), base)
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, FieldRequestID)
}
