// SPDX-License-Identifier: MIT

package jsonx

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	Kind string `json:"kind"`
	Seq  int    `json:"seq"`
}

type unregistered struct {
	X int
}

func init() {
	Register[event]("event")
}

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := Marshal(event{Kind: "start", Seq: 7})
	require.NoError(t, err)

	// The wire form carries the type tag.
	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "event", env["$type"])

	v, err := Unmarshal(data)
	require.NoError(t, err)

	got, ok := v.(event)
	require.True(t, ok, "expected concrete event, got %T", v)
	assert.Equal(t, event{Kind: "start", Seq: 7}, got)
}

func TestMarshal_UnregisteredType(t *testing.T) {
	_, err := Marshal(unregistered{X: 1})
	assert.Error(t, err)
}

func TestUnmarshal_UnknownTypeTag(t *testing.T) {
	_, err := Unmarshal([]byte(`{"$type":"ghost","value":{}}`))

	var ute *UnknownTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "ghost", ute.Name)
}

func TestUnmarshal_MalformedEnvelope(t *testing.T) {
	_, err := Unmarshal([]byte(`{`))
	assert.Error(t, err)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register[event]("event")
	})
}

func TestUnmarshal_ValueDecodeError(t *testing.T) {
	_, err := Unmarshal([]byte(`{"$type":"event","value":"not-an-object"}`))
	assert.Error(t, err)
	assert.False(t, errors.As(err, new(*UnknownTypeError)))
}
