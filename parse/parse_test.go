// SPDX-License-Identifier: MIT

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	got, err := Version("1.6.2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 2}, got)

	got, err = Version("10")
	require.NoError(t, err)
	assert.Equal(t, []int{10}, got)
}

func TestVersion_Invalid(t *testing.T) {
	for _, in := range []string{"", "1.x.2", "1..2", "v1.2"} {
		_, err := Version(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestBool(t *testing.T) {
	for _, in := range []string{"true", "TRUE", "Yes", "t", "on", "1", " true "} {
		assert.True(t, Bool(in), "input %q", in)
	}
	for _, in := range []string{"false", "no", "0", "off", "", "2", "truthy"} {
		assert.False(t, Bool(in), "input %q", in)
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func TestBaseN(t *testing.T) {
	tests := []struct {
		num      uint64
		alphabet string
		minWidth int
		want     string
	}{
		{0, base36, 0, "0"},
		{35, base36, 0, "z"},
		{36, base36, 0, "10"},
		{255, "0123456789abcdef", 0, "ff"},
		{5, base36, 4, "0005"},
		{10, "01", 0, "1010"},
	}

	for _, tt := range tests {
		got, err := BaseN(tt.num, tt.alphabet, tt.minWidth)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "BaseN(%d, %q, %d)", tt.num, tt.alphabet, tt.minWidth)
	}
}

func TestBaseN_ShortAlphabet(t *testing.T) {
	_, err := BaseN(5, "x", 0)
	assert.Error(t, err)
}

func TestParseBaseN(t *testing.T) {
	got, err := ParseBaseN("ff", "0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, uint64(255), got)

	got, err = ParseBaseN("0005", base36)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got)
}

func TestParseBaseN_RoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 35, 36, 1295, 1296, 899182731} {
		s, err := BaseN(n, base36, 0)
		require.NoError(t, err)
		back, err := ParseBaseN(s, base36)
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}
}

func TestParseBaseN_Errors(t *testing.T) {
	_, err := ParseBaseN("", base36)
	assert.Error(t, err)

	_, err = ParseBaseN("a!b", base36)
	assert.Error(t, err)
}

func TestBinaryString(t *testing.T) {
	assert.Equal(t, "101", BinaryString(5, 0))
	assert.Equal(t, "00000101", BinaryString(5, 8))
	assert.Equal(t, "0", BinaryString(0, 0))
	assert.Equal(t, "1111", BinaryString(15, 2))
}

func TestSplitBySizes(t *testing.T) {
	got := SplitBySizes("abcdefg", []int{1, 2, 3}, false)
	assert.Equal(t, []string{"a", "bc", "def"}, got)

	got = SplitBySizes("abcdefg", []int{1, 2, 3}, true)
	assert.Equal(t, []string{"a", "bc", "def", "g"}, got)
}

func TestSplitBySizes_SizeBeyondInput(t *testing.T) {
	got := SplitBySizes("ab", []int{5}, true)
	assert.Equal(t, []string{"ab", ""}, got)
}

func TestSplitEvery(t *testing.T) {
	assert.Equal(t, []string{"ab", "cd", "ef"}, SplitEvery("abcdefg", 2, false))
	assert.Equal(t, []string{"ab", "cd", "ef", "g"}, SplitEvery("abcdefg", 2, true))
	assert.Equal(t, []string{"ab", "cd"}, SplitEvery("abcd", 2, true))
	assert.Empty(t, SplitEvery("abc", 0, false))
}
