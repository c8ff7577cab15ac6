// SPDX-License-Identifier: MIT

// Package parse provides small parsing and formatting helpers: dotted
// version strings, lenient booleans, custom-alphabet base conversion, and
// positional string splitting.
package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// Version parses a dotted version string like "1.6.2" into its numeric
// components.
func Version(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty version string")
	}
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("version %q: component %q is not a number", s, p)
		}
		out[i] = n
	}
	return out, nil
}

// Bool interprets s leniently: true, yes, t, on and 1 (any case) are true,
// everything else is false.
func Bool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "YES", "T", "ON", "1":
		return true
	}
	return false
}

// BaseN converts a non-negative base-10 number to a string in the base
// defined by alphabet, left-padded with the alphabet's zero digit to
// minWidth characters.
func BaseN(num uint64, alphabet string, minWidth int) (string, error) {
	if len(alphabet) < 2 {
		return "", fmt.Errorf("alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	base := uint64(len(alphabet))

	var sb []byte
	if num == 0 {
		sb = []byte{alphabet[0]}
	} else {
		for num > 0 {
			sb = append(sb, alphabet[num%base])
			num /= base
		}
		for i, j := 0, len(sb)-1; i < j; i, j = i+1, j-1 {
			sb[i], sb[j] = sb[j], sb[i]
		}
	}

	for len(sb) < minWidth {
		sb = append([]byte{alphabet[0]}, sb...)
	}
	return string(sb), nil
}

// ParseBaseN converts a string in the base defined by alphabet back to a
// base-10 number. Characters outside the alphabet are an error.
func ParseBaseN(s, alphabet string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty input")
	}
	base := uint64(len(alphabet))

	var num uint64
	for _, c := range []byte(s) {
		idx := strings.IndexByte(alphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("illegal character %q in input", c)
		}
		num = num*base + uint64(idx)
	}
	return num, nil
}

// BinaryString formats num in base 2 without a prefix, zero-padded to
// minDigits.
func BinaryString(num uint64, minDigits int) string {
	b := strconv.FormatUint(num, 2)
	if pad := minDigits - len(b); pad > 0 {
		b = strings.Repeat("0", pad) + b
	}
	return b
}

// SplitBySizes splits s into consecutive pieces of the given sizes. A size
// larger than the remaining input takes what is left. With remainder set,
// whatever follows the last size is appended as a final element, possibly
// empty.
func SplitBySizes(s string, sizes []int, remainder bool) []string {
	out := make([]string, 0, len(sizes)+1)
	for _, size := range sizes {
		if size > len(s) {
			size = len(s)
		}
		if size < 0 {
			size = 0
		}
		out = append(out, s[:size])
		s = s[size:]
	}
	if remainder {
		out = append(out, s)
	}
	return out
}

// SplitEvery splits s into pieces of the fixed size, dropping a trailing
// fragment shorter than size unless remainder is set.
func SplitEvery(s string, size int, remainder bool) []string {
	if size <= 0 {
		if remainder {
			return []string{s}
		}
		return nil
	}
	sizes := make([]int, len(s)/size)
	for i := range sizes {
		sizes[i] = size
	}
	out := SplitBySizes(s, sizes, remainder)
	if remainder && len(out) > 0 && out[len(out)-1] == "" && len(s)%size == 0 {
		out = out[:len(out)-1]
	}
	return out
}
