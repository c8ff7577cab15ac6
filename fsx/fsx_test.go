// SPDX-License-Identifier: MIT

package fsx

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), perm))
}

func TestWhich(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "mytool")
	writeFile(t, exe, 0o755)
	writeFile(t, filepath.Join(dir, "notexec"), 0o644)

	assert.Equal(t, exe, Which("mytool", dir))
	assert.Empty(t, Which("notexec", dir))
	assert.Empty(t, Which("missing", dir))
}

func TestWhich_ExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	writeFile(t, exe, 0o755)

	assert.Equal(t, exe, Which(exe))
	assert.Empty(t, Which(filepath.Join(dir, "missing")))
}

func TestWhich_UsesPathEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "envtool")
	writeFile(t, exe, 0o755)
	t.Setenv("PATH", dir)

	assert.Equal(t, exe, Which("envtool"))
}

func TestList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), 0o644)
	writeFile(t, filepath.Join(root, "b.txt"), 0o644)
	writeFile(t, filepath.Join(root, "sub", "c.go"), 0o644)
	writeFile(t, filepath.Join(root, ".hidden", "d.go"), 0o644)
	writeFile(t, filepath.Join(root, "vendor", "e.go"), 0o644)

	got, err := List(root, ListOptions{
		IncludeExts:        []string{"go"},
		SkipHidden:         true,
		ExcludeDirPatterns: []string{`vendor$`},
	})
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{"a.go", filepath.Join("sub", "c.go")}, got)
}

func TestList_ExcludeExts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), 0o644)
	writeFile(t, filepath.Join(root, "drop.tmp"), 0o644)

	got, err := List(root, ListOptions{ExcludeExts: []string{"tmp"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.go"}, got)
}

func TestList_BadPattern(t *testing.T) {
	_, err := List(t.TempDir(), ListOptions{ExcludeDirPatterns: []string{"("}})
	assert.Error(t, err)
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, WriteAtomic(path, []byte("v1"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	// Replacing an existing file keeps it readable throughout.
	require.NoError(t, WriteAtomic(path, []byte("v2"), 0o644))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestWriteAtomicFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.txt")

	require.NoError(t, WriteAtomicFrom(path, strings.NewReader("streamed"), 0o600))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(data))
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, 0o644)

	assert.NoError(t, IsRegularFile(file))
	assert.Error(t, IsRegularFile(dir))
	assert.Error(t, IsRegularFile(filepath.Join(dir, "missing")))
}
