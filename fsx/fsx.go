// SPDX-License-Identifier: MIT

// Package fsx provides filesystem helpers: executable lookup, filtered
// directory listings, durable atomic writes, and root-confined path
// resolution.
package fsx

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
)

// Which returns the full path of program if an executable by that name
// exists in one of paths. When paths is empty, the PATH environment variable
// is searched. A program name containing a separator is checked directly.
// The empty string means not found.
func Which(program string, paths ...string) string {
	if strings.ContainsRune(program, os.PathSeparator) {
		if isExecutable(program) {
			return program
		}
		return ""
	}

	if len(paths) == 0 {
		paths = filepath.SplitList(os.Getenv("PATH"))
	}
	for _, dir := range paths {
		candidate := filepath.Join(strings.Trim(dir, `"`), program)
		if isExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// ListOptions filters the results of List.
type ListOptions struct {
	// IncludeExts, when non-empty, keeps only files with one of these
	// extensions (without the leading dot).
	IncludeExts []string
	// ExcludeExts drops files with one of these extensions.
	ExcludeExts []string
	// SkipHidden prunes directories whose name starts with a dot.
	SkipHidden bool
	// ExcludeDirPatterns prunes directories whose full path matches one of
	// these regular expressions.
	ExcludeDirPatterns []string
}

// List walks root and returns the relative paths of files matching opts.
func List(root string, opts ListOptions) ([]string, error) {
	patterns := make([]*regexp.Regexp, 0, len(opts.ExcludeDirPatterns))
	for _, p := range opts.ExcludeDirPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("directory pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			for _, re := range patterns {
				if re.MatchString(path) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !matchExt(d.Name(), opts) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	return out, nil
}

func matchExt(name string, opts ListOptions) bool {
	if len(opts.IncludeExts) > 0 {
		included := false
		for _, ext := range opts.IncludeExts {
			if strings.HasSuffix(name, "."+ext) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, ext := range opts.ExcludeExts {
		if strings.HasSuffix(name, "."+ext) {
			return false
		}
	}
	return true
}

// WriteAtomic writes data to path durably: the content lands in a temp file
// which is fsynced and atomically renamed into place, so readers never see a
// partial file and a crash cannot lose the previous version.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck // cleanup after commit is a no-op

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

// WriteAtomicFrom streams r into path with the same atomicity guarantees as
// WriteAtomic.
func WriteAtomicFrom(path string, r io.Reader, perm os.FileMode) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck

	if _, err := io.Copy(pending, r); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

// IsRegularFile returns an error unless path exists and is a regular file.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}
