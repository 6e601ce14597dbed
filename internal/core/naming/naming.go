// Package naming normalizes user supplied file and folder names and keeps
// archive paths unique.
package naming

import (
	"fmt"
	"strings"
)

const defaultName = "file"

// Sanitize replaces every rune outside [A-Za-z0-9_.-] with '_'.
func Sanitize(name string) string {
	if name == "" {
		return defaultName
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// SafeFilename is Sanitize plus a guard against names made only of dots,
// which would escape their folder inside an archive.
func SafeFilename(name string) string {
	s := Sanitize(name)
	if strings.Trim(s, ".") == "" {
		return defaultName
	}
	return s
}

// rawExtension returns the suffix starting at the last dot, keeping its case.
func rawExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

// Extension returns the lowercase extension of name including the dot.
func Extension(name string) string {
	return strings.ToLower(rawExtension(name))
}

// SplitExtension splits name into base and extension.
func SplitExtension(name string) (string, string) {
	ext := rawExtension(name)
	return name[:len(name)-len(ext)], ext
}

// EnsureExtension makes suggested carry the extension of original whenever
// original has one.
func EnsureExtension(original, suggested string) string {
	oExt := rawExtension(original)
	sExt := rawExtension(suggested)
	if oExt == "" {
		return suggested
	}
	if sExt == "" {
		return suggested + oExt
	}
	if !strings.EqualFold(oExt, sExt) {
		return suggested[:len(suggested)-len(sExt)] + oExt
	}
	return suggested
}

// Truncate keeps at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// PathRegistry hands out unique paths. Not safe for concurrent use.
type PathRegistry struct {
	used map[string]struct{}
}

func NewPathRegistry() *PathRegistry {
	return &PathRegistry{used: make(map[string]struct{})}
}

// Reserve returns folder/filename, or folder/base_N.ext for the first free N.
func (r *PathRegistry) Reserve(folder, filename string) string {
	prefix := ""
	if folder != "" {
		prefix = folder + "/"
	}
	candidate := prefix + filename
	base, ext := SplitExtension(filename)
	for i := 1; r.taken(candidate); i++ {
		candidate = fmt.Sprintf("%s%s_%d%s", prefix, base, i, ext)
	}
	r.used[candidate] = struct{}{}
	return candidate
}

func (r *PathRegistry) taken(path string) bool {
	_, ok := r.used[path]
	return ok
}

// UniqueLabels sanitizes names and resolves collisions with the same _N rule
// used for archive paths, so every input keeps a distinct label.
func UniqueLabels(names []string) []string {
	registry := NewPathRegistry()
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = registry.Reserve("", Sanitize(name))
	}
	return out
}
