package security

import (
	"path/filepath"
	"strings"
	"sync"
)

// RootSet holds the canonical allow-list of directory roots that define the
// filesystem surface remote commands and file operations may touch. An empty
// set denies everything.
type RootSet struct {
	mu    sync.RWMutex
	roots map[string]struct{}
}

// NewRootSet builds a RootSet from raw root strings. Each entry is
// canonicalized at insertion; empty entries are ignored. A root that does not
// exist yet is still accepted in its normalized form.
func NewRootSet(rawRoots []string) *RootSet {
	rs := &RootSet{roots: make(map[string]struct{})}
	for _, raw := range rawRoots {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		rs.roots[Canonicalize(raw)] = struct{}{}
	}
	return rs
}

// Add inserts a root, canonicalized. Returns true if it was newly added.
func (rs *RootSet) Add(root string) bool {
	canonical := Canonicalize(root)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.roots[canonical]; ok {
		return false
	}
	rs.roots[canonical] = struct{}{}
	return true
}

// Remove deletes a root by exact canonical match. Returns true if it was present.
func (rs *RootSet) Remove(root string) bool {
	canonical := Canonicalize(root)

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.roots[canonical]; !ok {
		return false
	}
	delete(rs.roots, canonical)
	return true
}

// Roots returns a snapshot copy of the configured roots.
func (rs *RootSet) Roots() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	roots := make([]string, 0, len(rs.roots))
	for root := range rs.roots {
		roots = append(roots, root)
	}
	return roots
}

// Contains reports whether path, after canonicalization, is equal to or a
// descendant of at least one configured root. Malformed paths are denied.
func (rs *RootSet) Contains(path string) bool {
	if strings.ContainsRune(path, 0) {
		return false
	}
	target := Canonicalize(path)

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for root := range rs.roots {
		if isWithin(root, target) {
			return true
		}
	}
	return false
}

// isWithin reports whether target equals root or sits under it. Comparison is
// segment-aligned: /home/kasm-user2 is not within /home/kasm-user.
func isWithin(root, target string) bool {
	if target == root {
		return true
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	// An escape is always a leading parent segment; a child that merely
	// starts with dots ("..foo") is still inside the root.
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Canonicalize resolves a path to an absolute form with symlinks followed and
// dot segments collapsed. When the path (or its parent) does not exist the
// result falls back to lexical normalization, so paths that are not yet
// created can still be compared.
func Canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	// The path may not exist yet; resolving the parent still catches
	// symlinked directories above it.
	dir, base := filepath.Split(abs)
	if dir != "" && dir != abs {
		if resolvedDir, err := filepath.EvalSymlinks(filepath.Clean(dir)); err == nil {
			return filepath.Join(resolvedDir, base)
		}
	}

	return abs
}
