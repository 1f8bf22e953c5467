package resource

import (
	"path"
	"strings"
)

// DefaultIgnore skips editor and VCS noise: dotfiles, emacs lock files
// ("#..."), backups ("...~") and vim swap files.
func DefaultIgnore(rel string, _ bool) bool {
	name := path.Base(rel)
	switch {
	case strings.HasPrefix(name, "."):
		return true
	case strings.HasPrefix(name, "#"):
		return true
	case strings.HasSuffix(name, "~"):
		return true
	case strings.HasSuffix(name, ".swp"):
		return true
	}
	return false
}

// IgnorePaths skips the given root-relative paths and everything below
// them. Used to keep the destination and store directories out of the
// provider when they live inside it.
func IgnorePaths(paths ...string) IgnoreFunc {
	clean := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = path.Clean(p)
		if p == "." || strings.HasPrefix(p, "../") || p == ".." {
			continue
		}
		clean = append(clean, p)
	}
	return func(rel string, _ bool) bool {
		for _, p := range clean {
			if rel == p || strings.HasPrefix(rel, p+"/") {
				return true
			}
		}
		return false
	}
}

// IgnorePatterns skips paths whose full relative path or base name matches
// one of the glob patterns. Malformed patterns never match.
func IgnorePatterns(patterns ...string) IgnoreFunc {
	return func(rel string, _ bool) bool {
		base := path.Base(rel)
		for _, pat := range patterns {
			if ok, _ := path.Match(pat, rel); ok {
				return true
			}
			if ok, _ := path.Match(pat, base); ok {
				return true
			}
		}
		return false
	}
}

// AnyIgnore combines predicates; a path is ignored if any of them says so.
func AnyIgnore(fns ...IgnoreFunc) IgnoreFunc {
	return func(rel string, isDir bool) bool {
		for _, fn := range fns {
			if fn != nil && fn(rel, isDir) {
				return true
			}
		}
		return false
	}
}
