// Package route maps item identifiers to destination paths.
//
// A route Func decides where (and whether) an item's final output is
// written. The Table records the decisions made during one run.
package route

import (
	"path"
	"strings"

	"github.com/roach88/kiln/internal/item"
)

// Func returns the destination path for an item, relative to the
// destination root. ok is false when the item is not written.
type Func func(id item.ID, data any) (dest string, ok bool)

// Identity routes an item to its own path.
func Identity(id item.ID, _ any) (string, bool) {
	return id.Path, true
}

// None never routes.
func None(item.ID, any) (string, bool) {
	return "", false
}

// SetExtension routes to the item's path with its extension replaced.
// ext may be given with or without the leading dot; "" strips it.
func SetExtension(ext string) Func {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return func(id item.ID, _ any) (string, bool) {
		p := id.Path
		return strings.TrimSuffix(p, path.Ext(p)) + ext, true
	}
}

// Constant routes every item to the same path.
func Constant(dest string) Func {
	return func(item.ID, any) (string, bool) {
		return dest, true
	}
}

// Compose feeds the path produced by first into second, as if it were the
// identifier's path. Either refusing to route refuses the whole route.
func Compose(first, second Func) Func {
	return func(id item.ID, data any) (string, bool) {
		p, ok := first(id, data)
		if !ok {
			return "", false
		}
		return second(item.ID{Path: p, Version: id.Version}, data)
	}
}
