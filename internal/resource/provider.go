package resource

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"github.com/roach88/kiln/internal/store"
)

// Cache is the subset of the store the provider needs.
type Cache interface {
	Get(ctx context.Context, key store.Key, dst any) (bool, error)
	Set(ctx context.Context, key store.Key, v any) error
}

// IgnoreFunc reports whether a slash-separated, root-relative path should
// be skipped. Ignored directories are not descended into.
type IgnoreFunc func(rel string, isDir bool) bool

// Provider gives access to the resources under one root directory.
type Provider struct {
	root      string
	resources []string
	known     map[string]struct{}

	mu       sync.Mutex
	modified map[string]bool
}

// record is the value stored per resource.
type record struct {
	Checksum string `json:"checksum"`
	Size     int    `json:"size"`
}

// New walks root once and records every non-ignored regular file.
// A nil ignore keeps everything.
func New(root string, ignore IgnoreFunc) (*Provider, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("provider root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("provider root %s is not a directory", root)
	}

	p := &Provider{
		root:     root,
		known:    make(map[string]struct{}),
		modified: make(map[string]bool),
	}

	err = filepath.WalkDir(root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if full == root {
			return nil
		}
		rel, err := filepath.Rel(root, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if ignore != nil && ignore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			p.resources = append(p.resources, rel)
			p.known[rel] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	slices.Sort(p.resources)
	return p, nil
}

// List returns every known resource in lexical order.
func (p *Provider) List() []string {
	return slices.Clone(p.resources)
}

// Match returns the known resources matching a glob pattern.
func (p *Provider) Match(pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	var out []string
	for _, r := range p.resources {
		if ok, _ := path.Match(pattern, r); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Exists reports whether r is a known resource.
func (p *Provider) Exists(r string) bool {
	_, ok := p.known[r]
	return ok
}

// ReadBytes returns the contents of resource r.
func (p *Provider) ReadBytes(r string) ([]byte, error) {
	if !p.Exists(r) {
		return nil, fmt.Errorf("unknown resource %q", r)
	}
	data, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(r)))
	if err != nil {
		return nil, fmt.Errorf("read resource %s: %w", r, err)
	}
	return data, nil
}

// Key returns the store key holding the recorded checksum of r.
func Key(r string) store.Key {
	return store.K("kiln", "resource", r, "checksum")
}

// Modified reports whether r changed since its checksum was last recorded,
// and records the current checksum. A resource that was never recorded
// counts as modified. A resource that no longer exists is an error.
func (p *Provider) Modified(ctx context.Context, cache Cache, r string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.modified[r]; ok {
		return m, nil
	}

	data, err := p.ReadBytes(r)
	if err != nil {
		return false, err
	}
	current := record{Checksum: Checksum(data), Size: len(data)}

	var previous record
	found, err := cache.Get(ctx, Key(r), &previous)
	if err != nil {
		return false, fmt.Errorf("load checksum of %s: %w", r, err)
	}

	modified := !found || previous != current
	if modified {
		if err := cache.Set(ctx, Key(r), current); err != nil {
			return false, fmt.Errorf("store checksum of %s: %w", r, err)
		}
	}

	p.modified[r] = modified
	return modified, nil
}
