// Package config loads site configuration from YAML, CUE or HCL files.
//
// A configuration names the provider, destination and store directories
// and lists the site rules. Relative directories resolve against the
// directory holding the configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/resource"
)

// Defaults for unset directories.
const (
	DefaultDestination = "_site"
	DefaultStore       = "_cache"
	DefaultProvider    = "."
)

// Config is a site configuration.
type Config struct {
	Destination   string   `yaml:"destination" json:"destination,omitempty"`
	Store         string   `yaml:"store" json:"store,omitempty"`
	Provider      string   `yaml:"provider" json:"provider,omitempty"`
	InMemoryCache bool     `yaml:"in_memory_cache" json:"in_memory_cache,omitempty"`
	Ignore        []string `yaml:"ignore" json:"ignore,omitempty"`
	Rules         []Rule   `yaml:"rules" json:"rules,omitempty"`

	// Dir is the directory relative paths resolve against.
	Dir string `yaml:"-" json:"-"`
}

// Rule describes how a set of items is compiled and routed.
//
// Exactly one of Match (a glob over provider resources) or Create (the
// path of a virtual item) is set.
type Rule struct {
	Match     string            `yaml:"match" json:"match,omitempty"`
	Create    string            `yaml:"create" json:"create,omitempty"`
	Version   string            `yaml:"version" json:"version,omitempty"`
	Compiler  string            `yaml:"compiler" json:"compiler,omitempty"`
	Pattern   string            `yaml:"pattern" json:"pattern,omitempty"`
	From      string            `yaml:"from" json:"from,omitempty"`
	Separator string            `yaml:"separator" json:"separator,omitempty"`
	Route     string            `yaml:"route" json:"route,omitempty"`
	Metadata  map[string]string `yaml:"metadata" json:"metadata,omitempty"`
}

// Compiler names.
const (
	CompilerCopy   = "copy"
	CompilerConcat = "concat"
	CompilerIndex  = "index"
	CompilerExpand = "expand"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Destination: DefaultDestination,
		Store:       DefaultStore,
		Provider:    DefaultProvider,
		Dir:         ".",
	}
}

// Load reads the configuration file at path, picking the format from its
// extension (.yaml, .yml, .cue or .hcl), then fills in defaults and
// validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeUnreadable, Message: err.Error(), File: path}
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = parseYAML(path, data)
	case ".cue":
		cfg, err = parseCUE(path, data)
	case ".hcl":
		cfg, err = parseHCL(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported configuration format %q", ext), File: path}
	}
	if err != nil {
		return nil, err
	}

	cfg.Dir = filepath.Dir(path)
	cfg.applyDefaults()
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Destination == "" {
		c.Destination = DefaultDestination
	}
	if c.Store == "" {
		c.Store = DefaultStore
	}
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	for i := range c.Rules {
		if c.Rules[i].Route == "" {
			c.Rules[i].Route = RouteIdentity
		}
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Dir, p)
}

// DestinationDir returns the resolved destination directory.
func (c *Config) DestinationDir() string { return c.resolve(c.Destination) }

// StoreDir returns the resolved store directory.
func (c *Config) StoreDir() string { return c.resolve(c.Store) }

// ProviderDir returns the resolved provider directory.
func (c *Config) ProviderDir() string { return c.resolve(c.Provider) }

// IgnoreFunc returns the provider ignore predicate: editor and VCS noise,
// the destination and store directories when they live inside the
// provider, and the configured patterns.
func (c *Config) IgnoreFunc() resource.IgnoreFunc {
	var inside []string
	for _, dir := range []string{c.DestinationDir(), c.StoreDir()} {
		if rel, ok := relativeTo(c.ProviderDir(), dir); ok {
			inside = append(inside, rel)
		}
	}
	return resource.AnyIgnore(
		resource.DefaultIgnore,
		resource.IgnorePaths(inside...),
		resource.IgnorePatterns(c.Ignore...),
	)
}

func relativeTo(base, target string) (string, bool) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Engine returns the engine configuration.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Destination:   c.DestinationDir(),
		StoreDir:      c.StoreDir(),
		ProviderDir:   c.ProviderDir(),
		InMemoryCache: c.InMemoryCache,
		Ignore:        c.IgnoreFunc(),
	}
}

// Find returns the first of the conventional configuration file names
// present in dir.
func Find(dir string) (string, bool) {
	for _, name := range []string{"kiln.yaml", "kiln.yml", "kiln.cue", "kiln.hcl"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false
		}
	}
	return "", false
}
