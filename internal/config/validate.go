package config

import (
	"fmt"
	"path"
)

// Validate checks every rule and ignore pattern. Returns all problems
// found (does not fail fast).
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	for i, p := range c.Ignore {
		if _, err := path.Match(p, ""); err != nil {
			add(fmt.Sprintf("ignore[%d]", i), ErrCodeBadPattern, "malformed pattern %q", p)
		}
	}

	errs = append(errs, c.validateDirectories()...)

	created := make(map[string]int)
	for i, r := range c.Rules {
		field := fmt.Sprintf("rules[%d]", i)

		switch {
		case r.Match == "" && r.Create == "":
			add(field, ErrCodeRuleTarget, "one of match or create is required")
		case r.Match != "" && r.Create != "":
			add(field, ErrCodeRuleAmbiguous, "match and create are mutually exclusive")
		case r.Match != "":
			if _, err := path.Match(r.Match, ""); err != nil {
				add(field+".match", ErrCodeBadPattern, "malformed pattern %q", r.Match)
			}
		case r.Create != "":
			key := r.Create + "#" + r.Version
			if r.Compiler == CompilerExpand {
				key = r.Create + "#"
			}
			if j, dup := created[key]; dup {
				add(field+".create", ErrCodeDuplicateCreate, "%q already created by rules[%d]", r.Create, j)
			} else {
				created[key] = i
			}
		}

		switch r.Compiler {
		case CompilerCopy, "":
			if r.Match == "" {
				add(field+".compiler", ErrCodeCopyWithoutMatch, "copy needs a match rule")
			}
		case CompilerConcat, CompilerIndex, CompilerExpand:
			if r.Pattern == "" {
				add(field+".pattern", ErrCodeMissingPattern, "%s needs a pattern", r.Compiler)
			} else if _, err := path.Match(r.Pattern, ""); err != nil {
				add(field+".pattern", ErrCodeBadPattern, "malformed pattern %q", r.Pattern)
			}
			if r.Compiler == CompilerExpand && r.Version == r.From {
				add(field+".version", ErrCodeExpandVersion, "expand needs a version different from %q", r.From)
			}
		default:
			add(field+".compiler", ErrCodeUnknownCompiler, "unknown compiler %q", r.Compiler)
		}

		if _, err := ParseRoute(r.Route); err != nil {
			add(field+".route", ErrCodeInvalidRoute, "%v", err)
		}
	}
	return errs
}

// validateDirectories rejects a destination or store that is, or holds,
// the provider directory, and a destination and store that overlap.
// Cleaning either would otherwise remove the sources.
func (c *Config) validateDirectories() ValidationErrors {
	dir := func(p, def string) string {
		if p == "" {
			p = def
		}
		return c.resolve(p)
	}
	dest := dir(c.Destination, DefaultDestination)
	st := dir(c.Store, DefaultStore)
	provider := dir(c.Provider, DefaultProvider)

	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Code: ErrCodeDirectoryOverlap, Message: fmt.Sprintf(format, args...)})
	}
	if _, inside := relativeTo(dest, provider); inside {
		add("destination", "%s contains the provider directory %s", dest, provider)
	}
	if _, inside := relativeTo(st, provider); inside {
		add("store", "%s contains the provider directory %s", st, provider)
	}
	_, storeInDest := relativeTo(dest, st)
	_, destInStore := relativeTo(st, dest)
	if storeInDest || destInStore {
		add("store", "%s overlaps the destination %s", st, dest)
	}
	return errs
}
