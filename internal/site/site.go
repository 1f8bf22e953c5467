// Package site turns configured rules into a population step.
package site

import (
	"context"
	"fmt"
	"maps"

	"github.com/roach88/kiln/internal/compiler"
	"github.com/roach88/kiln/internal/config"
	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/logging"
	"github.com/roach88/kiln/internal/resource"
)

// Populate returns the population step for cfg's rules.
//
// Rules apply in order. A resource matched by several rules with the same
// version belongs to the first of them; later matches are skipped.
func Populate(cfg *config.Config, log *logging.Logger) engine.PopulateFunc {
	if log == nil {
		log = logging.Discard()
	}
	return func(_ context.Context, p *resource.Provider) ([]compiler.Rule, error) {
		var rules []compiler.Rule
		claimed := make(map[item.ID]int)

		for i, r := range cfg.Rules {
			c, err := Compiler(r)
			if err != nil {
				return nil, fmt.Errorf("rules[%d]: %w", i, err)
			}
			rt, err := config.ParseRoute(r.Route)
			if err != nil {
				return nil, fmt.Errorf("rules[%d]: %w", i, err)
			}

			if r.Create != "" {
				id := item.New(r.Create)
				if r.Compiler != config.CompilerExpand {
					id = id.WithVersion(r.Version)
				}
				rule := compiler.Rule{
					Item:     item.Virtual{Identifier: id},
					Data:     metadata(r),
					Compiler: c,
					Route:    rt,
				}
				if r.Compiler == config.CompilerExpand {
					// The route applies to the expanded items.
					rule.Route = nil
				}
				rules = append(rules, rule)
				continue
			}

			matched, err := p.Match(r.Match)
			if err != nil {
				return nil, fmt.Errorf("rules[%d]: %w", i, err)
			}
			for _, res := range matched {
				id := item.New(res).WithVersion(r.Version)
				if j, ok := claimed[id]; ok {
					log.Report("already claimed", "id", id.String(), "rule", i, "by", j)
					continue
				}
				claimed[id] = i
				rules = append(rules, compiler.Rule{
					Item:     item.Source{Identifier: id, Path: res},
					Data:     metadata(r),
					Compiler: c,
					Route:    rt,
				})
			}
		}
		return rules, nil
	}
}

// Compiler builds the compile procedure a rule names.
func Compiler(r config.Rule) (compiler.Compiler, error) {
	switch r.Compiler {
	case config.CompilerCopy, "":
		return compiler.Copy{}, nil
	case config.CompilerConcat:
		return compiler.Concat{Pattern: r.Pattern, Version: r.From, Separator: r.Separator}, nil
	case config.CompilerIndex:
		return compiler.Index{Pattern: r.Pattern, Version: r.From}, nil
	case config.CompilerExpand:
		rt, err := config.ParseRoute(r.Route)
		if err != nil {
			return nil, err
		}
		return compiler.Expand{Pattern: r.Pattern, From: r.From, Version: r.Version, Route: rt}, nil
	}
	return nil, fmt.Errorf("unknown compiler %q", r.Compiler)
}

// metadata copies the rule's metadata so items never share a map.
func metadata(r config.Rule) any {
	if len(r.Metadata) == 0 {
		return nil
	}
	return maps.Clone(r.Metadata)
}
