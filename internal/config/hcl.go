package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// hclFile is the top-level structure of an HCL configuration.
type hclFile struct {
	Destination   string     `hcl:"destination,optional"`
	Store         string     `hcl:"store,optional"`
	Provider      string     `hcl:"provider,optional"`
	InMemoryCache bool       `hcl:"in_memory_cache,optional"`
	Ignore        []string   `hcl:"ignore,optional"`
	Rules         []*hclRule `hcl:"rule,block"`
}

// hclRule is one `rule { ... }` block. Metadata is an arbitrary object
// expression whose values are converted to strings.
type hclRule struct {
	Match     string         `hcl:"match,optional"`
	Create    string         `hcl:"create,optional"`
	Version   string         `hcl:"version,optional"`
	Compiler  string         `hcl:"compiler,optional"`
	Pattern   string         `hcl:"pattern,optional"`
	From      string         `hcl:"from,optional"`
	Separator string         `hcl:"separator,optional"`
	Route     string         `hcl:"route,optional"`
	Metadata  hcl.Expression `hcl:"metadata,optional"`
}

// evalContext exposes a few string functions to metadata expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
		},
	}
}

func parseHCL(file string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, file)
	if diags.HasErrors() {
		return nil, diagError(file, diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &root); diags.HasErrors() {
		return nil, diagError(file, diags)
	}

	cfg := &Config{
		Destination:   root.Destination,
		Store:         root.Store,
		Provider:      root.Provider,
		InMemoryCache: root.InMemoryCache,
		Ignore:        root.Ignore,
	}
	for _, r := range root.Rules {
		meta, err := decodeMetadata(file, r.Metadata)
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, Rule{
			Match:     r.Match,
			Create:    r.Create,
			Version:   r.Version,
			Compiler:  r.Compiler,
			Pattern:   r.Pattern,
			From:      r.From,
			Separator: r.Separator,
			Route:     r.Route,
			Metadata:  meta,
		})
	}
	return cfg, nil
}

func decodeMetadata(file string, expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(evalContext())
	if diags.HasErrors() {
		return nil, diagError(file, diags)
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() || !(v.Type().IsObjectType() || v.Type().IsMapType()) {
		return nil, exprError(file, expr.Range(), "metadata must be an object")
	}

	out := make(map[string]string)
	for it := v.ElementIterator(); it.Next(); {
		k, elem := it.Element()
		s, err := convert.Convert(elem, cty.String)
		if err != nil {
			return nil, exprError(file, expr.Range(), fmt.Sprintf("metadata %q: %v", k.AsString(), err))
		}
		if s.IsNull() {
			continue
		}
		out[k.AsString()] = s.AsString()
	}
	return out, nil
}

func exprError(file string, rng hcl.Range, msg string) *LoadError {
	return &LoadError{Code: ErrCodeParse, Message: msg, File: file, Line: rng.Start.Line, Column: rng.Start.Column}
}

// diagError reports the first error diagnostic, positioned.
func diagError(file string, diags hcl.Diagnostics) *LoadError {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		le := &LoadError{Code: ErrCodeParse, Message: d.Summary, File: file}
		if d.Detail != "" {
			le.Message += ": " + d.Detail
		}
		if d.Subject != nil {
			le.Line = d.Subject.Start.Line
			le.Column = d.Subject.Start.Column
		}
		return le
	}
	return &LoadError{Code: ErrCodeParse, Message: diags.Error(), File: file}
}
