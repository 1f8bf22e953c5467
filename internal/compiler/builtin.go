package compiler

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/route"
	"github.com/roach88/kiln/internal/store"
)

// Copy outputs the item's resource unchanged.
type Copy struct{}

func (Copy) Dependencies(*item.Population) []item.ID { return nil }

func (Copy) Compile(_ context.Context, env *Env) (Result, error) {
	data, err := env.ReadResource()
	if err != nil {
		return Result{}, err
	}
	return Final(Blob(data)), nil
}

// Func adapts a plain function with a fixed dependency list.
type Func struct {
	Deps []item.ID
	Run  func(ctx context.Context, env *Env) (Result, error)
}

func (f Func) Dependencies(*item.Population) []item.ID { return slices.Clone(f.Deps) }

func (f Func) Compile(ctx context.Context, env *Env) (Result, error) {
	if f.Run == nil {
		return Result{}, fmt.Errorf("%s: no compile function", env.ID())
	}
	return f.Run(ctx, env)
}

// Alias re-emits the output of another item, typically under another route.
type Alias struct {
	Source item.ID
}

func (a Alias) Dependencies(*item.Population) []item.ID { return []item.ID{a.Source} }

func (a Alias) Compile(ctx context.Context, env *Env) (Result, error) {
	body, err := env.Load(ctx, a.Source)
	if err != nil {
		return Result{}, err
	}
	return Final(Blob(body)), nil
}

// Concat joins the outputs of every item matching Pattern (and Version),
// in population order.
//
// The joined output is cached in the store and reused while the item is
// not stale.
type Concat struct {
	Pattern   string
	Version   string
	Separator string
}

func (c Concat) Dependencies(pop *item.Population) []item.ID {
	return pop.Match(c.Pattern, c.Version)
}

func concatKey(id item.ID) store.Key {
	return CachePrefix.Append("concat", id.Path, id.Version)
}

// concatCache is the stored form of a concatenation. Params fingerprints
// the settings the body was produced with.
type concatCache struct {
	Params string `json:"params"`
	Body   []byte `json:"body"`
}

func (c Concat) params() string {
	return fmt.Sprintf("%q %q %q", c.Pattern, c.Version, c.Separator)
}

func (c Concat) Compile(ctx context.Context, env *Env) (Result, error) {
	key := concatKey(env.ID())

	if !env.IsStale(env.ID()) {
		var cached concatCache
		ok, err := env.Store.Get(ctx, key, &cached)
		if err != nil {
			return Result{}, err
		}
		if ok && cached.Params == c.params() {
			if env.Logger != nil {
				env.Logger.Report("reusing cached concatenation", "id", env.ID().String())
			}
			return Final(Blob(cached.Body)), nil
		}
	}

	var buf bytes.Buffer
	for i, dep := range c.Dependencies(env.Population) {
		body, err := env.Load(ctx, dep)
		if err != nil {
			return Result{}, err
		}
		if i > 0 {
			buf.WriteString(c.Separator)
		}
		buf.Write(body)
	}

	out := buf.Bytes()
	if err := env.Store.Set(ctx, key, concatCache{Params: c.params(), Body: out}); err != nil {
		return Result{}, err
	}
	return Final(Blob(out)), nil
}

// Index renders an HTML list linking every routed item matching Pattern.
// Matching items without a route are left out.
type Index struct {
	Pattern string
	Version string
}

func (x Index) Dependencies(pop *item.Population) []item.ID {
	return pop.Match(x.Pattern, x.Version)
}

func (x Index) Compile(_ context.Context, env *Env) (Result, error) {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, id := range x.Dependencies(env.Population) {
		dest, ok := env.Routes.Lookup(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "<li><a href=\"/%s\">%s</a></li>\n",
			html.EscapeString(dest), html.EscapeString(id.Path))
	}
	b.WriteString("</ul>\n")
	return Final(Text(b.String())), nil
}

// Expand registers, for every item matching Pattern (and From), a virtual
// item with the same path and version Version that re-emits the matched
// item's output under Route.
type Expand struct {
	Pattern string
	From    string
	Version string
	Route   route.Func
}

func (e Expand) Dependencies(pop *item.Population) []item.ID {
	return pop.Match(e.Pattern, e.From)
}

func (e Expand) Compile(_ context.Context, env *Env) (Result, error) {
	if e.Version == e.From {
		return Result{}, fmt.Errorf("expand %s: version %q would collide with matched items", env.ID(), e.Version)
	}
	var rules []Rule
	for _, id := range e.Dependencies(env.Population) {
		entry, _ := env.Population.Lookup(id)
		rules = append(rules, Rule{
			Item:     item.Virtual{Identifier: id.WithVersion(e.Version)},
			Data:     entry.Data,
			Compiler: Alias{Source: id},
			Route:    e.Route,
		})
	}
	return Meta(rules...), nil
}
