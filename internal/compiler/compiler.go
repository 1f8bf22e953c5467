package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/logging"
	"github.com/roach88/kiln/internal/route"
	"github.com/roach88/kiln/internal/store"
)

// Compiler is a compile procedure.
type Compiler interface {
	// Dependencies lists the identifiers this item reads. It must be a
	// pure function of the population.
	Dependencies(pop *item.Population) []item.ID

	// Compile produces the item's result.
	Compile(ctx context.Context, env *Env) (Result, error)
}

// Output is a final payload that knows how to serialise itself.
type Output interface {
	Serialize() ([]byte, error)
}

// Blob is raw bytes.
type Blob []byte

func (b Blob) Serialize() ([]byte, error) { return b, nil }

// Text is a UTF-8 string.
type Text string

func (t Text) Serialize() ([]byte, error) { return []byte(t), nil }

// Kind tags a Result.
type Kind int

const (
	KindFinal Kind = iota
	KindMeta
)

func (k Kind) String() string {
	switch k {
	case KindFinal:
		return "final"
	case KindMeta:
		return "meta"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is what a compile procedure returns. Exactly one of Output
// (KindFinal) or Rules (KindMeta) is meaningful.
type Result struct {
	Kind   Kind
	Output Output
	Rules  []Rule
}

// Final wraps an output.
func Final(out Output) Result {
	return Result{Kind: KindFinal, Output: out}
}

// Meta wraps rules to register.
func Meta(rules ...Rule) Result {
	return Result{Kind: KindMeta, Rules: rules}
}

// Provider is the read access compilers get to source resources.
type Provider interface {
	ReadBytes(r string) ([]byte, error)
}

// Store is the persistent key/value access compilers get.
type Store interface {
	Get(ctx context.Context, key store.Key, dst any) (bool, error)
	Set(ctx context.Context, key store.Key, v any) error
}

// ErrNoResource is returned by Env.ReadResource for virtual items.
var ErrNoResource = errors.New("item has no resource")

// Env is everything a compile procedure may look at.
type Env struct {
	Item       item.Item
	Data       any
	Population *item.Population
	Provider   Provider
	Store      Store
	Routes     route.Reader
	Modified   func(item.ID) bool
	Stale      func(item.ID) bool
	Logger     *logging.Logger
}

// ID is the identifier of the item being compiled.
func (e *Env) ID() item.ID { return e.Item.ID() }

// ReadResource returns the bytes of the item's backing resource.
func (e *Env) ReadResource() ([]byte, error) {
	r, ok := e.Item.Resource()
	if !ok {
		return nil, fmt.Errorf("%s: %w", e.ID(), ErrNoResource)
	}
	return e.Provider.ReadBytes(r)
}

// Store subtrees owned by compilation. Both are dropped when a run starts
// from scratch.
var (
	OutputPrefix = store.K("kiln", "output")
	CachePrefix  = store.K("kiln", "compiler")
)

// OutputKey is where the serialised final output of id is kept. Path and
// version are separate segments, so no path can collide with a version.
func OutputKey(id item.ID) store.Key {
	return OutputPrefix.Append(id.Path, id.Version)
}

// Load returns the serialised output recorded for id earlier in the run.
// Only dependencies are guaranteed to have been compiled already.
func (e *Env) Load(ctx context.Context, id item.ID) ([]byte, error) {
	var body []byte
	ok, err := e.Store.Get(ctx, OutputKey(id), &body)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("no output recorded for %s", id)
	}
	return body, nil
}

// IsStale reports whether id is out of date in this run. Nil predicates
// answer true.
func (e *Env) IsStale(id item.ID) bool {
	if e.Stale == nil {
		return true
	}
	return e.Stale(id)
}
