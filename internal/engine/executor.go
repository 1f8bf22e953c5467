package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/roach88/kiln/internal/compiler"
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/logging"
	"github.com/roach88/kiln/internal/route"
)

// executor compiles one item at a time and writes routed final outputs
// under the destination directory.
type executor struct {
	destination string
	store       compiler.Store
	provider    compiler.Provider
	routes      *route.Table
	clock       *Clock
	logger      *logging.Logger

	written []string
}

// execute runs rule's compile procedure. Final outputs are recorded for
// dependents, routed and written; Meta results are returned untouched for
// the orchestrator to merge.
func (x *executor) execute(ctx context.Context, rule compiler.Rule, env *compiler.Env) (compiler.Result, Step, error) {
	id := rule.ID()
	step := Step{Seq: x.clock.Next(), ID: id, Stale: env.IsStale(id)}

	res, err := rule.Compiler.Compile(ctx, env)
	if err != nil {
		return compiler.Result{}, step, newCompileError(id, err)
	}
	step.Kind = res.Kind.String()

	switch res.Kind {
	case compiler.KindMeta:
		step.Rules = len(res.Rules)
		x.logger.Report("meta result", "id", id.String(), "rules", len(res.Rules))
		return res, step, nil
	case compiler.KindFinal:
	default:
		return compiler.Result{}, step, newCompileError(id, fmt.Errorf("unknown result kind %s", res.Kind))
	}

	if res.Output == nil {
		return compiler.Result{}, step, newCompileError(id, errors.New("final result without output"))
	}
	body, err := res.Output.Serialize()
	if err != nil {
		return compiler.Result{}, step, newCompileError(id, fmt.Errorf("serialize: %w", err))
	}
	if err := x.store.Set(ctx, compiler.OutputKey(id), body); err != nil {
		return compiler.Result{}, step, newIOError("record output", id, err)
	}

	if rule.Route == nil {
		return res, step, nil
	}
	dest, ok := rule.Route(id, rule.Data)
	if !ok {
		return res, step, nil
	}

	dest, err = x.place(id, dest)
	if err != nil {
		return compiler.Result{}, step, err
	}
	wrote, err := x.write(dest, body)
	if err != nil {
		return compiler.Result{}, step, newIOError("write output", id, err)
	}
	if err := x.routes.Add(id, dest); err != nil {
		return compiler.Result{}, step, &RunError{Code: ErrCodeRouteConflict, Message: err.Error(), ID: id}
	}

	step.Route = dest
	step.Written = wrote
	if wrote {
		x.written = append(x.written, dest)
		x.logger.Report("wrote", "id", id.String(), "path", dest)
	}
	return res, step, nil
}

// place validates a route and returns its cleaned, slash-separated form.
func (x *executor) place(id item.ID, dest string) (string, error) {
	clean := path.Clean(dest)
	if dest == "" || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", &RunError{
			Code:    ErrCodeInvalidRoute,
			Message: fmt.Sprintf("route %q is not inside the destination", dest),
			ID:      id,
		}
	}
	if owner, taken := x.routes.Owner(clean); taken {
		return "", &RunError{
			Code:    ErrCodeRouteConflict,
			Message: fmt.Sprintf("%s is already written by %s", clean, owner),
			ID:      id,
		}
	}
	return clean, nil
}

// write stores body at dest unless the file already holds exactly body.
func (x *executor) write(dest string, body []byte) (bool, error) {
	full := filepath.Join(x.destination, filepath.FromSlash(dest))

	current, err := os.ReadFile(full)
	switch {
	case err == nil && bytes.Equal(current, body):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
