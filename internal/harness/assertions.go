package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/kiln/internal/store"
)

// AssertionContext is what assertions inspect after the last run.
type AssertionContext struct {
	Ctx         context.Context
	Destination string
	StoreDir    string
	Result      *Result
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failures.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertOutput:
		return assertOutput(actx.Destination, a)
	case AssertOutputAbsent:
		return assertOutputAbsent(actx.Destination, a)
	case AssertOrder:
		return assertOrder(actx.Result, a)
	case AssertLedger:
		return assertLedger(actx.Ctx, actx.StoreDir, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertOutput(dest string, a Assertion) error {
	data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(a.Path)))
	if err != nil {
		return &AssertionError{
			Type:     AssertOutput,
			Expected: fmt.Sprintf("%s with content %q", a.Path, a.Content),
			Actual:   err.Error(),
		}
	}
	if string(data) != a.Content {
		return &AssertionError{
			Type:     AssertOutput,
			Expected: fmt.Sprintf("%s with content %q", a.Path, a.Content),
			Actual:   fmt.Sprintf("content %q", data),
		}
	}
	return nil
}

func assertOutputAbsent(dest string, a Assertion) error {
	_, err := os.Stat(filepath.Join(dest, filepath.FromSlash(a.Path)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	actual := "file exists"
	if err != nil {
		actual = err.Error()
	}
	return &AssertionError{
		Type:     AssertOutputAbsent,
		Expected: fmt.Sprintf("%s not written", a.Path),
		Actual:   actual,
	}
}

// assertOrder checks that the items were compiled in the given relative
// order. Other items may run in between.
func assertOrder(result *Result, a Assertion) error {
	run, ok := result.Run(a.Run)
	if !ok {
		return &AssertionError{Type: AssertOrder, Expected: fmt.Sprintf("run %q", a.Run), Actual: "no such run"}
	}

	position := make(map[string]int, len(run.Order))
	for i, id := range run.Order {
		position[id] = i
	}

	last := -1
	for _, want := range a.Items {
		pos, ok := position[want]
		if !ok {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("%s compiled in run %q", want, a.Run),
				Actual:   fmt.Sprintf("order %v", run.Order),
			}
		}
		if pos < last {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("order %v", a.Items),
				Actual:   fmt.Sprintf("order %v", run.Order),
			}
		}
		last = pos
	}
	return nil
}

func assertLedger(ctx context.Context, dir string, a Assertion) error {
	st, err := store.OpenDir(dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	runs, err := st.Runs(ctx, len(a.Statuses)+1)
	if err != nil {
		return fmt.Errorf("read run ledger: %w", err)
	}
	got := make([]string, len(runs))
	for i, r := range runs {
		got[i] = string(r.Status)
	}
	if strings.Join(got, ",") != strings.Join(a.Statuses, ",") {
		return &AssertionError{
			Type:     AssertLedger,
			Expected: fmt.Sprintf("statuses %v", a.Statuses),
			Actual:   fmt.Sprintf("statuses %v", got),
		}
	}
	return nil
}
