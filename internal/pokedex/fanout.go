package pokedex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FailurePolicy decides what a fan-out does when one of its items fails.
type FailurePolicy string

const (
	// PolicyAllOrNothing fails the whole batch on the first item error and
	// cancels the items still in flight.
	PolicyAllOrNothing FailurePolicy = "all_or_nothing"

	// PolicyPartial drops failed items, keeps the rest in input order, and
	// reports the failures as a *PartialError.
	PolicyPartial FailurePolicy = "partial"
)

// ParsePolicy parses a config value. The empty string means PolicyAllOrNothing.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAllOrNothing:
		return PolicyAllOrNothing, nil
	case PolicyPartial:
		return PolicyPartial, nil
	}
	return "", fmt.Errorf("invalid failure policy %q (valid: %s, %s)", s, PolicyAllOrNothing, PolicyPartial)
}

// ItemError is one failed item of a partial fan-out.
type ItemError struct {
	Index int
	Name  string
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s (#%d): %v", e.Name, e.Index, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// PartialError is returned alongside the successful results when a fan-out
// under PolicyPartial dropped one or more items.
type PartialError struct {
	Op       string
	Failures []ItemError
}

func (e *PartialError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Name
	}
	return fmt.Sprintf("%s: %d item(s) failed: %s", e.Op, len(e.Failures), strings.Join(names, ", "))
}

func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// IsPartial reports whether err is a *PartialError, meaning the accompanying
// results are usable.
func IsPartial(err error) bool {
	var p *PartialError
	return errors.As(err, &p)
}

// fanOut calls fn once per input with at most limit calls in flight and
// returns the outputs in input order regardless of completion order. Each
// goroutine writes only its own slot.
func fanOut[In, Out any](
	ctx context.Context,
	op string,
	inputs []In,
	limit int,
	policy FailurePolicy,
	name func(In) string,
	fn func(context.Context, In) (Out, error),
) ([]Out, error) {
	if len(inputs) == 0 {
		return []Out{}, nil
	}

	results := make([]Out, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			out, err := fn(gctx, in)
			if err != nil {
				if policy == PolicyPartial {
					errs[i] = err
					return nil
				}
				return fmt.Errorf("%s: %s: %w", op, name(in), err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Out, 0, len(inputs))
	var failures []ItemError
	for i := range inputs {
		if errs[i] != nil {
			failures = append(failures, ItemError{Index: i, Name: name(inputs[i]), Err: errs[i]})
			continue
		}
		out = append(out, results[i])
	}
	if len(failures) > 0 {
		return out, &PartialError{Op: op, Failures: failures}
	}
	return out, nil
}
