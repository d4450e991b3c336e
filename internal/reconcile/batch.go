package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// call is one remote operation of a batch.
type call func(ctx context.Context) error

// runBatch runs every call concurrently, at most limit at a time, and
// returns once all of them have settled. errs[i] is the outcome of
// calls[i]. A failing call never cancels its siblings.
func runBatch(ctx context.Context, limit int, calls []call) []error {
	errs := make([]error, len(calls))
	if len(calls) == 0 {
		return errs
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, c := range calls {
		g.Go(func() error {
			errs[i] = c(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// countFailed returns the number of non-nil errors.
func countFailed(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
