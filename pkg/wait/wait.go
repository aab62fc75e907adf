// Package wait provides the polling loop agents use to observe slow external
// state transitions.
package wait

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Predicate reports whether the awaited condition holds. An error means the
// inspection itself failed and ends the wait immediately; only a false
// result is retried.
type Predicate func(ctx context.Context) (bool, error)

// For polls ready on a fixed interval until it reports true. The predicate
// runs once before any sleeping. The caller's ctx bounds the wait; layer
// context.WithTimeout on top for a hard deadline. Abandoning a wait does not
// cancel whatever external operation was being observed.
func For(ctx context.Context, interval time.Duration, ready Predicate) error {
	for {
		ok, err := ready(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(ctx.Err(), "timed out waiting for condition")
		}
	}
}
