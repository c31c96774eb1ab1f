package field

import (
	"context"

	"github.com/kuitang/pickerpw/internal/errs"
)

// Commit is a write whose input has been filled and confirmed, waiting for
// the widget's overlay to be hidden.
type Commit struct {
	label string
	done  chan struct{}
	err   error
}

func newCommit(label string) *Commit {
	return &Commit{label: label, done: make(chan struct{})}
}

func (c *Commit) finish(err error) {
	c.err = err
	close(c.done)
}

// Done is closed once the overlay wait has returned.
func (c *Commit) Done() <-chan struct{} {
	return c.done
}

// Err returns the overlay wait outcome, or nil while it is still pending.
func (c *Commit) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the overlay wait returns or ctx is done. Abandoning the
// wait does not stop it: the engine wait runs until its own timeout.
func (c *Commit) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	default:
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return errs.FromContext(c.label+": stopped waiting", ctx.Err())
	}
}
