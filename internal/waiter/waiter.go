// Package waiter implements the long-poll wait/notify coordinator from
// spec §4.5: callers block until a filesystem condition is satisfied or a
// deadline elapses, polling every PollInterval rather than subscribing to
// an in-process event (no in-process scheme can observe writes made by a
// sibling OS process).
package waiter

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// Condition reports whether the awaited filesystem state now holds.
type Condition func() (bool, error)

// Coordinator polls Conditions on a fixed interval and tracks in-flight
// waits so the server can cancel all of them together at shutdown.
type Coordinator struct {
	pollInterval time.Duration
	group        *errgroup.Group
	groupCtx     context.Context
	cancel       context.CancelFunc
}

// New builds a Coordinator that polls every pollInterval (spec default 2s).
func New(pollInterval time.Duration) *Coordinator {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	return &Coordinator{pollInterval: pollInterval, group: g, groupCtx: gctx, cancel: cancel}
}

// Shutdown cancels every in-flight wait and blocks, bounded by ctx, until
// each wait registered with Track has observed cancellation and returned.
// Waits not registered with Track are cancelled but not waited for.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.cancel()
	done := make(chan error, 1)
	go func() { done <- c.group.Wait() }()
	select {
	case err := <-done:
		if code, ok := storeerr.CodeOf(err); ok && code == storeerr.WaitTimeout {
			return nil // a tracked wait ending because of this shutdown
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks the calling goroutine, polling cond every pollInterval, until
// cond reports true, the coordinator is shut down, the caller's ctx is
// cancelled, or timeout elapses. A timeout is not an error: it returns
// (false, nil) so the tool surface can answer with WAIT_TIMEOUT rather than
// a fatal error (spec §4.5, §7). Any other cancellation returns a
// *storeerr.StoreError(WAIT_TIMEOUT) carrying the cancellation reason, since
// the caller has no state to act on beyond "stop waiting."
func (c *Coordinator) Wait(ctx context.Context, timeout time.Duration, cond Condition) (bool, error) {
	ok, err := cond()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline.C:
			return false, nil
		case <-ctx.Done():
			return false, storeerr.New(storeerr.WaitTimeout, "wait cancelled by caller")
		case <-c.groupCtx.Done():
			return false, storeerr.New(storeerr.WaitTimeout, "server shutting down")
		case <-ticker.C:
			ok, err := cond()
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
}

// Track registers a long-running wait with the coordinator's errgroup so
// Shutdown can fan in its completion. fn must itself observe ctx
// cancellation (e.g. by passing it through to Wait).
func (c *Coordinator) Track(fn func(ctx context.Context) error) {
	c.group.Go(func() error { return fn(c.groupCtx) })
}
