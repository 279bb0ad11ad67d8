package service

import (
	"context"
	"time"
)

// expiryWatcher polls a session on a fixed interval until stopped. stop is
// safe to call from inside the tick function; wait must not be.
type expiryWatcher struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startExpiryWatcher(interval time.Duration, tick func(ctx context.Context)) *expiryWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &expiryWatcher{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()
	return w
}

func (w *expiryWatcher) stop() { w.cancel() }

func (w *expiryWatcher) wait() { <-w.done }
