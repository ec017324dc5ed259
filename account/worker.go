package account

import (
	"context"
	"runtime"
)

// workerPool bounds concurrent CPU-heavy crypto work (argon2, token
// signing) so a burst of logins cannot monopolize the scheduler and starve
// request-serving goroutines.
type workerPool struct {
	slots chan struct{}
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &workerPool{slots: make(chan struct{}, size)}
}

// do runs fn on the calling goroutine once a slot is free. It returns the
// context error if the caller gives up while waiting.
func (p *workerPool) do(ctx context.Context, fn func()) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()
	fn()
	return nil
}

// cryptoPool is the process-wide pool shared by the hasher and the token
// service. Sized to the number of schedulable CPUs.
var cryptoPool = newWorkerPool(0)
