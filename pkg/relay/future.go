package relay

import (
	"context"
	"reflect"
	"sync"
)

// pending is the untyped completion cell behind Future. Callbacks run on the
// goroutine that completes the cell.
type pending struct {
	mu        sync.Mutex
	done      chan struct{}
	finished  bool
	value     any
	err       error
	callbacks []func(any, error)
	cancel    context.CancelFunc
}

func newPending(cancel context.CancelFunc) *pending {
	if cancel == nil {
		cancel = func() {}
	}
	return &pending{done: make(chan struct{}), cancel: cancel}
}

// complete settles the cell; only the first call has any effect
func (p *pending) complete(value any, err error) bool {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return false
	}
	p.finished = true
	p.value, p.err = value, err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(value, err)
	}
	return true
}

// onComplete runs fn when the cell settles, immediately if it already has
func (p *pending) onComplete(fn func(any, error)) {
	p.mu.Lock()
	if !p.finished {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	value, err := p.value, p.err
	p.mu.Unlock()
	fn(value, err)
}

// then derives a cell settled with fn applied to a successful value
func (p *pending) then(fn func(any) (any, error)) *pending {
	next := newPending(p.cancel)
	p.onComplete(func(value any, err error) {
		if err != nil {
			next.complete(nil, err)
			return
		}
		next.complete(fn(value))
	})
	return next
}

func (p *pending) wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Future is the result of an asynchronous call
type Future[T any] struct {
	p *pending
}

// Await blocks until the call completes or ctx is done. A done ctx does not
// cancel the call; use Cancel for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	value, err := f.p.wait(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return valueAs[T](value), nil
}

// Get blocks until the call completes
func (f *Future[T]) Get() (T, error) {
	return f.Await(context.Background())
}

// Done is closed once the call has completed
func (f *Future[T]) Done() <-chan struct{} {
	return f.p.done
}

// Cancel aborts the call. The transport request context is cancelled and
// the future completes with context.Canceled unless it already completed.
func (f *Future[T]) Cancel() {
	f.p.cancel()
	f.p.complete(nil, transportError("call cancelled", context.Canceled))
}

// OnComplete registers fn to run when the call completes
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.p.onComplete(func(value any, err error) {
		if err != nil {
			var zero T
			fn(zero, err)
			return
		}
		fn(valueAs[T](value), nil)
	})
}

func (*Future[T]) resultType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (*Future[T]) fromPending(p *pending) any {
	return &Future[T]{p: p}
}

// Then derives a future whose value is fn applied to the value of f.
// Cancelling the derived future cancels f's call.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	return &Future[U]{p: f.p.then(func(value any) (any, error) {
		return fn(valueAs[T](value))
	})}
}

// Resolved returns a completed future holding value
func Resolved[T any](value T) *Future[T] {
	p := newPending(nil)
	p.complete(value, nil)
	return &Future[T]{p: p}
}

// Failed returns a completed future holding err
func Failed[T any](err error) *Future[T] {
	p := newPending(nil)
	p.complete(nil, err)
	return &Future[T]{p: p}
}

func valueAs[T any](value any) T {
	if value == nil {
		var zero T
		return zero
	}
	return value.(T)
}
