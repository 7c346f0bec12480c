package relay

import (
	"context"
	"io"
	"iter"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/toyz/relay/pkg/relay/sse"
)

// eventStream is the untyped stream core: it pulls records from the parser
// and decodes their data one at a time
type eventStream struct {
	reader    *sse.Reader
	body      io.Closer
	decode    func(data string) (any, error)
	cancel    context.CancelFunc
	current   any
	err       error
	closeOnce sync.Once
	closed    atomic.Bool
}

func (s *eventStream) next() bool {
	if s.closed.Load() || s.err != nil {
		return false
	}
	if !s.reader.Next() {
		if err := s.reader.Err(); err != nil {
			s.err = transportError("reading event stream", err)
		}
		s.close()
		return false
	}
	value, err := s.decode(s.reader.Record().Data)
	if err != nil {
		s.err = err
		s.close()
		return false
	}
	s.current = value
	return true
}

func (s *eventStream) close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.body != nil {
			err = s.body.Close()
		}
		if s.cancel != nil {
			s.cancel()
		}
	})
	return err
}

// Stream is a lazily decoded sequence of server-sent events. Elements are
// read from the connection only as the consumer asks for them. A Stream is
// not safe for concurrent use, except that Close may be called from any
// goroutine.
type Stream[T any] struct {
	s *eventStream
}

// Next advances to the next element
func (s *Stream[T]) Next() bool {
	return s.s.next()
}

// Current returns the element produced by the last successful Next
func (s *Stream[T]) Current() T {
	return valueAs[T](s.s.current)
}

// Err returns the error that ended the stream, if any
func (s *Stream[T]) Err() error {
	return s.s.err
}

// Close releases the connection. Reading stops at the next Next call.
func (s *Stream[T]) Close() error {
	return s.s.close()
}

// All returns an iterator over the remaining elements. A failure is yielded
// once as the final pair. Breaking out of the loop closes the stream.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Current(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect drains the stream into a slice
func (s *Stream[T]) Collect() ([]T, error) {
	defer s.Close()
	var out []T
	for s.Next() {
		out = append(out, s.Current())
	}
	return out, s.Err()
}

func (*Stream[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (*Stream[T]) fromEvents(s *eventStream) any {
	return &Stream[T]{s: s}
}
