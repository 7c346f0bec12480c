package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Stub dispatches calls of one bound interface. It is read-only after Bind
// and safe for concurrent use.
type Stub struct {
	client     *Client
	iface      *InterfaceMetadata
	methods    map[string]*MethodMetadata
	defaults   map[string]DefaultFunc
	strategies map[string]strategy
}

// Bind registers decl with the client's store, if it is not registered yet,
// and returns a stub dispatching its methods
func (c *Client) Bind(decl *InterfaceDecl) (*Stub, error) {
	e, err := c.store.register(decl)
	if err != nil {
		return nil, err
	}

	stub := &Stub{
		client:     c,
		iface:      e.metadata,
		methods:    make(map[string]*MethodMetadata, len(e.metadata.MethodBySignature)),
		defaults:   e.defaults,
		strategies: make(map[string]strategy, len(e.metadata.MethodBySignature)),
	}
	for _, m := range e.metadata.MethodBySignature {
		stub.methods[m.Name] = m
		if !m.IsDefault {
			stub.strategies[m.Name] = strategyFor(m.ReturnShape)
		}
	}
	return stub, nil
}

// Interface returns the metadata of the bound interface
func (s *Stub) Interface() *InterfaceMetadata {
	return s.iface
}

// Invoke calls the named method with args, context parameters excluded. The
// returned value has exactly the declared result type of the method; it is
// nil for methods that only return an error.
func (s *Stub) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	m, ok := s.methods[name]
	if !ok {
		return nil, unsupportedMethodError(name, fmt.Sprintf("not declared by %s", s.iface.Name))
	}

	if m.IsDefault {
		s.client.logger.Debug("calling default method",
			zap.String("interface", s.iface.Name),
			zap.String("method", name))
		return s.defaults[name](ctx, args)
	}

	if _, ok := m.HTTPAnnotation(); !ok {
		return nil, unsupportedMethodError(name, "no HTTP annotation")
	}
	if m.ReturnShape.Kind == UnsupportedShape {
		return nil, unsupportedShapeError(name, m.ReturnShape.Declared)
	}

	req, err := s.client.buildRequest(ctx, s.iface, m, args)
	if err != nil {
		return nil, requestBuildError(name, err)
	}

	return s.strategies[name].execute(&call{client: s.client, method: m, req: req})
}

// Call invokes a method returning (T, error)
func Call[T any](ctx context.Context, s *Stub, name string, args ...any) (T, error) {
	var zero T
	value, err := s.Invoke(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	out, ok := value.(T)
	if !ok {
		return zero, resultTypeError(name, value, fmt.Sprintf("%T", zero))
	}
	return out, nil
}

// Go invokes a method returning *Future[T]. Failures detected before the
// request is sent are reported through the returned future.
func Go[T any](ctx context.Context, s *Stub, name string, args ...any) *Future[T] {
	value, err := s.Invoke(ctx, name, args...)
	if err != nil {
		return Failed[T](err)
	}
	switch out := value.(type) {
	case *Future[T]:
		return out
	case T:
		return Resolved(out)
	}
	return Failed[T](resultTypeError(name, value, fmt.Sprintf("*relay.Future[%T]", *new(T))))
}

// Exec invokes a method returning only an error
func Exec(ctx context.Context, s *Stub, name string, args ...any) error {
	_, err := s.Invoke(ctx, name, args...)
	return err
}

// MustCall invokes a method with a single result, such as a default method
// that cannot fail. It panics on error.
func MustCall[T any](ctx context.Context, s *Stub, name string, args ...any) T {
	out, err := Call[T](ctx, s, name, args...)
	if err != nil {
		panic(err)
	}
	return out
}

// Arg returns args[i] as T, or the zero T when it is missing or nil
func Arg[T any](args []any, i int) T {
	if i < 0 || i >= len(args) || args[i] == nil {
		var zero T
		return zero
	}
	return args[i].(T)
}

func resultTypeError(method string, value any, want string) *Error {
	return newError(UnsupportedReturnShapeErrorCode, ErrUnsupportedReturnShape,
		"method %s produced %T, not %s", method, value, want).
		WithContext("method", method)
}
