package relay

import (
	"io"
	"reflect"
	"strings"
)

// ShapeKind classifies what a method produces from the response
type ShapeKind int

const (
	UnsupportedShape ShapeKind = iota
	PlainShape                 // body returned as text
	ObjectShape                // body decoded into a single value
	CollectionShape            // body decoded into a slice
	StreamShape                // body parsed as a server-sent event stream
	BinaryShape                // body returned unread
	NoneShape                  // body discarded after the status check
)

// String returns the string representation of the shape kind
func (k ShapeKind) String() string {
	switch k {
	case PlainShape:
		return "plain"
	case ObjectShape:
		return "object"
	case CollectionShape:
		return "collection"
	case StreamShape:
		return "stream"
	case BinaryShape:
		return "binary"
	case NoneShape:
		return "none"
	default:
		return "unsupported"
	}
}

// ReturnShape is the declared result of a method as seen by the strategies
type ReturnShape struct {
	Kind     ShapeKind
	Async    bool
	Type     reflect.Type // type of the produced value, nil for NoneShape
	Elem     reflect.Type // element type of collections and streams
	Wrapper  reflect.Type // declared *Future[T] type of async methods
	Declared string       // declared result list, used in error messages
}

var (
	errorType      = reflect.TypeFor[error]()
	readCloserType = reflect.TypeFor[io.ReadCloser]()
	readerType     = reflect.TypeFor[io.Reader]()
	asyncType      = reflect.TypeFor[asyncValue]()
	streamType     = reflect.TypeFor[streamValue]()
)

// asyncValue is implemented by *Future[T]
type asyncValue interface {
	resultType() reflect.Type
	fromPending(p *pending) any
}

// streamValue is implemented by *Stream[T]
type streamValue interface {
	elemType() reflect.Type
	fromEvents(s *eventStream) any
}

// shapeOf derives the return shape from a method's result types
func shapeOf(results []reflect.Type) ReturnShape {
	declared := describeResults(results)

	switch {
	case len(results) == 1 && results[0] == errorType:
		return ReturnShape{Kind: NoneShape, Declared: declared}

	case len(results) == 1 && results[0].Implements(asyncType):
		inner := reflect.Zero(results[0]).Interface().(asyncValue).resultType()
		shape := syncShape(inner)
		shape.Async = true
		shape.Wrapper = results[0]
		shape.Declared = declared
		return shape

	case len(results) == 2 && results[1] == errorType:
		shape := syncShape(results[0])
		shape.Declared = declared
		return shape
	}

	return ReturnShape{Kind: UnsupportedShape, Declared: declared}
}

// syncShape classifies the value type of a (T, error) result
func syncShape(t reflect.Type) ReturnShape {
	switch {
	case t == readCloserType || t == readerType:
		return ReturnShape{Kind: BinaryShape, Type: t}

	case t.Implements(streamType):
		elem := reflect.Zero(t).Interface().(streamValue).elemType()
		return ReturnShape{Kind: StreamShape, Type: t, Elem: elem}

	case t.Kind() == reflect.String:
		return ReturnShape{Kind: PlainShape, Type: t}

	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return ReturnShape{Kind: PlainShape, Type: t}

	case t.Kind() == reflect.Slice:
		return ReturnShape{Kind: CollectionShape, Type: t, Elem: t.Elem()}

	case t.Kind() == reflect.Chan, t.Kind() == reflect.Func, t.Kind() == reflect.UnsafePointer:
		return ReturnShape{Kind: UnsupportedShape}
	}

	return ReturnShape{Kind: ObjectShape, Type: t}
}

func describeResults(results []reflect.Type) string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.String()
	}
	if len(names) == 1 {
		return names[0]
	}
	return "(" + strings.Join(names, ", ") + ")"
}
