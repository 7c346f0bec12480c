package models

import (
	"strconv"
	"strings"

	"github.com/toyz/relay/pkg/relay"
)

// ClientInterface is an interface marked with //relay::client
type ClientInterface struct {
	Name        string         // interface name
	AdapterName string         // name of the generated adapter type
	File        string         // file declaring the interface
	Line        int            // line of the interface declaration
	Markers     []Marker       // interface level markers (resource, headers)
	Methods     []ClientMethod // methods in declaration order
	Imports     []Import       // imports of the declaring file
}

// DeclName returns the name of the generated declaration table variable
func (c ClientInterface) DeclName() string {
	return c.Name + "Decl"
}

// ConstructorName returns the name of the generated constructor
func (c ClientInterface) ConstructorName() string {
	return "New" + c.Name
}

// ModuleName returns the name of the generated fx module variable
func (c ClientInterface) ModuleName() string {
	return c.Name + "Module"
}

// ClientMethod is one method of a client interface
type ClientMethod struct {
	Name        string
	Line        int
	Params      []MethodParam
	Results     []string // result type expressions as written in source
	Markers     []Marker // method level markers (verb, headers, multipart)
	DefaultFunc string   // function implementing a default method
	Call        CallKind
	CallType    string // type argument of the relay helper, e.g. T of Call[T]
}

// IsDefault reports whether the method is implemented locally
func (m ClientMethod) IsDefault() bool {
	return m.DefaultFunc != ""
}

// ContextParam returns the name of the first context parameter
func (m ClientMethod) ContextParam() (string, bool) {
	for _, p := range m.Params {
		if p.IsContext {
			return p.Name, true
		}
	}
	return "", false
}

// ArgParams returns the parameters sent to the stub, context excluded
func (m ClientMethod) ArgParams() []MethodParam {
	out := make([]MethodParam, 0, len(m.Params))
	for _, p := range m.Params {
		if !p.IsContext {
			out = append(out, p)
		}
	}
	return out
}

// MethodParam is a method parameter
type MethodParam struct {
	Name      string
	Type      string // type expression as written in source, without "..."
	Variadic  bool
	IsContext bool
	Markers   []Marker
}

// CallKind selects the relay helper an adapter method delegates to
type CallKind int

const (
	CallValue  CallKind = iota // (T, error) via relay.Call[T]
	CallError                  // error via relay.Exec
	CallFuture                 // *relay.Future[T] via relay.Go[T]
	CallMust                   // T via relay.MustCall[T]
	CallNone                   // no results
)

func (k CallKind) String() string {
	switch k {
	case CallValue:
		return "Call"
	case CallError:
		return "Exec"
	case CallFuture:
		return "Go"
	case CallMust:
		return "MustCall"
	case CallNone:
		return "None"
	default:
		return "unknown"
	}
}

// Import is an import of the file declaring a client interface
type Import struct {
	Name string // explicit package name, empty when absent
	Path string
}

// Marker is a relay marker constructor call, e.g. GET("/demos/{id}")
type Marker struct {
	Func string   // constructor name in package relay
	Args []string // string arguments
}

// Expr renders the marker as a Go expression using pkg as the relay
// package name
func (m Marker) Expr(pkg string) string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = strconv.Quote(a)
	}
	return pkg + "." + m.Func + "(" + strings.Join(args, ", ") + ")"
}

// Relay builds the runtime marker the expression evaluates to
func (m Marker) Relay() relay.Marker {
	arg := func(i int) string {
		if i < len(m.Args) {
			return m.Args[i]
		}
		return ""
	}
	switch m.Func {
	case "GET":
		return relay.GET(arg(0))
	case "POST":
		return relay.POST(arg(0))
	case "PUT":
		return relay.PUT(arg(0))
	case "PATCH":
		return relay.PATCH(arg(0))
	case "DELETE":
		return relay.DELETE(arg(0))
	case "HEAD":
		return relay.HEAD(arg(0))
	case "OPTIONS":
		return relay.OPTIONS(arg(0))
	case "Resource":
		return relay.Resource(arg(0))
	case "Header":
		return relay.Header(arg(0), arg(1))
	case "HeaderParam":
		return relay.HeaderParam(arg(0))
	case "Multipart":
		return relay.Multipart()
	case "Path":
		return relay.Path(arg(0))
	case "Query":
		return relay.Query(arg(0))
	case "Body":
		return relay.Body()
	}
	return relay.Named(m.Func, nil)
}
