package relay

import (
	"context"
	"reflect"
)

// DefaultFunc implements a method locally without sending a request
type DefaultFunc func(ctx context.Context, args []any) (any, error)

// InterfaceDecl is the declaration table of one client interface: the
// interface type, its markers, and the markers of its methods and parameters.
// Declarations are built once, usually in package init, and handed to a Store.
type InterfaceDecl struct {
	typ      reflect.Type
	markers  []Marker
	methods  map[string]*MethodDecl
	order    []string
	defaults map[string]DefaultFunc
}

// MethodDecl holds the markers of one method
type MethodDecl struct {
	name    string
	markers []Marker
	params  map[int][]Marker
}

// Declare starts the declaration table of the interface type T
func Declare[T any](markers ...Marker) *InterfaceDecl {
	return DeclareType(reflect.TypeFor[T](), markers...)
}

// DeclareType is Declare for a reflect.Type obtained at runtime
func DeclareType(typ reflect.Type, markers ...Marker) *InterfaceDecl {
	return &InterfaceDecl{
		typ:      typ,
		markers:  markers,
		methods:  make(map[string]*MethodDecl),
		defaults: make(map[string]DefaultFunc),
	}
}

// Type returns the declared interface type
func (d *InterfaceDecl) Type() reflect.Type {
	return d.typ
}

// Name returns the interface name used in messages
func (d *InterfaceDecl) Name() string {
	return typeName(d.typ)
}

// Method declares the markers of the named method. Calling Method twice for
// the same name appends to the existing declaration.
func (d *InterfaceDecl) Method(name string, markers ...Marker) *MethodDecl {
	m, ok := d.methods[name]
	if !ok {
		m = &MethodDecl{name: name, params: make(map[int][]Marker)}
		d.methods[name] = m
		d.order = append(d.order, name)
	}
	m.markers = append(m.markers, markers...)
	return m
}

// Default marks the named method as locally implemented by fn
func (d *InterfaceDecl) Default(name string, fn DefaultFunc) *InterfaceDecl {
	d.defaults[name] = fn
	return d
}

// Params declares one marker per parameter position, context parameters
// excluded. A zero Marker leaves the position unmarked.
func (m *MethodDecl) Params(markers ...Marker) *MethodDecl {
	for i, marker := range markers {
		if marker.IsZero() {
			continue
		}
		m.params[i] = append(m.params[i], marker)
	}
	return m
}

// Param declares markers for the parameter at index. Only the first marker
// after flattening is retained.
func (m *MethodDecl) Param(index int, markers ...Marker) *MethodDecl {
	m.params[index] = append(m.params[index], markers...)
	return m
}

// None is the zero Marker, used to skip a position in Params
var None = Marker{}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
