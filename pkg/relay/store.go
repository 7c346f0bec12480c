package relay

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var contextType = reflect.TypeFor[context.Context]()

// Store holds the validated metadata of registered interfaces. A Store is
// safe for concurrent use; an entry becomes visible only once its
// extraction and validation have completed.
type Store struct {
	mu          sync.RWMutex
	entries     map[reflect.Type]*entry
	inflight    map[reflect.Type]*inflight
	logger      *zap.Logger
	extractions atomic.Int64
}

// inflight is a first registration in progress; done closes once e or err is set
type inflight struct {
	done chan struct{}
	e    *entry
	err  error
}

type entry struct {
	metadata *InterfaceMetadata
	defaults map[string]DefaultFunc
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for registration events
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty metadata store
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries:  make(map[reflect.Type]*entry),
		inflight: make(map[reflect.Type]*inflight),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register extracts and validates the metadata of decl. Registering the same
// interface again is a no-op; concurrent first registrations extract once.
func (s *Store) Register(decl *InterfaceDecl) error {
	_, err := s.register(decl)
	return err
}

func (s *Store) register(decl *InterfaceDecl) (*entry, error) {
	if decl == nil || decl.typ == nil {
		return nil, newError(RegistrationErrorCode, ErrInvalidDeclaration, "nil interface declaration")
	}
	if e, ok := s.get(decl.typ); ok {
		return e, nil
	}

	s.mu.Lock()
	if e, ok := s.entries[decl.typ]; ok {
		s.mu.Unlock()
		return e, nil
	}
	if call, ok := s.inflight[decl.typ]; ok {
		s.mu.Unlock()
		<-call.done
		return call.e, call.err
	}
	call := &inflight{done: make(chan struct{})}
	s.inflight[decl.typ] = call
	s.mu.Unlock()

	call.e, call.err = s.build(decl)

	s.mu.Lock()
	if call.err == nil {
		s.entries[decl.typ] = call.e
	}
	delete(s.inflight, decl.typ)
	s.mu.Unlock()
	close(call.done)

	if call.err != nil {
		return nil, call.err
	}
	s.logger.Debug("registered interface",
		zap.String("interface", call.e.metadata.Name),
		zap.Int("methods", len(call.e.metadata.MethodBySignature)))
	return call.e, nil
}

// build extracts and validates decl without publishing the result
func (s *Store) build(decl *InterfaceDecl) (*entry, error) {
	s.extractions.Add(1)
	metadata, err := extract(decl)
	if err != nil {
		return nil, err
	}
	if err := ValidateMetadata(metadata); err != nil {
		return nil, err
	}

	defaults := make(map[string]DefaultFunc, len(decl.defaults))
	for name, fn := range decl.defaults {
		defaults[name] = fn
	}
	return &entry{metadata: metadata, defaults: defaults}, nil
}

// Lookup returns the metadata registered for the interface type
func (s *Store) Lookup(typ reflect.Type) (*InterfaceMetadata, error) {
	e, ok := s.get(typ)
	if !ok {
		return nil, notRegisteredError(typeName(typ))
	}
	return e.metadata, nil
}

// LookupFor returns the metadata registered for the interface type T
func LookupFor[T any](s *Store) (*InterfaceMetadata, error) {
	return s.Lookup(reflect.TypeFor[T]())
}

// Registered reports whether the interface type has been registered
func (s *Store) Registered(typ reflect.Type) bool {
	_, ok := s.get(typ)
	return ok
}

func (s *Store) get(typ reflect.Type) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[typ]
	return e, ok
}

// extract builds the metadata model of decl by reflecting over the interface
func extract(decl *InterfaceDecl) (*InterfaceMetadata, error) {
	typ := decl.typ
	name := typeName(typ)
	if typ.Kind() != reflect.Interface {
		return nil, newError(RegistrationErrorCode, ErrInvalidDeclaration,
			"%s is not an interface type", typ.String()).
			WithContext("interface", name)
	}

	for _, declared := range decl.order {
		if _, ok := typ.MethodByName(declared); !ok {
			return nil, unknownMethodError(name, declared)
		}
	}
	for declared, fn := range decl.defaults {
		if _, ok := typ.MethodByName(declared); !ok {
			return nil, unknownMethodError(name, declared)
		}
		if fn == nil {
			return nil, newError(RegistrationErrorCode, ErrInvalidDeclaration,
				"default method %s has no implementation", declared).
				WithContext("interface", name)
		}
	}

	metadata := &InterfaceMetadata{
		Name:              name,
		Annotations:       flatten(decl.markers),
		MethodBySignature: make(map[string]*MethodMetadata, typ.NumMethod()),
	}

	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		m, err := extractMethod(name, method, decl)
		if err != nil {
			return nil, err
		}
		metadata.MethodBySignature[m.Signature] = m
	}

	return metadata, nil
}

func extractMethod(iface string, method reflect.Method, decl *InterfaceDecl) (*MethodMetadata, error) {
	ft := method.Type

	var params []ParameterMetadata
	for i := 0; i < ft.NumIn(); i++ {
		if ft.In(i) == contextType {
			continue
		}
		params = append(params, ParameterMetadata{Index: len(params)})
	}

	results := make([]reflect.Type, ft.NumOut())
	for i := range results {
		results[i] = ft.Out(i)
	}

	m := &MethodMetadata{
		Name:        method.Name,
		Signature:   fmt.Sprintf("%s.%s%s", iface, method.Name, strings.TrimPrefix(ft.String(), "func")),
		ReturnShape: shapeOf(results),
		Annotations: []AnnotationMetadata{},
		Parameters:  params,
	}
	_, m.IsDefault = decl.defaults[method.Name]

	md, ok := decl.methods[method.Name]
	if !ok {
		return m, nil
	}

	m.Annotations = flatten(md.markers)
	for index, markers := range md.params {
		if index < 0 || index >= len(params) {
			return nil, newError(RegistrationErrorCode, ErrParameterCount,
				"method %s declares markers for parameter %d but has %d parameters", method.Name, index, len(params)).
				WithContext("interface", iface).
				WithContext("method", method.Name)
		}
		flat := flatten(markers)
		if len(flat) == 0 {
			continue
		}
		first := flat[0]
		params[index].Annotation = &first
	}

	return m, nil
}

func unknownMethodError(iface, method string) *Error {
	return newError(RegistrationErrorCode, ErrUnknownMethod,
		"interface %s has no method %s", iface, method).
		WithContext("interface", iface).
		WithContext("method", method)
}
