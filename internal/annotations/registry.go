package annotations

import (
	"fmt"
	"sort"
	"sync"
)

// AnnotationRegistry defines the interface for managing annotation schemas
type AnnotationRegistry interface {
	// Register a new annotation type with its schema
	Register(schema AnnotationSchema) error

	// GetSchema retrieves the schema for an annotation type
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)

	// ListTypes returns all registered annotation types
	ListTypes() []AnnotationType

	// IsRegistered checks if an annotation type is registered
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	mu      sync.RWMutex
	schemas map[AnnotationType]AnnotationSchema
}

// NewRegistry creates an empty annotation registry
func NewRegistry() AnnotationRegistry {
	return &registry{
		schemas: make(map[AnnotationType]AnnotationSchema),
	}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry holding the builtin schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, schema := range BuiltinSchemas {
			if err := defaultRegistry.Register(schema); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

func (r *registry) Register(schema AnnotationSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Type]; exists {
		return &RegistrationError{
			Msg: fmt.Sprintf("annotation type %s is already registered", schema.Type),
		}
	}
	if err := validateSchema(schema); err != nil {
		return &RegistrationError{
			Msg: fmt.Sprintf("invalid schema for %s: %v", schema.Type, err),
		}
	}

	r.schemas[schema.Type] = schema
	return nil
}

func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[annotationType]
	if !exists {
		return AnnotationSchema{}, fmt.Errorf("annotation type %s is not registered", annotationType)
	}
	return schema, nil
}

func (r *registry) ListTypes() []AnnotationType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]AnnotationType, 0, len(r.schemas))
	for t := range r.schemas {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[annotationType]
	return exists
}

func validateSchema(schema AnnotationSchema) error {
	if schema.Targets == 0 {
		return fmt.Errorf("schema has no targets")
	}
	if schema.MinArgs < 0 || schema.MaxArgs < schema.MinArgs {
		return fmt.Errorf("argument range %d..%d is invalid", schema.MinArgs, schema.MaxArgs)
	}
	for name, spec := range schema.Flags {
		if name == "" {
			return fmt.Errorf("flag name cannot be empty")
		}
		if spec.Required && !spec.TakesValue {
			return fmt.Errorf("required flag %s must take a value", name)
		}
	}
	return nil
}
