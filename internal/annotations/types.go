package annotations

import (
	"fmt"
	"strings"
)

// AnnotationType represents the type of a //relay:: marker
type AnnotationType int

const (
	ClientAnnotation AnnotationType = iota
	ResourceAnnotation
	HeaderAnnotation
	VerbAnnotation
	MultipartAnnotation
	PathAnnotation
	QueryAnnotation
	BodyAnnotation
	DefaultAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ClientAnnotation:
		return "client"
	case ResourceAnnotation:
		return "resource"
	case HeaderAnnotation:
		return "header"
	case VerbAnnotation:
		return "verb"
	case MultipartAnnotation:
		return "multipart"
	case PathAnnotation:
		return "path"
	case QueryAnnotation:
		return "query"
	case BodyAnnotation:
		return "body"
	case DefaultAnnotation:
		return "default"
	default:
		return "unknown"
	}
}

// Verbs lists the marker kinds that declare an HTTP method
var Verbs = []string{"get", "post", "put", "patch", "delete", "head", "options"}

// ParseAnnotationType converts a marker kind such as "client" or "get" to its
// AnnotationType
func ParseAnnotationType(kind string) (AnnotationType, error) {
	switch kind {
	case "client":
		return ClientAnnotation, nil
	case "resource":
		return ResourceAnnotation, nil
	case "header":
		return HeaderAnnotation, nil
	case "multipart":
		return MultipartAnnotation, nil
	case "path":
		return PathAnnotation, nil
	case "query":
		return QueryAnnotation, nil
	case "body":
		return BodyAnnotation, nil
	case "default":
		return DefaultAnnotation, nil
	}
	for _, v := range Verbs {
		if kind == v {
			return VerbAnnotation, nil
		}
	}
	return 0, fmt.Errorf("unknown annotation type: %s", kind)
}

// Target is the kind of declaration a marker can be attached to
type Target int

const (
	InterfaceTarget Target = 1 << iota
	MethodTarget
)

func (t Target) String() string {
	switch t {
	case InterfaceTarget:
		return "interface"
	case MethodTarget:
		return "method"
	case InterfaceTarget | MethodTarget:
		return "interface or method"
	default:
		return "nothing"
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ParsedAnnotation is one //relay:: line with its positional arguments and
// flags
type ParsedAnnotation struct {
	Type     AnnotationType
	Kind     string            // marker kind as written, e.g. "get"
	Args     []string          // positional arguments, unquoted
	Flags    map[string]string // -Name=value flags, "" for bare flags
	Location SourceLocation
	Raw      string
}

// Arg returns the positional argument i, or def when it is absent
func (p *ParsedAnnotation) Arg(i int, def ...string) string {
	if i < len(p.Args) {
		return p.Args[i]
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// Flag returns the value of a flag and whether it was given
func (p *ParsedAnnotation) Flag(name string) (string, bool) {
	v, ok := p.Flags[name]
	return v, ok
}

// HasFlag reports whether the flag was given
func (p *ParsedAnnotation) HasFlag(name string) bool {
	_, ok := p.Flags[name]
	return ok
}

// Verb returns the upper-cased HTTP method of a verb annotation
func (p *ParsedAnnotation) Verb() string {
	if p.Type != VerbAnnotation {
		return ""
	}
	return strings.ToUpper(p.Kind)
}

// FlagSpec describes one accepted -Flag
type FlagSpec struct {
	Required    bool
	TakesValue  bool
	Description string
}

// CustomValidator runs after the generic schema checks
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the accepted shape of one annotation type
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Targets     Target
	MinArgs     int
	MaxArgs     int
	ArgNames    []string
	Flags       map[string]FlagSpec
	Examples    []string
	Validator   CustomValidator
}
