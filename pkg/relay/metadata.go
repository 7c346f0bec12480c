package relay

import (
	"regexp"
	"sort"
)

// pathTokenPattern matches {token} placeholders in a request path
var pathTokenPattern = regexp.MustCompile(`\{(.*?)\}`)

// AnnotationMetadata is a flattened marker as recorded in the metadata model
type AnnotationMetadata struct {
	Name         string
	IsHTTPMethod bool
	ValueByField map[string]string
}

// Field returns the named field of the marker
func (a AnnotationMetadata) Field(name string) string {
	return a.ValueByField[name]
}

// Value returns the "value" field of the marker
func (a AnnotationMetadata) Value() string {
	return a.ValueByField["value"]
}

// ParameterMetadata describes one non-context parameter of a method
type ParameterMetadata struct {
	Index      int                 // declaration position, zero-based, context parameters excluded
	Annotation *AnnotationMetadata // first marker declared for the parameter, nil when absent
}

// Is reports whether the parameter carries a marker with the given name
func (p ParameterMetadata) Is(name string) bool {
	return p.Annotation != nil && p.Annotation.Name == name
}

// MethodMetadata describes one method of a registered interface
type MethodMetadata struct {
	Name        string
	Signature   string
	ReturnShape ReturnShape
	IsDefault   bool
	Annotations []AnnotationMetadata
	Parameters  []ParameterMetadata
}

// HTTPAnnotation returns the verb marker of the method
func (m *MethodMetadata) HTTPAnnotation() (AnnotationMetadata, bool) {
	for _, a := range m.Annotations {
		if a.IsHTTPMethod {
			return a, true
		}
	}
	return AnnotationMetadata{}, false
}

// HasAnnotation reports whether the method carries a marker with the given name
func (m *MethodMetadata) HasAnnotation(name string) bool {
	for _, a := range m.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// IsMultipart reports whether the body is sent as multipart/form-data
func (m *MethodMetadata) IsMultipart() bool {
	return m.HasAnnotation(MultipartMarker)
}

// Headers returns the static header markers of the method
func (m *MethodMetadata) Headers() []AnnotationMetadata {
	return staticHeaders(m.Annotations)
}

// PathParameters returns parameters bound to path placeholders
func (m *MethodMetadata) PathParameters() []ParameterMetadata {
	return m.parametersNamed(PathMarker)
}

// QueryParameters returns parameters bound to query parameters
func (m *MethodMetadata) QueryParameters() []ParameterMetadata {
	return m.parametersNamed(QueryMarker)
}

// HeaderParameters returns parameters bound to request headers
func (m *MethodMetadata) HeaderParameters() []ParameterMetadata {
	return m.parametersNamed(HeaderMarker)
}

// BodyParameter returns the parameter bound to the request body
func (m *MethodMetadata) BodyParameter() (ParameterMetadata, bool) {
	for _, p := range m.Parameters {
		if p.Is(BodyMarker) {
			return p, true
		}
	}
	return ParameterMetadata{}, false
}

func (m *MethodMetadata) parametersNamed(name string) []ParameterMetadata {
	var out []ParameterMetadata
	for _, p := range m.Parameters {
		if p.Is(name) {
			out = append(out, p)
		}
	}
	return out
}

// InterfaceMetadata is the extracted and validated description of a
// registered interface. It is immutable once registered.
type InterfaceMetadata struct {
	Name              string
	Annotations       []AnnotationMetadata
	MethodBySignature map[string]*MethodMetadata
}

// Method returns the method with the given name
func (i *InterfaceMetadata) Method(name string) (*MethodMetadata, bool) {
	for _, m := range i.MethodBySignature {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Methods returns the methods sorted by name
func (i *InterfaceMetadata) Methods() []*MethodMetadata {
	out := make([]*MethodMetadata, 0, len(i.MethodBySignature))
	for _, m := range i.MethodBySignature {
		out = append(out, m)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// ResourcePath returns the base path declared with the Resource marker
func (i *InterfaceMetadata) ResourcePath() string {
	for _, a := range i.Annotations {
		if a.Name == ResourceMarker {
			return a.Value()
		}
	}
	return ""
}

// Headers returns the static header markers of the interface
func (i *InterfaceMetadata) Headers() []AnnotationMetadata {
	return staticHeaders(i.Annotations)
}

// FullPath returns the resource base path followed by the method path
func (i *InterfaceMetadata) FullPath(m *MethodMetadata) string {
	verb, ok := m.HTTPAnnotation()
	if !ok {
		return i.ResourcePath()
	}
	return i.ResourcePath() + verb.Value()
}

// PathTokens returns the {token} names of a path in order of appearance
func PathTokens(path string) []string {
	matches := pathTokenPattern.FindAllStringSubmatch(path, -1)
	tokens := make([]string, 0, len(matches))
	for _, match := range matches {
		tokens = append(tokens, match[1])
	}
	return tokens
}

func staticHeaders(annotations []AnnotationMetadata) []AnnotationMetadata {
	var out []AnnotationMetadata
	for _, a := range annotations {
		if a.Name != HeaderMarker {
			continue
		}
		if _, ok := a.ValueByField["value"]; ok {
			out = append(out, a)
		}
	}
	return out
}
