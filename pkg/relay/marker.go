package relay

import "net/http"

// Marker names understood by the dispatch stub
const (
	ResourceMarker  = "Resource"
	HeaderMarker    = "Header"
	MultipartMarker = "Multipart"
	PathMarker      = "Path"
	QueryMarker     = "Query"
	BodyMarker      = "Body"
)

// Marker is a declarative annotation attached to an interface, a method or a
// parameter. A marker either carries a name and fields, or holds a group of
// markers that is flattened into the surrounding list on extraction.
type Marker struct {
	Name   string
	Verb   bool
	Fields map[string]string
	Group  []Marker
}

// IsGroup reports whether the marker is an array of markers
func (m Marker) IsGroup() bool {
	return m.Group != nil
}

// IsZero reports whether the marker is the empty marker used to skip a
// parameter position in MethodDecl.Params
func (m Marker) IsZero() bool {
	return m.Name == "" && m.Group == nil
}

func verb(method, path string) Marker {
	return Marker{Name: method, Verb: true, Fields: map[string]string{"value": path}}
}

// GET declares a GET request to path
func GET(path string) Marker { return verb(http.MethodGet, path) }

// POST declares a POST request to path
func POST(path string) Marker { return verb(http.MethodPost, path) }

// PUT declares a PUT request to path
func PUT(path string) Marker { return verb(http.MethodPut, path) }

// PATCH declares a PATCH request to path
func PATCH(path string) Marker { return verb(http.MethodPatch, path) }

// DELETE declares a DELETE request to path
func DELETE(path string) Marker { return verb(http.MethodDelete, path) }

// HEAD declares a HEAD request to path
func HEAD(path string) Marker { return verb(http.MethodHead, path) }

// OPTIONS declares an OPTIONS request to path
func OPTIONS(path string) Marker { return verb(http.MethodOptions, path) }

// Resource sets the base path prepended to every method path of an interface
func Resource(path string) Marker {
	return Marker{Name: ResourceMarker, Fields: map[string]string{"value": path}}
}

// Header declares a static header sent with every request of the interface
// or method it is attached to
func Header(name, value string) Marker {
	return Marker{Name: HeaderMarker, Fields: map[string]string{"name": name, "value": value}}
}

// Headers groups several Header markers
func Headers(headers ...Marker) Marker {
	return Group(headers...)
}

// HeaderParam binds a parameter to the request header name
func HeaderParam(name string) Marker {
	return Marker{Name: HeaderMarker, Fields: map[string]string{"name": name}}
}

// Multipart sends the body parameter as multipart/form-data
func Multipart() Marker {
	return Marker{Name: MultipartMarker, Fields: map[string]string{}}
}

// Path binds a parameter to the {name} placeholder of the request path
func Path(name string) Marker {
	return Marker{Name: PathMarker, Fields: map[string]string{"value": name}}
}

// Query binds a parameter to the query parameter name. With an empty name a
// struct or map argument is expanded into one query parameter per field.
func Query(name string) Marker {
	return Marker{Name: QueryMarker, Fields: map[string]string{"value": name}}
}

// Body binds a parameter to the request body
func Body() Marker {
	return Marker{Name: BodyMarker, Fields: map[string]string{}}
}

// Group builds an array marker
func Group(markers ...Marker) Marker {
	if markers == nil {
		markers = []Marker{}
	}
	return Marker{Group: markers}
}

// Named builds a custom marker; relay records it in the metadata without
// interpreting it
func Named(name string, fields map[string]string) Marker {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Marker{Name: name, Fields: copied}
}

// Metadata returns the annotation metadata recorded for a non-group marker
func (m Marker) Metadata() AnnotationMetadata {
	return annotationFrom(m)
}

// flatten expands group markers recursively, preserving declaration order
func flatten(markers []Marker) []AnnotationMetadata {
	out := make([]AnnotationMetadata, 0, len(markers))
	for _, m := range markers {
		if m.IsGroup() {
			out = append(out, flatten(m.Group)...)
			continue
		}
		if m.IsZero() {
			continue
		}
		out = append(out, annotationFrom(m))
	}
	return out
}

func annotationFrom(m Marker) AnnotationMetadata {
	fields := make(map[string]string, len(m.Fields))
	for k, v := range m.Fields {
		fields[k] = v
	}
	return AnnotationMetadata{
		Name:         m.Name,
		IsHTTPMethod: m.Verb,
		ValueByField: fields,
	}
}
