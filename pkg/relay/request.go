package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const eventStreamMediaType = "text/event-stream"

// buildRequest turns a method call into an HTTP request
func (c *Client) buildRequest(ctx context.Context, iface *InterfaceMetadata, m *MethodMetadata, args []any) (*http.Request, error) {
	if len(args) != len(m.Parameters) {
		return nil, fmt.Errorf("method %s expects %d arguments, got %d", m.Name, len(m.Parameters), len(args))
	}
	verb, _ := m.HTTPAnnotation()

	path, err := expandPath(iface.FullPath(m), m, args)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}

	query := u.Query()
	for _, p := range m.QueryParameters() {
		if err := addQuery(query, p.Annotation.Value(), args[p.Index]); err != nil {
			return nil, err
		}
	}
	u.RawQuery = query.Encode()

	var body io.Reader
	var contentType string
	if p, ok := m.BodyParameter(); ok {
		body, contentType, err = c.encodeBody(m, args[p.Index])
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, verb.Name, u.String(), body)
	if err != nil {
		return nil, err
	}

	for name, values := range c.headers {
		req.Header[name] = append([]string(nil), values...)
	}
	for _, h := range iface.Headers() {
		req.Header.Set(h.Field("name"), h.Value())
	}
	for _, h := range m.Headers() {
		req.Header.Set(h.Field("name"), h.Value())
	}
	for _, p := range m.HeaderParameters() {
		name := p.Annotation.Field("name")
		if name == "" {
			name = p.Annotation.Value()
		}
		if value, ok := formatScalar(args[p.Index]); ok {
			req.Header.Set(name, value)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	switch m.ReturnShape.Kind {
	case StreamShape:
		// streams are always read as event-stream, whatever the declared headers say
		req.Header.Set("Accept", eventStreamMediaType)
	case ObjectShape, CollectionShape:
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", c.codec.ContentType())
		}
	}
	return req, nil
}

// expandPath substitutes URL-escaped path arguments into {token} slots
func expandPath(path string, m *MethodMetadata, args []any) (string, error) {
	for _, p := range m.PathParameters() {
		token := p.Annotation.Value()
		value, ok := formatScalar(args[p.Index])
		if !ok {
			return "", fmt.Errorf("path parameter %s of method %s is nil", token, m.Name)
		}
		path = strings.ReplaceAll(path, "{"+token+"}", url.PathEscape(value))
	}
	return path, nil
}

// addQuery attaches a query argument. Absent values are omitted, lists
// become repeated values, and an unnamed struct or map is expanded.
func addQuery(query url.Values, name string, arg any) error {
	rv, ok := indirect(arg)
	if !ok {
		return nil
	}
	if name == "" {
		fields, err := fieldsOf(rv, "query", "json")
		if err != nil {
			return fmt.Errorf("query object: %w", err)
		}
		for _, f := range fields {
			if err := addQuery(query, f.name, f.value); err != nil {
				return err
			}
		}
		return nil
	}
	if isList(rv) {
		for i := 0; i < rv.Len(); i++ {
			if value, ok := formatScalar(rv.Index(i).Interface()); ok {
				query.Add(name, value)
			}
		}
		return nil
	}
	query.Add(name, formatValue(rv))
	return nil
}

// encodeBody encodes the body argument; an absent argument sends no body
func (c *Client) encodeBody(m *MethodMetadata, arg any) (io.Reader, string, error) {
	if _, ok := indirect(arg); !ok {
		return nil, "", nil
	}
	if m.IsMultipart() {
		buf, contentType, err := encodeMultipart(c.codec, arg)
		if err != nil {
			return nil, "", err
		}
		return buf, contentType, nil
	}
	encoded, err := c.codec.Marshal(arg)
	if err != nil {
		return nil, "", fmt.Errorf("encoding body: %w", err)
	}
	return bytes.NewReader(encoded), c.codec.ContentType(), nil
}
