package relay

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// File is a multipart file part
type File struct {
	Name        string    // file name sent in the Content-Disposition header
	ContentType string    // defaults to application/octet-stream
	Content     io.Reader // file contents
}

// namedReader is any reader that knows its file name, such as *os.File
type namedReader interface {
	io.Reader
	Name() string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// newBoundary returns a fresh high-entropy multipart boundary
func newBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// encodeMultipart writes the fields of a struct or map argument as
// multipart/form-data and returns the body with its content type
func encodeMultipart(codec Codec, body any) (*bytes.Buffer, string, error) {
	rv, ok := indirect(body)
	if !ok {
		return nil, "", fmt.Errorf("multipart body is absent")
	}
	fields, err := fieldsOf(rv, "form", "json")
	if err != nil {
		return nil, "", fmt.Errorf("multipart body: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(newBoundary()); err != nil {
		return nil, "", err
	}
	for _, f := range fields {
		if err := writePart(w, codec, f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, codec Codec, name string, value any) error {
	switch v := value.(type) {
	case File:
		return writeFile(w, name, v)
	case *File:
		if v == nil {
			return nil
		}
		return writeFile(w, name, *v)
	case namedReader:
		return writeFile(w, name, File{Name: filepath.Base(v.Name()), Content: v})
	}

	rv, ok := indirect(value)
	if !ok {
		return nil
	}
	if isList(rv) {
		for i := 0; i < rv.Len(); i++ {
			if err := writePart(w, codec, name, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	if _, ok := rv.Interface().(encoding.TextMarshaler); ok {
		return w.WriteField(name, formatValue(rv))
	}
	if rv.Kind() == reflect.Struct || rv.Kind() == reflect.Map {
		encoded, err := codec.Marshal(rv.Interface())
		if err != nil {
			return err
		}
		return w.WriteField(name, string(encoded))
	}
	return w.WriteField(name, formatValue(rv))
}

func writeFile(w *multipart.Writer, name string, f File) error {
	if f.Content == nil {
		return nil
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f.Content)
	return err
}
