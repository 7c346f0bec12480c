package relay

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// indirect dereferences pointers and interfaces. ok is false when the value
// is absent: a nil interface, pointer, slice or map.
func indirect(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return rv, false
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv, false
		}
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		return rv, false
	}
	return rv, true
}

// formatScalar renders a parameter value as text
func formatScalar(v any) (string, bool) {
	rv, ok := indirect(v)
	if !ok {
		return "", false
	}
	return formatValue(rv), true
}

func formatValue(rv reflect.Value) string {
	if rv.CanInterface() {
		switch value := rv.Interface().(type) {
		case encoding.TextMarshaler:
			if text, err := value.MarshalText(); err == nil {
				return string(text)
			}
		case fmt.Stringer:
			return value.String()
		}
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
	}
	return fmt.Sprint(rv.Interface())
}

// isList reports whether rv should be sent as repeated values
func isList(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

// namedField is one field of a struct or map argument
type namedField struct {
	name  string
	value any
}

// fieldsOf lists the fields of a struct or string-keyed map. Struct fields
// are named by the first tag found among tags, then by the field name.
// Fields tagged "-" are skipped and omitempty fields are skipped when zero.
func fieldsOf(rv reflect.Value, tags ...string) ([]namedField, error) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", rv.Type().Key())
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make([]namedField, 0, len(keys))
		for _, k := range keys {
			out = append(out, namedField{name: k.String(), value: rv.MapIndex(k).Interface()})
		}
		return out, nil

	case reflect.Struct:
		var out []namedField
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitEmpty, skip := fieldName(field, tags)
			if skip {
				continue
			}
			fv := rv.Field(i)
			if field.Anonymous && name == "" {
				inner, ok := indirect(fv.Interface())
				if ok && inner.Kind() == reflect.Struct {
					nested, err := fieldsOf(inner, tags...)
					if err != nil {
						return nil, err
					}
					out = append(out, nested...)
					continue
				}
			}
			if omitEmpty && fv.IsZero() {
				continue
			}
			if name == "" {
				name = field.Name
			}
			out = append(out, namedField{name: name, value: fv.Interface()})
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a struct or map, got %s", rv.Type())
}

func fieldName(field reflect.StructField, tags []string) (name string, omitEmpty, skip bool) {
	for _, key := range tags {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		if tag == "-" {
			return "", false, true
		}
		parts := strings.Split(tag, ",")
		for _, opt := range parts[1:] {
			if opt == "omitempty" || opt == "omitzero" {
				omitEmpty = true
			}
		}
		return parts[0], omitEmpty, false
	}
	return "", false, false
}
