package annotations

import (
	"fmt"
	"go/token"
	"strings"
)

// ClientAnnotationSchema defines the schema for //relay::client annotations
var ClientAnnotationSchema = AnnotationSchema{
	Type:        ClientAnnotation,
	Description: "Marks an interface as a relay client; only marked interfaces are generated",
	Targets:     InterfaceTarget,
	Flags: map[string]FlagSpec{
		"Name": {TakesValue: true, Description: "Name of the generated adapter type"},
	},
	Examples: []string{
		"//relay::client",
		"//relay::client -Name=demoClient",
	},
	Validator: func(a *ParsedAnnotation) error {
		if name, ok := a.Flag("Name"); ok && !token.IsIdentifier(name) {
			return fmt.Errorf("adapter name %q is not a Go identifier", name)
		}
		return nil
	},
}

// ResourceAnnotationSchema defines the schema for //relay::resource annotations
var ResourceAnnotationSchema = AnnotationSchema{
	Type:        ResourceAnnotation,
	Description: "Base path prepended to every method path of the interface",
	Targets:     InterfaceTarget,
	MinArgs:     1,
	MaxArgs:     1,
	ArgNames:    []string{"path"},
	Examples:    []string{"//relay::resource /api/v1"},
}

// HeaderAnnotationSchema defines the schema for //relay::header annotations
var HeaderAnnotationSchema = AnnotationSchema{
	Type:        HeaderAnnotation,
	Description: "Static header, or a header bound to a method parameter with -Param",
	Targets:     InterfaceTarget | MethodTarget,
	MinArgs:     1,
	MaxArgs:     2,
	ArgNames:    []string{"name", "value"},
	Flags: map[string]FlagSpec{
		"Param": {TakesValue: true, Description: "Method parameter sent as the header value"},
	},
	Examples: []string{
		`//relay::header X-Client relay`,
		`//relay::header Accept "application/json"`,
		"//relay::header Authorization -Param=token",
	},
	Validator: func(a *ParsedAnnotation) error {
		param, bound := a.Flag("Param")
		switch {
		case bound && len(a.Args) != 1:
			return fmt.Errorf("header %s bound to a parameter takes no value", a.Arg(0))
		case bound && param == "":
			return fmt.Errorf("header %s needs a parameter name after -Param=", a.Arg(0))
		case !bound && len(a.Args) != 2:
			return fmt.Errorf("header %s needs a value or -Param", a.Arg(0))
		}
		return nil
	},
}

// VerbAnnotationSchema defines the schema shared by //relay::get, post, put,
// patch, delete, head and options
var VerbAnnotationSchema = AnnotationSchema{
	Type:        VerbAnnotation,
	Description: "HTTP method and path of a request",
	Targets:     MethodTarget,
	MinArgs:     1,
	MaxArgs:     1,
	ArgNames:    []string{"path"},
	Examples: []string{
		"//relay::get /demos/{id}",
		`//relay::post "/demos"`,
	},
	Validator: func(a *ParsedAnnotation) error {
		if strings.ContainsAny(a.Arg(0), " \t") {
			return fmt.Errorf("path %q must not contain whitespace", a.Arg(0))
		}
		return nil
	},
}

// MultipartAnnotationSchema defines the schema for //relay::multipart annotations
var MultipartAnnotationSchema = AnnotationSchema{
	Type:        MultipartAnnotation,
	Description: "Sends the body parameter as multipart/form-data",
	Targets:     MethodTarget,
	Examples:    []string{"//relay::multipart"},
}

// PathAnnotationSchema defines the schema for //relay::path annotations
var PathAnnotationSchema = AnnotationSchema{
	Type:        PathAnnotation,
	Description: "Binds a parameter to a {placeholder} of the path",
	Targets:     MethodTarget,
	MinArgs:     1,
	MaxArgs:     2,
	ArgNames:    []string{"param", "placeholder"},
	Examples: []string{
		"//relay::path id",
		"//relay::path demoID demoId",
	},
}

// QueryAnnotationSchema defines the schema for //relay::query annotations
var QueryAnnotationSchema = AnnotationSchema{
	Type:        QueryAnnotation,
	Description: "Binds a parameter to a query parameter, or expands a struct or map with -Expand",
	Targets:     MethodTarget,
	MinArgs:     1,
	MaxArgs:     2,
	ArgNames:    []string{"param", "name"},
	Flags: map[string]FlagSpec{
		"Expand": {Description: "Send every field of the argument as its own query parameter"},
	},
	Examples: []string{
		"//relay::query size",
		"//relay::query order order_by",
		"//relay::query filter -Expand",
	},
	Validator: func(a *ParsedAnnotation) error {
		if a.HasFlag("Expand") && len(a.Args) > 1 {
			return fmt.Errorf("expanded query parameter %s takes no name", a.Arg(0))
		}
		return nil
	},
}

// BodyAnnotationSchema defines the schema for //relay::body annotations
var BodyAnnotationSchema = AnnotationSchema{
	Type:        BodyAnnotation,
	Description: "Binds a parameter to the request body",
	Targets:     MethodTarget,
	MinArgs:     1,
	MaxArgs:     1,
	ArgNames:    []string{"param"},
	Examples:    []string{"//relay::body request"},
}

// DefaultAnnotationSchema defines the schema for //relay::default annotations
var DefaultAnnotationSchema = AnnotationSchema{
	Type:        DefaultAnnotation,
	Description: "Implements the method locally with a package-level function",
	Targets:     MethodTarget,
	Flags: map[string]FlagSpec{
		"Func": {Required: true, TakesValue: true, Description: "Function called with the method arguments"},
	},
	Examples: []string{"//relay::default -Func=greet"},
	Validator: func(a *ParsedAnnotation) error {
		if fn, _ := a.Flag("Func"); !token.IsIdentifier(fn) {
			return fmt.Errorf("default function %q is not a Go identifier", fn)
		}
		return nil
	},
}

// BuiltinSchemas lists the schemas registered by DefaultRegistry
var BuiltinSchemas = []AnnotationSchema{
	ClientAnnotationSchema,
	ResourceAnnotationSchema,
	HeaderAnnotationSchema,
	VerbAnnotationSchema,
	MultipartAnnotationSchema,
	PathAnnotationSchema,
	QueryAnnotationSchema,
	BodyAnnotationSchema,
	DefaultAnnotationSchema,
}
