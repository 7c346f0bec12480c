// Package annotations parses the //relay:: markers written above client
// interfaces and their methods.
package annotations

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Prefix introduces every marker comment
const Prefix = "relay::"

var markerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Prefix", Pattern: `relay::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Word", Pattern: `[^\s"=\-][^\s"=]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// marker is the grammar of one comment line
type marker struct {
	Kind  string   `parser:"Comment Prefix @Word"`
	Args  []string `parser:"@(Word | String)*"`
	Flags []*flag  `parser:"@@*"`
}

type flag struct {
	Pos   lexer.Position
	Name  string  `parser:"Dash @Word"`
	Value *string `parser:"(Equals @(Word | String))?"`
}

// Parser turns marker comments into ParsedAnnotations checked against the
// schemas of a registry
type Parser struct {
	grammar  *participle.Parser[marker]
	registry AnnotationRegistry
}

// NewParser creates a parser; a nil registry uses DefaultRegistry
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{
		grammar: participle.MustBuild[marker](
			participle.Lexer(markerLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is a relay marker
func IsAnnotation(comment string) bool {
	text, ok := strings.CutPrefix(strings.TrimSpace(comment), "//")
	return ok && strings.HasPrefix(strings.TrimSpace(text), Prefix)
}

// Parse parses one comment line attached to target
func (p *Parser) Parse(comment string, target Target, loc SourceLocation) (*ParsedAnnotation, error) {
	comment = strings.TrimSpace(comment)

	ast, err := p.grammar.ParseString(loc.File, comment)
	if err != nil {
		return nil, p.syntaxError(err, loc)
	}

	annotationType, err := ParseAnnotationType(ast.Kind)
	if err != nil {
		return nil, &SchemaError{Kind: ast.Kind, Loc: loc, Hint: "known markers: " + strings.Join(knownKinds(), ", ")}
	}
	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, &SchemaError{Kind: ast.Kind, Loc: loc}
	}

	parsed := &ParsedAnnotation{
		Type:     annotationType,
		Kind:     ast.Kind,
		Args:     ast.Args,
		Flags:    make(map[string]string, len(ast.Flags)),
		Location: loc,
		Raw:      comment,
	}
	for _, f := range ast.Flags {
		if _, dup := parsed.Flags[f.Name]; dup {
			return nil, p.invalid(parsed, schema, "flag -%s given more than once", f.Name)
		}
		value := ""
		if f.Value != nil {
			value = *f.Value
		}
		spec, known := schema.Flags[f.Name]
		switch {
		case !known:
			return nil, p.invalid(parsed, schema, "unknown flag -%s", f.Name)
		case spec.TakesValue && f.Value == nil:
			return nil, p.invalid(parsed, schema, "flag -%s needs a value", f.Name)
		case !spec.TakesValue && f.Value != nil:
			return nil, p.invalid(parsed, schema, "flag -%s takes no value", f.Name)
		}
		parsed.Flags[f.Name] = value
	}

	if err := p.validate(parsed, schema, target); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (p *Parser) validate(a *ParsedAnnotation, schema AnnotationSchema, target Target) error {
	if target != 0 && schema.Targets&target == 0 {
		return p.invalid(a, schema, "not allowed on a %s, allowed on: %s", target, schema.Targets)
	}
	if len(a.Args) < schema.MinArgs {
		return p.invalid(a, schema, "missing %s", strings.Join(schema.ArgNames[len(a.Args):schema.MinArgs], " and "))
	}
	if len(a.Args) > schema.MaxArgs {
		return p.invalid(a, schema, "expects at most %d arguments, got %d", schema.MaxArgs, len(a.Args))
	}
	for name, spec := range schema.Flags {
		if spec.Required && !a.HasFlag(name) {
			return p.invalid(a, schema, "missing required flag -%s", name)
		}
	}
	if schema.Validator != nil {
		if err := schema.Validator(a); err != nil {
			return p.invalid(a, schema, "%v", err)
		}
	}
	return nil
}

func (p *Parser) invalid(a *ParsedAnnotation, schema AnnotationSchema, format string, args ...any) error {
	hint := ""
	if len(schema.Examples) > 0 {
		hint = "e.g. " + schema.Examples[0]
	}
	return &ValidationError{Kind: a.Kind, Msg: fmt.Sprintf(format, args...), Loc: a.Location, Hint: hint}
}

func (p *Parser) syntaxError(err error, loc SourceLocation) error {
	msg := err.Error()
	var perr participle.Error
	if errors.As(err, &perr) {
		msg = perr.Message()
		if pos := perr.Position(); pos.Column > 0 {
			loc.Column += pos.Column - 1
		}
	}
	return &SyntaxError{Msg: msg, Loc: loc, Hint: "markers look like //relay::<kind> <args>... -Flag=value"}
}

func knownKinds() []string {
	kinds := []string{"body", "client", "default", "header", "multipart", "path", "query", "resource"}
	kinds = append(kinds, Verbs...)
	sort.Strings(kinds)
	return kinds
}
