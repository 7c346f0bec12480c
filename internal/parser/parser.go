// Package parser extracts relay client interfaces from Go source files.
package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/relay/internal/annotations"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/pkg/relay"
)

// Parser reads //relay:: markers from Go source
type Parser struct {
	fileSet *token.FileSet
	markers *annotations.Parser
}

// NewParser creates a parser using the builtin marker schemas
func NewParser() *Parser {
	return &Parser{
		fileSet: token.NewFileSet(),
		markers: annotations.NewParser(nil),
	}
}

// ParseSource parses source code from a string, mostly for tests
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	metadata := &models.PackageMetadata{PackageName: file.Name.Name, PackagePath: "./"}
	interfaces, err := p.extractFile(filename, file)
	if err != nil {
		return nil, err
	}
	metadata.Interfaces = interfaces
	return metadata, nil
}

// ParseDirectory parses the non-test, non-generated Go files of one
// package directory
func (p *Parser) ParseDirectory(path string) (*models.PackageMetadata, error) {
	pkgs, err := parser.ParseDir(p.fileSet, path, func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory %s: %w", path, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no Go packages found in directory %s", path)
	}
	if len(pkgs) > 1 {
		return nil, fmt.Errorf("multiple packages found in directory %s", path)
	}

	metadata := &models.PackageMetadata{PackagePath: path}
	for name, pkg := range pkgs {
		metadata.PackageName = name

		fileNames := make([]string, 0, len(pkg.Files))
		for fileName := range pkg.Files {
			fileNames = append(fileNames, fileName)
		}
		sort.Strings(fileNames)

		for _, fileName := range fileNames {
			file := pkg.Files[fileName]
			if ast.IsGenerated(file) {
				continue
			}
			interfaces, err := p.extractFile(fileName, file)
			if err != nil {
				return nil, err
			}
			metadata.Interfaces = append(metadata.Interfaces, interfaces...)
		}
	}
	return metadata, nil
}

func (p *Parser) extractFile(fileName string, file *ast.File) ([]models.ClientInterface, error) {
	imports, relayName := fileImports(file)

	var out []models.ClientInterface
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			iface, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}

			client, found, err := p.extractInterface(fileName, ts, iface, doc, relayName)
			if err != nil {
				return nil, err
			}
			if found {
				client.Imports = imports
				out = append(out, client)
			}
		}
	}
	return out, nil
}

func (p *Parser) extractInterface(fileName string, ts *ast.TypeSpec, iface *ast.InterfaceType, doc *ast.CommentGroup, relayName string) (models.ClientInterface, bool, error) {
	found, err := p.parseMarkers(doc, annotations.InterfaceTarget)
	if err != nil {
		return models.ClientInterface{}, false, err
	}

	client := models.ClientInterface{
		Name: ts.Name.Name,
		File: fileName,
		Line: p.fileSet.Position(ts.Pos()).Line,
	}
	isClient := false
	for _, a := range found {
		switch a.Type {
		case annotations.ClientAnnotation:
			isClient = true
			client.AdapterName, _ = a.Flag("Name")
		case annotations.ResourceAnnotation:
			client.Markers = append(client.Markers, models.Marker{Func: "Resource", Args: []string{a.Arg(0)}})
		case annotations.HeaderAnnotation:
			if a.HasFlag("Param") {
				return client, false, p.errorAt(a.Location, "header %s on interface %s cannot bind a parameter", a.Arg(0), client.Name)
			}
			client.Markers = append(client.Markers, models.Marker{Func: "Header", Args: []string{a.Arg(0), a.Arg(1)}})
		}
	}
	if !isClient {
		return client, false, nil
	}
	if client.AdapterName == "" {
		client.AdapterName = "relay" + client.Name
	}

	for _, field := range iface.Methods.List {
		fn, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			return client, false, &models.GeneratorError{
				File:    fileName,
				Line:    p.fileSet.Position(field.Pos()).Line,
				Message: fmt.Sprintf("interface %s embeds %s; relay clients must list their methods", client.Name, types.ExprString(field.Type)),
			}
		}
		method, err := p.extractMethod(field, fn, relayName)
		if err != nil {
			return client, false, err
		}
		client.Methods = append(client.Methods, method)
	}

	if err := validate(client); err != nil {
		return client, false, err
	}
	return client, true, nil
}

func (p *Parser) extractMethod(field *ast.Field, fn *ast.FuncType, relayName string) (models.ClientMethod, error) {
	pos := p.fileSet.Position(field.Pos())
	method := models.ClientMethod{
		Name: field.Names[0].Name,
		Line: pos.Line,
	}

	argIndex := make(map[string]int)
	for i, f := range fieldParams(fn.Params) {
		unnamed := f.Name == "" || f.Name == "_"
		switch {
		case f.IsContext && unnamed:
			f.Name = "ctx"
		case unnamed:
			f.Name = "arg" + strconv.Itoa(i)
		}
		if !f.IsContext {
			argIndex[f.Name] = len(method.Params)
		}
		method.Params = append(method.Params, f.MethodParam)
	}

	found, err := p.parseMarkers(field.Doc, annotations.MethodTarget)
	if err != nil {
		return method, err
	}

	bind := func(a *annotations.ParsedAnnotation, name string, marker models.Marker) error {
		i, ok := argIndex[name]
		if !ok {
			return p.errorAt(a.Location, "method %s has no parameter %s", method.Name, name)
		}
		if len(method.Params[i].Markers) > 0 {
			return p.errorAt(a.Location, "parameter %s of method %s is already bound", name, method.Name)
		}
		method.Params[i].Markers = append(method.Params[i].Markers, marker)
		return nil
	}

	for _, a := range found {
		var err error
		switch a.Type {
		case annotations.VerbAnnotation:
			method.Markers = append(method.Markers, models.Marker{Func: a.Verb(), Args: []string{a.Arg(0)}})
		case annotations.MultipartAnnotation:
			method.Markers = append(method.Markers, models.Marker{Func: "Multipart"})
		case annotations.HeaderAnnotation:
			if param, ok := a.Flag("Param"); ok {
				err = bind(a, param, models.Marker{Func: "HeaderParam", Args: []string{a.Arg(0)}})
			} else {
				method.Markers = append(method.Markers, models.Marker{Func: "Header", Args: []string{a.Arg(0), a.Arg(1)}})
			}
		case annotations.PathAnnotation:
			err = bind(a, a.Arg(0), models.Marker{Func: "Path", Args: []string{a.Arg(1, a.Arg(0))}})
		case annotations.QueryAnnotation:
			name := a.Arg(1, a.Arg(0))
			if a.HasFlag("Expand") {
				name = ""
			}
			err = bind(a, a.Arg(0), models.Marker{Func: "Query", Args: []string{name}})
		case annotations.BodyAnnotation:
			err = bind(a, a.Arg(0), models.Marker{Func: "Body"})
		case annotations.DefaultAnnotation:
			method.DefaultFunc, _ = a.Flag("Func")
		}
		if err != nil {
			return method, err
		}
	}

	if err := classifyResults(&method, pos.Filename, fn.Results, relayName); err != nil {
		return method, err
	}
	return method, nil
}

func classifyResults(method *models.ClientMethod, fileName string, results *ast.FieldList, relayName string) error {
	var exprs []ast.Expr
	for _, r := range fieldParams(results) {
		method.Results = append(method.Results, r.Type)
		exprs = append(exprs, r.expr)
	}

	switch {
	case len(exprs) == 0:
		method.Call = models.CallNone
	case len(exprs) == 1 && method.Results[0] == "error":
		method.Call = models.CallError
	case len(exprs) == 1:
		if inner, ok := futureOf(exprs[0], relayName); ok {
			method.Call = models.CallFuture
			method.CallType = inner
		} else {
			method.Call = models.CallMust
			method.CallType = method.Results[0]
		}
	case len(exprs) == 2 && method.Results[1] == "error":
		method.Call = models.CallValue
		method.CallType = method.Results[0]
	default:
		return &models.GeneratorError{
			File:    fileName,
			Line:    method.Line,
			Message: fmt.Sprintf("method %s returns (%s); relay methods return (T, error), error, T or *relay.Future[T]", method.Name, strings.Join(method.Results, ", ")),
		}
	}
	return nil
}

func (p *Parser) parseMarkers(doc *ast.CommentGroup, target annotations.Target) ([]*annotations.ParsedAnnotation, error) {
	if doc == nil {
		return nil, nil
	}
	var out []*annotations.ParsedAnnotation
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		pos := p.fileSet.Position(c.Slash)
		loc := annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
		parsed, err := p.markers.Parse(c.Text, target, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func (p *Parser) errorAt(loc annotations.SourceLocation, format string, args ...any) error {
	return &models.GeneratorError{File: loc.File, Line: loc.Line, Message: fmt.Sprintf(format, args...)}
}

// validate runs the relay runtime checks, method by method in name order, so
// declaration errors surface at generation time
func validate(client models.ClientInterface) error {
	methods := append([]models.ClientMethod(nil), client.Methods...)
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })

	ifaceAnnotations := make([]relay.AnnotationMetadata, 0, len(client.Markers))
	for _, m := range client.Markers {
		ifaceAnnotations = append(ifaceAnnotations, m.Relay().Metadata())
	}

	for _, m := range methods {
		metadata := &relay.InterfaceMetadata{
			Name:              client.Name,
			Annotations:       ifaceAnnotations,
			MethodBySignature: map[string]*relay.MethodMetadata{m.Name: methodMetadata(m)},
		}
		if err := relay.ValidateMetadata(metadata); err != nil {
			return &models.GeneratorError{
				File:    client.File,
				Line:    m.Line,
				Message: "invalid relay client " + client.Name,
				Cause:   err,
			}
		}
	}
	return nil
}

func methodMetadata(m models.ClientMethod) *relay.MethodMetadata {
	out := &relay.MethodMetadata{Name: m.Name, Signature: m.Name, IsDefault: m.IsDefault()}
	for _, marker := range m.Markers {
		out.Annotations = append(out.Annotations, marker.Relay().Metadata())
	}
	for i, param := range m.ArgParams() {
		pm := relay.ParameterMetadata{Index: i}
		if len(param.Markers) > 0 {
			a := param.Markers[0].Relay().Metadata()
			pm.Annotation = &a
		}
		out.Parameters = append(out.Parameters, pm)
	}
	return out
}

type paramField struct {
	models.MethodParam
	expr ast.Expr
}

// fieldParams expands a field list into one entry per name; unnamed fields
// yield a single entry with an empty name
func fieldParams(list *ast.FieldList) []paramField {
	if list == nil {
		return nil
	}
	var out []paramField
	for _, field := range list.List {
		expr := field.Type
		variadic := false
		if ellipsis, ok := expr.(*ast.Ellipsis); ok {
			expr = ellipsis.Elt
			variadic = true
		}
		typ := types.ExprString(expr)
		mk := func(name string) paramField {
			return paramField{
				MethodParam: models.MethodParam{
					Name:      name,
					Type:      typ,
					Variadic:  variadic,
					IsContext: typ == "context.Context",
				},
				expr: expr,
			}
		}
		if len(field.Names) == 0 {
			out = append(out, mk(""))
			continue
		}
		for _, name := range field.Names {
			out = append(out, mk(name.Name))
		}
	}
	return out
}

// futureOf matches *relay.Future[T] and returns T
func futureOf(expr ast.Expr, relayName string) (string, bool) {
	if relayName == "" {
		return "", false
	}
	star, ok := expr.(*ast.StarExpr)
	if !ok {
		return "", false
	}
	index, ok := star.X.(*ast.IndexExpr)
	if !ok {
		return "", false
	}
	sel, ok := index.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Future" {
		return "", false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != relayName {
		return "", false
	}
	return types.ExprString(index.Index), true
}

// fileImports returns the imports of a file and the name the relay package
// is imported under, empty when it is not imported
func fileImports(file *ast.File) ([]models.Import, string) {
	var imports []models.Import
	relayName := ""
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := models.Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		if path == models.RelayImportPath {
			relayName = "relay"
			if imp.Name != "" {
				relayName = imp.Name
			}
		}
		imports = append(imports, imp)
	}
	return imports, relayName
}
