// Package generator turns parsed client interfaces into relay_gen.go files.
package generator

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/templates"
)

// CodeGenerator generates the relay file of a package
type CodeGenerator interface {
	Generate(metadata *models.PackageMetadata) (*models.GeneratedFile, error)
}

// Options controls the generated output
type Options struct {
	OutputFile string // file name inside the package directory, relay_gen.go by default
	Fx         bool   // also emit an fx.Option per client
}

// Generator implements CodeGenerator
type Generator struct {
	opts Options
}

// NewGenerator creates a generator
func NewGenerator(opts Options) *Generator {
	if opts.OutputFile == "" {
		opts.OutputFile = models.DefaultOutputFile
	}
	return &Generator{opts: opts}
}

// Generate renders the declaration tables, adapters and constructors of every
// client interface of a package. A package without clients yields nil.
func (g *Generator) Generate(metadata *models.PackageMetadata) (*models.GeneratedFile, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}
	if len(metadata.Interfaces) == 0 {
		return nil, nil
	}

	data := templates.FileData{
		Header:  models.GeneratedHeader,
		Package: metadata.PackageName,
		Fx:      g.opts.Fx,
	}
	im := templates.NewImportManager()
	im.Require("", "context")
	im.Require("", models.RelayImportPath)
	if g.opts.Fx {
		im.Require("", "go.uber.org/fx")
	}

	var signatures strings.Builder
	for _, client := range metadata.Interfaces {
		im.AddUser(client.Imports...)
		clientData := buildClient(client)
		for _, m := range clientData.Methods {
			signatures.WriteString(m.Params + " " + m.Results + "\n")
		}
		data.Clients = append(data.Clients, clientData)
	}
	data.Imports = im.Lines(signatures.String())

	raw, err := templates.ExecuteClientFile(data)
	if err != nil {
		return nil, err
	}

	filePath := filepath.Join(metadata.PackagePath, g.opts.OutputFile)
	content, err := imports.Process(filePath, raw, nil)
	if err != nil {
		return nil, &models.GeneratorError{
			File:    filePath,
			Message: "generated code does not compile",
			Cause:   fmt.Errorf("%w\n%s", err, raw),
		}
	}

	return &models.GeneratedFile{
		PackageName: metadata.PackageName,
		FilePath:    filePath,
		Content:     content,
	}, nil
}

func buildClient(client models.ClientInterface) templates.ClientData {
	data := templates.ClientData{
		Name:        client.Name,
		Decl:        client.DeclName(),
		Adapter:     client.AdapterName,
		Constructor: client.ConstructorName(),
		Module:      client.ModuleName(),
		Receiver:    receiverName(client),
	}
	for _, m := range client.Markers {
		data.Markers = append(data.Markers, m.Expr("relay"))
	}

	for _, m := range client.Methods {
		if stmt := initStatement(client, m); stmt != "" {
			data.Init = append(data.Init, stmt)
		}
		data.Methods = append(data.Methods, templates.MethodData{
			Name:    m.Name,
			Params:  paramList(m),
			Results: resultList(m),
			Body:    adapterBody(data.Receiver, m),
		})
	}
	return data
}

func initStatement(client models.ClientInterface, m models.ClientMethod) string {
	decl := client.DeclName()
	if m.IsDefault() {
		return fmt.Sprintf("%s.Default(%q, func(ctx context.Context, args []any) (any, error) {\n\t\t%s\n\t})",
			decl, m.Name, defaultBody(m))
	}

	markers := make([]string, 0, len(m.Markers)+1)
	markers = append(markers, strconv.Quote(m.Name))
	for _, marker := range m.Markers {
		markers = append(markers, marker.Expr("relay"))
	}
	stmt := fmt.Sprintf("%s.Method(%s)", decl, strings.Join(markers, ", "))

	args := m.ArgParams()
	last := -1
	for i, p := range args {
		if len(p.Markers) > 0 {
			last = i
		}
	}
	if last >= 0 {
		params := make([]string, 0, last+1)
		for _, p := range args[:last+1] {
			if len(p.Markers) == 0 {
				params = append(params, "relay.None")
				continue
			}
			params = append(params, p.Markers[0].Expr("relay"))
		}
		stmt += ".\n\t\tParams(" + strings.Join(params, ", ") + ")"
	}
	return stmt
}

// defaultBody calls the default function with the method's own signature
func defaultBody(m models.ClientMethod) string {
	var args []string
	i := 0
	for _, p := range m.Params {
		if p.IsContext {
			args = append(args, "ctx")
			continue
		}
		typ := p.Type
		if p.Variadic {
			typ = "[]" + typ
		}
		arg := fmt.Sprintf("relay.Arg[%s](args, %d)", typ, i)
		if p.Variadic {
			arg += "..."
		}
		args = append(args, arg)
		i++
	}
	call := m.DefaultFunc + "(" + strings.Join(args, ", ") + ")"

	switch m.Call {
	case models.CallValue:
		return "return " + call
	case models.CallError:
		return "return nil, " + call
	case models.CallNone:
		return call + "\n\t\treturn nil, nil"
	default:
		return "return " + call + ", nil"
	}
}

func adapterBody(receiver string, m models.ClientMethod) string {
	ctx := "context.Background()"
	if name, ok := m.ContextParam(); ok {
		ctx = name
	}
	args := []string{ctx, receiver + ".stub", strconv.Quote(m.Name)}
	for _, p := range m.ArgParams() {
		args = append(args, p.Name)
	}
	call := strings.Join(args, ", ")

	switch m.Call {
	case models.CallValue:
		return fmt.Sprintf("return relay.Call[%s](%s)", m.CallType, call)
	case models.CallError:
		return fmt.Sprintf("return relay.Exec(%s)", call)
	case models.CallFuture:
		return fmt.Sprintf("return relay.Go[%s](%s)", m.CallType, call)
	case models.CallMust:
		return fmt.Sprintf("return relay.MustCall[%s](%s)", m.CallType, call)
	default:
		return fmt.Sprintf("relay.MustCall[any](%s)", call)
	}
}

func paramList(m models.ClientMethod) string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		typ := p.Type
		if p.Variadic {
			typ = "..." + typ
		}
		params[i] = p.Name + " " + typ
	}
	return strings.Join(params, ", ")
}

func resultList(m models.ClientMethod) string {
	switch len(m.Results) {
	case 0:
		return ""
	case 1:
		return m.Results[0]
	default:
		return "(" + strings.Join(m.Results, ", ") + ")"
	}
}

// receiverName picks a receiver that no parameter of the interface shadows
func receiverName(client models.ClientInterface) string {
	used := make(map[string]bool)
	for _, m := range client.Methods {
		for _, p := range m.Params {
			used[p.Name] = true
		}
	}
	for _, candidate := range []string{"c", "rc", "client"} {
		if !used[candidate] {
			return candidate
		}
	}
	for i := 0; ; i++ {
		candidate := "c" + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
}
