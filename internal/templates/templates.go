// Package templates renders the relay_gen.go file of a package.
package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// FileData is the input of ClientFileTemplate
type FileData struct {
	Header  string
	Package string
	Imports []string
	Clients []ClientData
	Fx      bool
}

// ClientData describes the generated code of one client interface
type ClientData struct {
	Name        string
	Decl        string
	Adapter     string
	Constructor string
	Module      string
	Receiver    string
	Markers     []string // interface marker expressions
	Init        []string // statements of the init block
	Methods     []MethodData
}

// MethodData is one adapter method
type MethodData struct {
	Name    string
	Params  string
	Results string
	Body    string
}

// ClientFileTemplate generates the declaration tables, adapters and
// constructors of a package
const ClientFileTemplate = `{{.Header}}

package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)
{{range $client := .Clients}}
// {{.Decl}} declares how {{.Name}} maps onto HTTP requests
var {{.Decl}} = relay.Declare[{{.Name}}]({{range .Markers}}
	{{.}},{{end}}
)
{{if .Init}}
func init() {
{{- range .Init}}
	{{.}}
{{- end}}
}
{{end}}
type {{.Adapter}} struct {
	stub *relay.Stub
}

// {{.Constructor}} returns a {{.Name}} sending its calls through client
func {{.Constructor}}(client *relay.Client) ({{.Name}}, error) {
	stub, err := client.Bind({{.Decl}})
	if err != nil {
		return nil, err
	}
	return &{{.Adapter}}{stub: stub}, nil
}
{{range .Methods}}
func ({{$client.Receiver}} *{{$client.Adapter}}) {{.Name}}({{.Params}}){{if .Results}} {{.Results}}{{end}} {
	{{.Body}}
}
{{end}}
{{- if $.Fx}}
// {{.Module}} provides {{.Name}} to an fx application holding a *relay.Client
var {{.Module}} = fx.Provide({{.Constructor}})
{{end}}
{{- end}}`

var clientFile = template.Must(template.New("client-file").Parse(ClientFileTemplate))

// ExecuteClientFile renders ClientFileTemplate
func ExecuteClientFile(data FileData) ([]byte, error) {
	var buf bytes.Buffer
	if err := clientFile.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template client-file: %w", err)
	}
	return buf.Bytes(), nil
}
