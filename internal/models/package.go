package models

// PackageMetadata holds the client interfaces found in one package
type PackageMetadata struct {
	PackageName string            // name of the Go package
	PackagePath string            // file system path to the package
	ImportPath  string            // import path, empty when no module was found
	Interfaces  []ClientInterface // interfaces marked with //relay::client
}

// GeneratedFile is the output of the generator for one package
type GeneratedFile struct {
	PackageName string
	FilePath    string
	Content     []byte
}

// RelayImportPath is the import path of the relay runtime package
const RelayImportPath = "github.com/toyz/relay/pkg/relay"

// GeneratedHeader is the first line of every generated file
const GeneratedHeader = "// Code generated by relay. DO NOT EDIT."

// DefaultOutputFile is the name of the generated file in each package
const DefaultOutputFile = "relay_gen.go"
