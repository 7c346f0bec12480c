package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/relay/internal/generator"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/parser"
	"github.com/toyz/relay/internal/utils"
)

// GenerationSummary describes the outcome of one Run
type GenerationSummary struct {
	PackagesScanned int
	ClientsFound    int
	MethodsFound    int
	GeneratedFiles  []string // written because their content changed
	UnchangedFiles  []string
	RemovedFiles    []string // stale files of packages that no longer declare clients
	Duration        time.Duration
}

// Generator coordinates the CLI generation process
type Generator struct {
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	summary        GenerationSummary
}

// NewGenerator creates a new CLI generator reporting through diagnostics
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(diagnostics),
		reporter:       NewDiagnosticReporter(diagnostics.Level() >= utils.DiagnosticVerbose, diagnostics.ErrorWriter()),
		diagnostics:    diagnostics,
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// parsedPackage is the parse result of one package directory
type parsedPackage struct {
	dir        string
	importPath string
	metadata   *models.PackageMetadata
}

// Run scans, parses and generates every package matched by cfg.Directories.
// Errors are reported through the diagnostic reporter before being returned.
func (g *Generator) Run(cfg Config) error {
	err := g.run(cfg)
	if err != nil && g.diagnostics.Level() > utils.DiagnosticSilent {
		g.reporter.ReportError(err)
	}
	return err
}

func (g *Generator) run(cfg Config) error {
	start := time.Now()
	g.summary = GenerationSummary{}

	g.diagnostics.PhaseHeader("Scanning")
	dirs, err := g.scanner.ScanDirectories(cfg.Directories)
	if err != nil {
		return err
	}
	g.summary.PackagesScanned = len(dirs)
	g.diagnostics.PhaseItem("found %d package directories", len(dirs))

	packages := make([]parsedPackage, len(dirs))
	for i, dir := range dirs {
		importPath, err := g.moduleResolver.ImportPath(dir, cfg.ModuleName)
		if errors.Is(err, utils.ErrGoModNotFound) {
			g.diagnostics.Verbose("no go.mod above %s", dir)
		} else if err != nil {
			return err
		}
		packages[i] = parsedPackage{dir: dir, importPath: importPath}
	}

	g.diagnostics.PhaseHeader("Parsing")
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i := range packages {
		pkg := &packages[i]
		group.Go(func() error {
			metadata, err := parser.NewParser().ParseDirectory(pkg.dir)
			if err != nil {
				return err
			}
			metadata.ImportPath = pkg.importPath
			pkg.metadata = metadata
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	codeGenerator := generator.NewGenerator(generator.Options{OutputFile: cfg.Output, Fx: cfg.Fx})
	outputFile := cfg.Output
	if outputFile == "" {
		outputFile = models.DefaultOutputFile
	}

	g.diagnostics.PhaseHeader("Generating")
	for _, pkg := range packages {
		metadata := pkg.metadata
		if isRuntimePackage(metadata) {
			g.diagnostics.Debug("skipping relay runtime package %s", pkg.dir)
			continue
		}
		if len(metadata.Interfaces) == 0 {
			if err := g.removeStale(filepath.Join(pkg.dir, outputFile)); err != nil {
				return err
			}
			continue
		}

		for _, client := range metadata.Interfaces {
			g.summary.ClientsFound++
			g.summary.MethodsFound += len(client.Methods)
			g.diagnostics.PhaseItem("%s.%s (%d methods)", metadata.PackageName, client.Name, len(client.Methods))
		}

		file, err := codeGenerator.Generate(metadata)
		if err != nil {
			return err
		}
		if err := g.write(file); err != nil {
			return err
		}
	}

	g.summary.Duration = time.Since(start)
	return nil
}

// write stores a generated file unless its content is already current
func (g *Generator) write(file *models.GeneratedFile) error {
	existing, err := os.ReadFile(file.FilePath)
	if err == nil && bytes.Equal(existing, file.Content) {
		g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, file.FilePath)
		g.diagnostics.Verbose("%s is up to date", file.FilePath)
		return nil
	}

	g.diagnostics.PhaseWrite(file.FilePath)
	if err := os.WriteFile(file.FilePath, file.Content, 0o644); err != nil {
		return &models.GeneratorError{File: file.FilePath, Message: "failed to write generated file", Cause: err}
	}
	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
	return nil
}

func (g *Generator) removeStale(path string) error {
	generated, err := IsGeneratedFile(path)
	if err != nil || !generated {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale %s: %w", path, err)
	}
	g.diagnostics.Verbose("removed stale %s", path)
	g.summary.RemovedFiles = append(g.summary.RemovedFiles, path)
	return nil
}
