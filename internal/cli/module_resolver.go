package cli

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/utils"
)

// relayModulePath is the module generated code depends on
const relayModulePath = "github.com/toyz/relay"

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	diagnostics *utils.DiagnosticSystem
	modules     map[string]*utils.GoModule // by go.mod path
	warned      map[string]bool
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver(diagnostics *utils.DiagnosticSystem) *ModuleResolver {
	return &ModuleResolver{
		diagnostics: diagnostics,
		modules:     make(map[string]*utils.GoModule),
		warned:      make(map[string]bool),
	}
}

// Resolve returns the module containing dir. It warns once per module when
// the module cannot import the relay runtime.
func (r *ModuleResolver) Resolve(dir string) (*utils.GoModule, error) {
	goModPath, err := utils.FindGoMod(dir)
	if err != nil {
		return nil, err
	}
	if module, ok := r.modules[goModPath]; ok {
		return module, nil
	}

	module, err := utils.ParseGoMod(goModPath)
	if err != nil {
		return nil, err
	}
	r.modules[goModPath] = module

	if !module.DependsOn(relayModulePath) && !r.warned[goModPath] {
		r.warned[goModPath] = true
		r.diagnostics.Warn("module %s does not require %s; run go get %s", module.Path, relayModulePath, relayModulePath)
	}
	return module, nil
}

// ImportPath builds the import path of a package directory. customModule,
// when set, replaces the module path of go.mod.
func (r *ModuleResolver) ImportPath(packageDir, customModule string) (string, error) {
	module, err := r.Resolve(packageDir)
	if err != nil {
		return "", err
	}
	return BuildPackagePath(module, packageDir, customModule)
}

// BuildPackagePath builds the full import path for a package directory
func BuildPackagePath(module *utils.GoModule, packageDir, customModule string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}
	relPath, err := filepath.Rel(module.Dir, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	modulePath := module.Path
	if customModule != "" {
		modulePath = customModule
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return modulePath, nil
	}
	return fmt.Sprintf("%s/%s", modulePath, importPath), nil
}

// isRuntimePackage reports whether metadata describes the relay runtime itself
func isRuntimePackage(metadata *models.PackageMetadata) bool {
	return metadata.ImportPath == models.RelayImportPath
}
