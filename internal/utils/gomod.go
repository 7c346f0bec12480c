package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ErrGoModNotFound reports that no go.mod exists above a directory
var ErrGoModNotFound = errors.New("go.mod file not found")

// GoModule is the part of a go.mod relay cares about
type GoModule struct {
	Path     string // module path
	Dir      string // directory holding go.mod
	Requires map[string]string
}

// DependsOn reports whether the module requires path, or is path itself
func (m *GoModule) DependsOn(path string) bool {
	if m.Path == path {
		return true
	}
	_, ok := m.Requires[path]
	return ok
}

// ParseGoMod parses a go.mod file with the official modfile parser
func ParseGoMod(goModPath string) (*GoModule, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	file, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if file.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	module := &GoModule{
		Path:     file.Module.Mod.Path,
		Dir:      filepath.Dir(cleanPath),
		Requires: make(map[string]string, len(file.Require)),
	}
	for _, req := range file.Require {
		module.Requires[req.Mod.Path] = req.Mod.Version
	}
	return module, nil
}

// FindGoMod searches for go.mod starting from dir and walking up
func FindGoMod(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(current, "go.mod")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrGoModNotFound
		}
		current = parent
	}
}
