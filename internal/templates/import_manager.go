package templates

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/relay/internal/models"
)

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// ImportManager collects the imports of a generated file, keeping user
// imports only when a generated signature refers to them
type ImportManager struct {
	required map[models.Import]bool
	user     []models.Import
}

// NewImportManager creates an empty import manager
func NewImportManager() *ImportManager {
	return &ImportManager{required: make(map[models.Import]bool)}
}

// Require adds an import the generated code always uses
func (im *ImportManager) Require(name, importPath string) {
	im.required[models.Import{Name: name, Path: importPath}] = true
}

// AddUser adds the imports of the file declaring an interface
func (im *ImportManager) AddUser(imports ...models.Import) {
	im.user = append(im.user, imports...)
}

// Lines returns the sorted import specs referenced by code plus every
// required import
func (im *ImportManager) Lines(code string) []string {
	selected := make(map[models.Import]bool, len(im.required)+len(im.user))
	for imp := range im.required {
		selected[imp] = true
	}
	for _, imp := range im.user {
		if im.required[models.Import{Path: imp.Path}] && (imp.Name == "" || imp.Name == AssumedName(imp.Path)) {
			continue
		}
		switch imp.Name {
		case "_":
			continue
		case ".":
			selected[imp] = true
			continue
		}
		name := imp.Name
		if name == "" {
			name = AssumedName(imp.Path)
		}
		if referenced(code, name) {
			selected[imp] = true
		}
	}

	lines := make([]string, 0, len(selected))
	for imp := range selected {
		line := strconv.Quote(imp.Path)
		if imp.Name != "" {
			line = imp.Name + " " + line
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return unnamed(lines[i]) < unnamed(lines[j]) })
	return lines
}

// AssumedName returns the package name an import path is conventionally
// referred to by: the last element, skipping a major version suffix and
// dropping a "go-" prefix
func AssumedName(importPath string) string {
	base := path.Base(importPath)
	if versionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexAny(base, ".-"); i >= 0 {
		base = base[:i]
	}
	return base
}

func referenced(code, name string) bool {
	pattern := regexp.MustCompile(`(^|[^A-Za-z0-9_.])` + regexp.QuoteMeta(name) + `\.`)
	return pattern.MatchString(code)
}

func unnamed(line string) string {
	if i := strings.IndexByte(line, '"'); i > 0 {
		return line[i:]
	}
	return line
}
