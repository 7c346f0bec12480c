package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/relay/internal/utils"
)

func TestModuleResolver_ImportPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":                 "module example.com/app\n\ngo 1.25\n\nrequire github.com/toyz/relay v0.1.0\n",
		"internal/clients/gh.go": "package clients",
	})
	diagnostics, _, errOut := testDiagnostics(utils.DiagnosticInfo)
	resolver := NewModuleResolver(diagnostics)

	path, err := resolver.ImportPath(filepath.Join(root, "internal", "clients"), "")
	require.NoError(t, err)
	assert.Equal(t, "example.com/app/internal/clients", path)

	path, err = resolver.ImportPath(root, "")
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", path)

	path, err = resolver.ImportPath(filepath.Join(root, "internal", "clients"), "github.com/acme/app")
	require.NoError(t, err)
	assert.Equal(t, "github.com/acme/app/internal/clients", path)

	assert.Empty(t, errOut.String())
}

func TestModuleResolver_WarnsOncePerModule(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod": "module example.com/app\n\ngo 1.25\n",
		"a/a.go": "package a",
		"b/b.go": "package b",
	})
	diagnostics, _, errOut := testDiagnostics(utils.DiagnosticInfo)
	resolver := NewModuleResolver(diagnostics)

	_, err := resolver.Resolve(filepath.Join(root, "a"))
	require.NoError(t, err)
	_, err = resolver.Resolve(filepath.Join(root, "b"))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(errOut.String(), "does not require github.com/toyz/relay"))
}

func TestModuleResolver_RelayModuleDoesNotWarn(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"go.mod": "module github.com/toyz/relay\n"})
	diagnostics, _, errOut := testDiagnostics(utils.DiagnosticInfo)

	module, err := NewModuleResolver(diagnostics).Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "github.com/toyz/relay", module.Path)
	assert.Empty(t, errOut.String())
}
