package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"clients/github.go":        "package clients",
		"clients/github_test.go":   "package clients",
		"clients/openai/openai.go": "package openai",
		"onlytests/x_test.go":      "package onlytests",
		"vendor/dep/dep.go":        "package dep",
		"testdata/fixture/f.go":    "package fixture",
		".hidden/h.go":             "package hidden",
		"_scratch/s.go":            "package scratch",
		"docs/README.md":           "# docs",
		"generated/relay_gen.go":   "package generated",
	})

	scanner := NewDirectoryScanner()
	abs := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }

	t.Run("single directory", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{abs("clients")})
		require.NoError(t, err)
		assert.Equal(t, []string{abs("clients")}, dirs)
	})

	t.Run("directory without sources", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{abs("onlytests")})
		require.NoError(t, err)
		assert.Empty(t, dirs)
	})

	t.Run("recursive", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{root + "/..."})
		require.NoError(t, err)
		assert.Equal(t, []string{abs("clients"), abs("clients/openai"), abs("generated")}, dirs)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{abs("clients"), abs("clients") + "/...", abs("clients/openai")})
		require.NoError(t, err)
		assert.Equal(t, []string{abs("clients"), abs("clients/openai")}, dirs)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{abs("nope")})
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("file argument", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{abs("clients/github.go")})
		assert.ErrorContains(t, err, "is not a directory")
	})
}

func TestDirectoryScanner_RelativePattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go":     "package root",
		"sub/b.go": "package sub",
	})
	t.Chdir(root)

	dirs, err := NewDirectoryScanner().ScanDirectories([]string{"./..."})
	require.NoError(t, err)
	assert.Equal(t, []string{".", "sub"}, dirs)
}
