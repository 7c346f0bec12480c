package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/utils"
)

func TestGenerator_Run(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":            "module example.com/app\n\ngo 1.25\n\nrequire github.com/toyz/relay v0.1.0\n",
		"clients/pinger.go": pingerSource,
		"plain/plain.go":    "package plain\n\ntype Thing interface{ Do() error }\n",
	})
	diagnostics, out, _ := testDiagnostics(utils.DiagnosticVerbose)
	gen := NewGenerator(diagnostics)

	require.NoError(t, gen.Run(Config{Directories: []string{root + "/..."}}))

	summary := gen.GetSummary()
	target := filepath.Join(root, "clients", models.DefaultOutputFile)
	assert.Equal(t, 2, summary.PackagesScanned)
	assert.Equal(t, 1, summary.ClientsFound)
	assert.Equal(t, 1, summary.MethodsFound)
	assert.Equal(t, []string{target}, summary.GeneratedFiles)
	assert.NoFileExists(t, filepath.Join(root, "plain", models.DefaultOutputFile))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), models.GeneratedHeader)
	assert.Contains(t, string(content), "func NewPinger(client *relay.Client) (Pinger, error) {")
	assert.Contains(t, out.String(), "demo.Pinger (1 methods)")
	assert.Contains(t, out.String(), "Writing "+target)

	require.NoError(t, gen.Run(Config{Directories: []string{root + "/..."}}))
	assert.Empty(t, gen.GetSummary().GeneratedFiles)
	assert.Equal(t, []string{target}, gen.GetSummary().UnchangedFiles)
}

func TestGenerator_RunWithOptions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pinger.go": pingerSource})
	diagnostics, _, _ := testDiagnostics(utils.DiagnosticError)

	require.NoError(t, NewGenerator(diagnostics).Run(Config{Directories: []string{root}, Output: "clients_gen.go", Fx: true}))

	content, err := os.ReadFile(filepath.Join(root, "clients_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "var PingerModule = fx.Provide(NewPinger)")
}

func TestGenerator_RemovesStaleFiles(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, models.DefaultOutputFile)
	writeTree(t, root, map[string]string{
		"plain.go":               "package demo\n",
		models.DefaultOutputFile: models.GeneratedHeader + "\n\npackage demo\n",
	})
	diagnostics, _, _ := testDiagnostics(utils.DiagnosticError)
	gen := NewGenerator(diagnostics)

	require.NoError(t, gen.Run(Config{Directories: []string{root}}))
	assert.Equal(t, []string{stale}, gen.GetSummary().RemovedFiles)
	assert.NoFileExists(t, stale)
}

func TestGenerator_ReportsErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"bad.go": `package demo

//relay::client
type Bad interface {
	//relay::get /items/{id}
	Get(id int) (string, error)
}
`})
	diagnostics, _, errOut := testDiagnostics(utils.DiagnosticError)

	err := NewGenerator(diagnostics).Run(Config{Directories: []string{root}})
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "ERROR: Code Generation Failed")
	assert.Contains(t, errOut.String(), "Message: invalid relay client Bad")
	assert.Contains(t, errOut.String(), "//relay::path <param> [placeholder]")
	assert.NoFileExists(t, filepath.Join(root, models.DefaultOutputFile))
}

func TestGenerator_SilentDoesNotReport(t *testing.T) {
	diagnostics, out, errOut := testDiagnostics(utils.DiagnosticSilent)

	err := NewGenerator(diagnostics).Run(Config{Directories: []string{filepath.Join(t.TempDir(), "missing")}})
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}
