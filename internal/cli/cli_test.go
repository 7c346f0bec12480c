package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/relay/internal/utils"
)

const pingerSource = `package demo

import "context"

//relay::client
//relay::resource /api
type Pinger interface {
	//relay::get /ping
	Ping(ctx context.Context) (string, error)
}
`

// writeTree creates files relative to root, creating parent directories
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// testDiagnostics returns a diagnostic system writing into buffers
func testDiagnostics(level utils.DiagnosticLevel) (*utils.DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return utils.NewDiagnosticSystem(level).WithWriters(&out, &errOut), &out, &errOut
}
