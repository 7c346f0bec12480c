package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/relay/internal/annotations"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/pkg/relay"
)

func TestDiagnosticReporter_ReportError(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		err      error
		contains []string
		excludes []string
	}{
		{
			name: "annotation error",
			err: fmt.Errorf("parsing: %w", &annotations.ValidationError{
				Kind: "get",
				Msg:  "missing path",
				Loc:  annotations.SourceLocation{File: "client.go", Line: 7, Column: 2},
				Hint: "e.g. //relay::get /users/{id}",
			}),
			contains: []string{
				"Type: ValidationError",
				"Location: client.go:7:2",
				"Message: client.go:7:2: invalid //relay::get: missing path",
				"Suggestion:\n  e.g. //relay::get /users/{id}",
			},
		},
		{
			name: "declaration error gets a hint",
			err: &models.GeneratorError{
				File:    "client.go",
				Line:    9,
				Message: "invalid relay client Users",
				Cause:   relay.ErrUnresolvedPathParam,
			},
			contains: []string{
				"Location: client.go:9",
				"Message: invalid relay client Users",
				"Cause: unresolved path parameter",
				"//relay::path <param> [placeholder]",
			},
		},
		{
			name: "long causes are cut unless verbose",
			err: &models.GeneratorError{
				File:    "relay_gen.go",
				Message: "generated code does not compile",
				Cause:   errors.New("1:1: expected 'package'\npackage demo"),
			},
			contains: []string{"File: relay_gen.go", "Cause: 1:1: expected 'package'"},
			excludes: []string{"package demo"},
		},
		{
			name:     "verbose keeps the full cause",
			verbose:  true,
			err:      &models.GeneratorError{Message: "generated code does not compile", Cause: errors.New("broken\npackage demo")},
			contains: []string{"package demo"},
		},
		{
			name:     "plain error",
			err:      errors.New("disk full"),
			contains: []string{"ERROR: Code Generation Failed", "Message: disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewDiagnosticReporter(tt.verbose, &out).ReportError(tt.err)

			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out.String(), unwanted)
			}
		})
	}
}

func TestDiagnosticReporter_NilError(t *testing.T) {
	var out bytes.Buffer
	NewDiagnosticReporter(false, &out).ReportError(nil)
	assert.Empty(t, out.String())
}
