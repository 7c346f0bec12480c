package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/relay/internal/annotations"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/pkg/relay"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

// ReportError renders err with its location, hint and cause
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(r.out, "\nERROR: ")
	fmt.Fprintf(r.out, "Code Generation Failed\n\n")

	var annErr annotations.AnnotationError
	var genErr *models.GeneratorError
	switch {
	case errors.As(err, &annErr):
		r.reportAnnotationError(annErr)
	case errors.As(err, &genErr):
		r.reportGeneratorError(genErr)
	default:
		fmt.Fprintf(r.out, "Message: %s\n", err)
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) reportAnnotationError(err annotations.AnnotationError) {
	fmt.Fprintf(r.out, "Type: %s\n", err.Code())
	fmt.Fprintf(r.out, "Location: %s\n", err.Location())
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	if hint := err.Suggestion(); hint != "" {
		fmt.Fprintf(r.out, "\nSuggestion:\n  %s\n", hint)
	}
}

func (r *DiagnosticReporter) reportGeneratorError(err *models.GeneratorError) {
	if err.File != "" {
		if err.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s:%d\n", err.File, err.Line)
		} else {
			fmt.Fprintf(r.out, "File: %s\n", err.File)
		}
	}
	fmt.Fprintf(r.out, "Message: %s\n", err.Message)

	if err.Cause != nil {
		cause := err.Cause.Error()
		if !r.verbose {
			cause, _, _ = strings.Cut(cause, "\n")
		}
		fmt.Fprintf(r.out, "Cause: %s\n", cause)
	}
	if hint := declarationHint(err); hint != "" {
		fmt.Fprintf(r.out, "\nSuggestion:\n  %s\n", hint)
	}
}

// declarationHint explains the declaration errors relay.ValidateMetadata reports
func declarationHint(err error) string {
	switch {
	case errors.Is(err, relay.ErrMissingVerbMarker):
		return "add one of //relay::get, post, put, patch, delete, head or options above the method"
	case errors.Is(err, relay.ErrDuplicateVerbMarker):
		return "keep a single HTTP verb marker per method"
	case errors.Is(err, relay.ErrUnresolvedPathParam):
		return "bind every {placeholder} of the path with //relay::path <param> [placeholder]"
	default:
		return ""
	}
}
